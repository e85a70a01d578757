// ABOUTME: Deal database operations
// ABOUTME: Handles deal lifecycle, stage advancement, and manual next actions
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
)

const dealColumns = `id, title, stage, strategy, lead_id, property_id, next_action, next_action_due,
	risk_score, risk_score_auto, last_activity_at, created_at, updated_at`

func CreateDeal(db *sql.DB, deal *models.Deal) error {
	deal.ID = uuid.New()
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	deal.LastActivityAt = &now

	if deal.Stage == "" {
		deal.Stage = models.StageNew
	}
	deal.Stage = models.NormalizeStage(deal.Stage)

	_, err := db.Exec(`
		INSERT INTO deals (`+dealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, deal.ID.String(), deal.Title, deal.Stage, deal.Strategy,
		nullableUUID(deal.LeadID), nullableUUID(deal.PropertyID),
		deal.NextAction, utcPtr(deal.NextActionDue), deal.RiskScore, deal.RiskScoreAuto,
		deal.LastActivityAt, deal.CreatedAt, deal.UpdatedAt)

	return err
}

// GetDeal returns the deal row without related records, or nil, nil when missing.
func GetDeal(db *sql.DB, id uuid.UUID) (*models.Deal, error) {
	return getDeal(context.Background(), db, id)
}

func getDeal(ctx context.Context, q queryer, id uuid.UUID) (*models.Deal, error) {
	deal, err := scanDeal(q.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return deal, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	d := &models.Deal{}
	var strategy, nextAction, leadID, propertyID sql.NullString

	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Stage,
		&strategy,
		&leadID,
		&propertyID,
		&nextAction,
		&d.NextActionDue,
		&d.RiskScore,
		&d.RiskScoreAuto,
		&d.LastActivityAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Strategy = strategy.String
	d.NextAction = nextAction.String
	d.LeadID = parseNullUUID(leadID)
	d.PropertyID = parseNullUUID(propertyID)
	return d, nil
}

func UpdateDeal(db *sql.DB, deal *models.Deal) error {
	now := time.Now().UTC()
	deal.UpdatedAt = now
	deal.LastActivityAt = &now
	deal.Stage = models.NormalizeStage(deal.Stage)

	result, err := db.Exec(`
		UPDATE deals
		SET title = ?, stage = ?, strategy = ?, lead_id = ?, property_id = ?, next_action = ?,
		    next_action_due = ?, risk_score = ?, risk_score_auto = ?, updated_at = ?, last_activity_at = ?
		WHERE id = ?
	`, deal.Title, deal.Stage, deal.Strategy, nullableUUID(deal.LeadID), nullableUUID(deal.PropertyID),
		deal.NextAction, utcPtr(deal.NextActionDue), deal.RiskScore, deal.RiskScoreAuto,
		deal.UpdatedAt, deal.LastActivityAt, deal.ID.String())
	if err != nil {
		return err
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrDealNotFound
	}
	return nil
}

// AdvanceDealStage moves the deal to the next pipeline stage and returns it.
func AdvanceDealStage(db *sql.DB, id uuid.UUID) (string, error) {
	deal, err := GetDeal(db, id)
	if err != nil {
		return "", err
	}
	if deal == nil {
		return "", ErrDealNotFound
	}

	next := models.NextStage(deal.Stage)
	if next == "" {
		return "", fmt.Errorf("stage %q has no next stage", deal.Stage)
	}

	deal.Stage = next
	if err := UpdateDeal(db, deal); err != nil {
		return "", err
	}
	return next, nil
}

// FindDeals lists deals by most recent activity, optionally filtered by stage.
func FindDeals(db *sql.DB, stage string, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	var err error

	if stage != "" {
		rows, err = db.Query(`
			SELECT `+dealColumns+`
			FROM deals
			WHERE stage = ?
			ORDER BY last_activity_at DESC
			LIMIT ?
		`, models.NormalizeStage(stage), limit)
	} else {
		rows, err = db.Query(`
			SELECT `+dealColumns+`
			FROM deals
			ORDER BY last_activity_at DESC
			LIMIT ?
		`, limit)
	}

	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}

	return deals, rows.Err()
}

// touchDeal bumps last_activity_at, never moving it backwards.
func touchDeal(ctx context.Context, q queryer, dealID uuid.UUID, at time.Time) error {
	at = utc(at)
	_, err := q.ExecContext(ctx, `
		UPDATE deals SET last_activity_at = ?, updated_at = ?
		WHERE id = ? AND (last_activity_at IS NULL OR last_activity_at < ?)
	`, at, time.Now().UTC(), dealID.String(), at)
	return err
}
