// ABOUTME: Seller lead database operations
// ABOUTME: Handles lead creation, lookup, and contact timestamp tracking
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
)

func CreateLead(db *sql.DB, lead *models.Lead) error {
	lead.ID = uuid.New()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO leads (id, name, phone, email, last_contacted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, lead.ID.String(), lead.Name, lead.Phone, lead.Email, utcPtr(lead.LastContactedAt), lead.CreatedAt, lead.UpdatedAt)

	return err
}

// GetLead returns nil, nil when the lead does not exist.
func GetLead(db *sql.DB, id uuid.UUID) (*models.Lead, error) {
	return getLead(context.Background(), db, id)
}

func getLead(ctx context.Context, q queryer, id uuid.UUID) (*models.Lead, error) {
	lead := &models.Lead{}
	var phone, email sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT id, name, phone, email, last_contacted_at, created_at, updated_at
		FROM leads WHERE id = ?
	`, id.String()).Scan(
		&lead.ID,
		&lead.Name,
		&phone,
		&email,
		&lead.LastContactedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lead.Phone = phone.String
	lead.Email = email.String
	return lead, nil
}
