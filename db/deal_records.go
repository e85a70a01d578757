// ABOUTME: Offer, walkthrough photo, and seller report operations
// ABOUTME: Each write also records activity on the owning deal
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

// CreateOffer records an offer. CreatedAt is kept when already set so imported
// offers retain their original send date.
func CreateOffer(db *sql.DB, offer *models.Offer) error {
	if !models.IsValidOfferStatus(offer.Status) {
		return fmt.Errorf("invalid offer status %q", offer.Status)
	}
	offer.ID = uuid.New()
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = time.Now()
	}
	offer.CreatedAt = utc(offer.CreatedAt)

	return withDealActivity(db, offer.DealID, offer.CreatedAt, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO offers (id, deal_id, amount, status, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, offer.ID.String(), offer.DealID.String(), offer.Amount, offer.Status, offer.CreatedAt)
		return err
	})
}

// GetDealOffers returns the deal's offers, most recent first.
func GetDealOffers(db *sql.DB, dealID uuid.UUID) ([]models.Offer, error) {
	return getDealOffers(context.Background(), db, dealID)
}

func getDealOffers(ctx context.Context, q queryer, dealID uuid.UUID) ([]models.Offer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, deal_id, amount, status, created_at
		FROM offers
		WHERE deal_id = ?
		ORDER BY created_at DESC
	`, dealID.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.DealID, &o.Amount, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}

	return offers, rows.Err()
}

func AddWalkthroughPhoto(db *sql.DB, photo *models.WalkthroughPhoto) error {
	photo.ID = uuid.New()
	photo.CreatedAt = time.Now().UTC()

	return withDealActivity(db, photo.DealID, photo.CreatedAt, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO walkthrough_photos (id, deal_id, bucket, category, url, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, photo.ID.String(), photo.DealID.String(), photo.Bucket, photo.Category, photo.URL, photo.CreatedAt)
		return err
	})
}

func GetWalkthroughPhotos(db *sql.DB, dealID uuid.UUID) ([]models.WalkthroughPhoto, error) {
	return getWalkthroughPhotos(context.Background(), db, dealID)
}

func getWalkthroughPhotos(ctx context.Context, q queryer, dealID uuid.UUID) ([]models.WalkthroughPhoto, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, deal_id, bucket, category, url, created_at
		FROM walkthrough_photos
		WHERE deal_id = ?
		ORDER BY created_at
	`, dealID.String())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var photos []models.WalkthroughPhoto
	for rows.Next() {
		var p models.WalkthroughPhoto
		var bucket, category, url sql.NullString
		if err := rows.Scan(&p.ID, &p.DealID, &bucket, &category, &url, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Bucket = bucket.String
		p.Category = category.String
		p.URL = url.String
		photos = append(photos, p)
	}

	return photos, rows.Err()
}

// SaveSellerReport creates or replaces the deal's seller report.
func SaveSellerReport(db *sql.DB, report *models.SellerReport) error {
	report.ID = uuid.New()
	report.CreatedAt = time.Now().UTC()

	return withDealActivity(db, report.DealID, report.CreatedAt, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO seller_reports (id, deal_id, summary, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(deal_id) DO UPDATE SET
				id = excluded.id,
				summary = excluded.summary,
				created_at = excluded.created_at
		`, report.ID.String(), report.DealID.String(), report.Summary, report.CreatedAt)
		return err
	})
}

// GetSellerReport returns nil, nil when the deal has no report yet.
func GetSellerReport(db *sql.DB, dealID uuid.UUID) (*models.SellerReport, error) {
	return getSellerReport(context.Background(), db, dealID)
}

func getSellerReport(ctx context.Context, q queryer, dealID uuid.UUID) (*models.SellerReport, error) {
	r := &models.SellerReport{}
	var summary sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT id, deal_id, summary, created_at
		FROM seller_reports WHERE deal_id = ?
	`, dealID.String()).Scan(&r.ID, &r.DealID, &summary, &r.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Summary = summary.String
	return r, nil
}

// withDealActivity runs fn in a transaction that fails with ErrDealNotFound
// for unknown deals and bumps the deal's activity timestamp.
func withDealActivity(db *sql.DB, dealID uuid.UUID, at time.Time, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM deals WHERE id = ?`, dealID.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDealNotFound
	}
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := touchDeal(ctx, tx, dealID, at); err != nil {
		return err
	}

	return tx.Commit()
}
