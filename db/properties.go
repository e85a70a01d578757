// ABOUTME: Property database operations
// ABOUTME: Stores addresses and decimal valuation fields (ARV, repairs, asking price)
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
)

func CreateProperty(db *sql.DB, property *models.Property) error {
	property.ID = uuid.New()
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO properties (id, address, arv, repair_cost, asking_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, property.ID.String(), property.Address, property.ARV, property.RepairCost, property.AskingPrice, property.CreatedAt, property.UpdatedAt)

	return err
}

// UpdateProperty rewrites the address and valuation fields.
func UpdateProperty(db *sql.DB, property *models.Property) error {
	property.UpdatedAt = time.Now().UTC()

	result, err := db.Exec(`
		UPDATE properties
		SET address = ?, arv = ?, repair_cost = ?, asking_price = ?, updated_at = ?
		WHERE id = ?
	`, property.Address, property.ARV, property.RepairCost, property.AskingPrice, property.UpdatedAt, property.ID.String())
	if err != nil {
		return err
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetProperty returns nil, nil when the property does not exist.
func GetProperty(db *sql.DB, id uuid.UUID) (*models.Property, error) {
	return getProperty(context.Background(), db, id)
}

func getProperty(ctx context.Context, q queryer, id uuid.UUID) (*models.Property, error) {
	p := &models.Property{}

	err := q.QueryRowContext(ctx, `
		SELECT id, address, arv, repair_cost, asking_price, created_at, updated_at
		FROM properties WHERE id = ?
	`, id.String()).Scan(
		&p.ID,
		&p.Address,
		&p.ARV,
		&p.RepairCost,
		&p.AskingPrice,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
