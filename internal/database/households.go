package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jgoulah/wattlens/pkg/models"
)

const householdColumns = `id, name, region, income_level, household_size, monthly_budget, created_at, updated_at`

// CreateHousehold inserts a household, assigning its ID and timestamps
func (db *DB) CreateHousehold(ctx context.Context, h *models.Household) error {
	if h.ID == "" {
		h.ID = newID()
	}
	now := db.now()
	h.CreatedAt, h.UpdatedAt = now, now

	query := `INSERT INTO households (` + householdColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		h.ID, h.Name, h.Region, h.IncomeLevel, h.HouseholdSize, h.MonthlyBudget,
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting household: %w", err)
	}
	return nil
}

// UpdateHousehold overwrites a household's editable fields
func (db *DB) UpdateHousehold(ctx context.Context, h *models.Household) error {
	h.UpdatedAt = db.now()

	query := `
	UPDATE households
	SET name = ?, region = ?, income_level = ?, household_size = ?, monthly_budget = ?, updated_at = ?
	WHERE id = ?
	`
	res, err := db.conn.ExecContext(ctx, query,
		h.Name, h.Region, h.IncomeLevel, h.HouseholdSize, h.MonthlyBudget, formatTime(h.UpdatedAt), h.ID)
	if err != nil {
		return fmt.Errorf("updating household: %w", err)
	}
	return requireAffected(res, "household", h.ID)
}

// GetHousehold retrieves one household by ID
func (db *DB) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households WHERE id = ?`
	h, err := scanHousehold(db.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("household %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying household: %w", err)
	}
	return h, nil
}

// ListHouseholds retrieves all households in creation order
func (db *DB) ListHouseholds(ctx context.Context) ([]models.Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households ORDER BY created_at, id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying households: %w", err)
	}
	defer rows.Close()

	var results []models.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, *h)
	}

	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHousehold(row rowScanner) (*models.Household, error) {
	var h models.Household
	var createdAt, updatedAt string

	if err := row.Scan(&h.ID, &h.Name, &h.Region, &h.IncomeLevel, &h.HouseholdSize, &h.MonthlyBudget, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if h.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &h, nil
}
