package database

import (
	"context"
	"fmt"

	"github.com/jgoulah/wattlens/pkg/models"
)

// AddAppliance inserts an appliance for an existing household
func (db *DB) AddAppliance(ctx context.Context, a *models.Appliance) error {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.Quantity <= 0 {
		a.Quantity = 1
	}
	if a.UsageDaysMonthly <= 0 {
		a.UsageDaysMonthly = models.DefaultUsageDaysMonthly
	}
	a.CreatedAt = db.now()

	query := `
	INSERT INTO appliances (id, household_id, name, power_watts, usage_hours_per_day, quantity, usage_days_monthly, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		a.ID, a.HouseholdID, a.Name, a.PowerWatts, a.UsageHoursPerDay, a.Quantity, a.UsageDaysMonthly, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting appliance: %w", err)
	}
	return nil
}

// ListAppliances retrieves a household's appliances in the order they were added
func (db *DB) ListAppliances(ctx context.Context, householdID string) ([]models.Appliance, error) {
	query := `
	SELECT id, household_id, name, power_watts, usage_hours_per_day, quantity, usage_days_monthly, created_at
	FROM appliances
	WHERE household_id = ?
	ORDER BY created_at, id
	`

	rows, err := db.conn.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("querying appliances: %w", err)
	}
	defer rows.Close()

	var results []models.Appliance
	for rows.Next() {
		var a models.Appliance
		var createdAt string
		if err := rows.Scan(&a.ID, &a.HouseholdID, &a.Name, &a.PowerWatts, &a.UsageHoursPerDay, &a.Quantity, &a.UsageDaysMonthly, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		results = append(results, a)
	}

	return results, rows.Err()
}

// DeleteAppliance removes one appliance
func (db *DB) DeleteAppliance(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM appliances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting appliance: %w", err)
	}
	return requireAffected(res, "appliance", id)
}
