package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jgoulah/wattlens/pkg/models"
)

const reportColumns = `id, household_id, prediction_id, report_type, data, created_at`

// ListReports retrieves reports newest first. An empty householdID lists all.
func (db *DB) ListReports(ctx context.Context, householdID string) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	var args []any
	if householdID != "" {
		query += ` WHERE household_id = ?`
		args = append(args, householdID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var results []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, *r)
	}

	return results, rows.Err()
}

// GetReport retrieves one report by ID
func (db *DB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}
	return r, nil
}

// UpdateReportData replaces a report's JSON document
func (db *DB) UpdateReportData(ctx context.Context, id string, data json.RawMessage) error {
	if !json.Valid(data) {
		return fmt.Errorf("report %s: data is not valid JSON", id)
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE reports SET data = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return fmt.Errorf("updating report: %w", err)
	}
	return requireAffected(res, "report", id)
}

// DeleteReport removes one report
func (db *DB) DeleteReport(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	return requireAffected(res, "report", id)
}

func scanReport(row rowScanner) (*models.Report, error) {
	var r models.Report
	var predictionID sql.NullString
	var data, createdAt string

	if err := row.Scan(&r.ID, &r.HouseholdID, &predictionID, &r.ReportType, &data, &createdAt); err != nil {
		return nil, err
	}
	r.PredictionID = predictionID.String
	r.Data = json.RawMessage(data)

	var err error
	if r.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &r, nil
}
