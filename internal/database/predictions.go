package database

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jgoulah/wattlens/pkg/models"
)

const predictionColumns = `id, household_id, monthly_consumption_kwh, estimated_bill, tariff_bracket, budget_status, created_at`

// SavePrediction inserts a prediction and its prediction report in one
// transaction. reportData is encoded as the report's JSON document.
func (db *DB) SavePrediction(ctx context.Context, p *models.Prediction, reportData any) (*models.Report, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = db.now()

	data, err := json.Marshal(reportData)
	if err != nil {
		return nil, fmt.Errorf("encoding report data: %w", err)
	}
	report := &models.Report{
		ID:           newID(),
		HouseholdID:  p.HouseholdID,
		PredictionID: p.ID,
		ReportType:   models.ReportTypePrediction,
		Data:         data,
		CreatedAt:    p.CreatedAt,
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO predictions (`+predictionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.HouseholdID, p.MonthlyConsumptionKWh, p.EstimatedBill, p.TariffBracket, p.BudgetStatus, formatTime(p.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting prediction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, report.HouseholdID, report.PredictionID, report.ReportType, string(report.Data), formatTime(report.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing prediction: %w", err)
	}

	db.logger.Debug("prediction saved",
		zap.String("household_id", p.HouseholdID),
		zap.String("prediction_id", p.ID),
		zap.Float64("kwh", p.MonthlyConsumptionKWh),
	)
	return report, nil
}

// ListPredictions retrieves a household's predictions, newest first
func (db *DB) ListPredictions(ctx context.Context, householdID string) ([]models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE household_id = ? ORDER BY created_at DESC, rowid DESC`
	return db.queryPredictions(ctx, query, householdID)
}

// LatestPredictions returns the most recent prediction for every household that has one
func (db *DB) LatestPredictions(ctx context.Context) (map[string]models.Prediction, error) {
	query := `
	SELECT ` + predictionColumns + `
	FROM (
		SELECT *, ROW_NUMBER() OVER (PARTITION BY household_id ORDER BY created_at DESC, rowid DESC) AS rn
		FROM predictions
	)
	WHERE rn = 1
	`
	list, err := db.queryPredictions(ctx, query)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.Prediction, len(list))
	for _, p := range list {
		latest[p.HouseholdID] = p
	}
	return latest, nil
}

func (db *DB) queryPredictions(ctx context.Context, query string, args ...any) ([]models.Prediction, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	var results []models.Prediction
	for rows.Next() {
		var p models.Prediction
		var createdAt string
		if err := rows.Scan(&p.ID, &p.HouseholdID, &p.MonthlyConsumptionKWh, &p.EstimatedBill, &p.TariffBracket, &p.BudgetStatus, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		results = append(results, p)
	}

	return results, rows.Err()
}
