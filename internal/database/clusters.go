package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jgoulah/wattlens/pkg/models"
)

// UpsertAssignment writes the latest result for (household, method),
// replacing any earlier row for the same pair
func (db *DB) UpsertAssignment(ctx context.Context, a models.ClusterAssignment) error {
	query := `
	INSERT INTO household_clusters (household_id, cluster_id, cluster_method, is_anomaly, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (household_id, cluster_method) DO UPDATE SET
		cluster_id = excluded.cluster_id,
		is_anomaly = excluded.is_anomaly,
		updated_at = excluded.updated_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		a.HouseholdID, a.ClusterID, string(a.Method), a.IsAnomaly, formatTime(db.now()))
	if err != nil {
		return fmt.Errorf("upserting %s assignment for %s: %w", a.Method, a.HouseholdID, err)
	}
	return nil
}

// ListAssignments retrieves stored assignments matching filter, ordered by household then method
func (db *DB) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ClusterAssignment, error) {
	var where []string
	var args []any
	if filter.Method != "" {
		where = append(where, "cluster_method = ?")
		args = append(args, string(filter.Method))
	}
	if filter.HouseholdID != "" {
		where = append(where, "household_id = ?")
		args = append(args, filter.HouseholdID)
	}
	if filter.AnomalyOnly {
		where = append(where, "is_anomaly = 1")
	}

	query := `SELECT household_id, cluster_id, cluster_method, is_anomaly, updated_at FROM household_clusters`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY household_id, cluster_method`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cluster assignments: %w", err)
	}
	defer rows.Close()

	var results []models.ClusterAssignment
	for rows.Next() {
		var a models.ClusterAssignment
		var method, updatedAt string
		if err := rows.Scan(&a.HouseholdID, &a.ClusterID, &method, &a.IsAnomaly, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		a.Method = models.ClusterMethod(method)
		if a.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		results = append(results, a)
	}

	return results, rows.Err()
}
