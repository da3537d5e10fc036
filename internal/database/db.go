package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a keyed lookup, update or delete matches no row
var ErrNotFound = errors.New("record not found")

// Fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// New creates a new database connection and initializes the schema
func New(dbPath string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: logger.Named("database"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	db.logger.Debug("database opened", zap.String("path", dbPath))
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS households (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		income_level TEXT NOT NULL DEFAULT '',
		household_size INTEGER NOT NULL CHECK (household_size >= 1),
		monthly_budget REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS appliances (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		power_watts REAL NOT NULL,
		usage_hours_per_day REAL NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		usage_days_monthly INTEGER NOT NULL DEFAULT 30,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
		monthly_consumption_kwh REAL NOT NULL,
		estimated_bill REAL NOT NULL,
		tariff_bracket TEXT NOT NULL,
		budget_status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
		prediction_id TEXT REFERENCES predictions(id) ON DELETE SET NULL,
		report_type TEXT NOT NULL,
		data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS household_clusters (
		household_id TEXT NOT NULL,
		cluster_id INTEGER NOT NULL,
		cluster_method TEXT NOT NULL,
		is_anomaly INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (household_id, cluster_method)
	);
	CREATE INDEX IF NOT EXISTS idx_appliances_household ON appliances(household_id);
	CREATE INDEX IF NOT EXISTS idx_predictions_household ON predictions(household_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_household ON reports(household_id);
	CREATE INDEX IF NOT EXISTS idx_clusters_method ON household_clusters(cluster_method);
	`

	_, err := db.conn.Exec(schema)
	return err
}

func newID() string {
	return uuid.NewString()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s, column string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// requireAffected maps a zero-row update or delete to ErrNotFound
func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
