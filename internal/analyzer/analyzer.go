package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jgoulah/wattlens/pkg/models"
)

// MinHouseholds is the smallest input either routine accepts
const MinHouseholds = 3

// ErrInsufficientData is returned when fewer than MinHouseholds records are supplied
var ErrInsufficientData = errors.New("insufficient data")

// RecordStore persists cluster assignments. Upserts are keyed by
// (household id, method); a later write replaces the earlier one.
type RecordStore interface {
	UpsertAssignment(ctx context.Context, a models.ClusterAssignment) error
	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ClusterAssignment, error)
}

// PersistError reports a run that stopped on a failed upsert. Assignments
// written before the failure are left in place.
type PersistError struct {
	Method      models.ClusterMethod
	HouseholdID string
	Written     int
	Err         error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %s assignment for household %s (after %d written): %v",
		e.Method, e.HouseholdID, e.Written, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// RunResult is what a completed run computed and wrote
type RunResult struct {
	Method      models.ClusterMethod
	Assignments []models.ClusterAssignment
	Centroids   []Centroid    // kmeans only
	Stats       *AnomalyStats // isolation_forest only
	Written     int
}

// Analyzer runs the clustering routines and writes results to a RecordStore
type Analyzer struct {
	store  RecordStore
	logger *zap.Logger

	// serializes runs so upserts from two runs never interleave
	mu sync.Mutex
}

// New creates an analyzer. A nil logger is replaced with a no-op logger.
func New(store RecordStore, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		store:  store,
		logger: logger.Named("analyzer"),
	}
}

// RunKMeans clusters the households and upserts one kmeans assignment each
func (a *Analyzer) RunKMeans(ctx context.Context, features []models.HouseholdFeatures) (*RunResult, error) {
	if err := ValidateFeatures(features); err != nil {
		return nil, err
	}
	assignments, centroids, err := kmeans(features)
	if err != nil {
		return nil, err
	}

	a.logger.Info("kmeans complete",
		zap.Int("households", len(features)),
		zap.Int("k", len(centroids)),
		zap.Int("iterations", KMeansIterations),
	)
	for i, c := range centroids {
		a.logger.Debug("centroid",
			zap.Int("cluster", i),
			zap.Float64("consumption", c.Consumption),
			zap.Float64("cost", c.Cost),
			zap.Float64("size", c.Size),
		)
	}

	result := &RunResult{
		Method:      models.MethodKMeans,
		Assignments: assignments,
		Centroids:   centroids,
	}
	return result, a.persist(ctx, result)
}

// RunAnomalyDetection flags high-consumption households and upserts one
// isolation_forest assignment each
func (a *Analyzer) RunAnomalyDetection(ctx context.Context, features []models.HouseholdFeatures) (*RunResult, error) {
	if err := ValidateFeatures(features); err != nil {
		return nil, err
	}
	assignments, stats, err := DetectAnomalies(features)
	if err != nil {
		return nil, err
	}

	flagged := 0
	for _, as := range assignments {
		if as.IsAnomaly {
			flagged++
		}
	}
	a.logger.Info("anomaly detection complete",
		zap.Int("households", len(features)),
		zap.Float64("mean", stats.Mean),
		zap.Float64("stddev", stats.StdDev),
		zap.Float64("threshold", stats.Threshold),
		zap.Int("anomalies", flagged),
	)

	result := &RunResult{
		Method:      models.MethodIsolationForest,
		Assignments: assignments,
		Stats:       &stats,
	}
	return result, a.persist(ctx, result)
}

// Assignments returns the stored assignments matching filter
func (a *Analyzer) Assignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ClusterAssignment, error) {
	return a.store.ListAssignments(ctx, filter)
}

// persist writes assignments in order and stops at the first failure
func (a *Analyzer) persist(ctx context.Context, result *RunResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, as := range result.Assignments {
		err := ctx.Err()
		if err == nil {
			err = a.store.UpsertAssignment(ctx, as)
		}
		if err != nil {
			a.logger.Error("upsert failed",
				zap.String("method", string(result.Method)),
				zap.String("household_id", as.HouseholdID),
				zap.Int("written", result.Written),
				zap.Error(err),
			)
			return &PersistError{
				Method:      result.Method,
				HouseholdID: as.HouseholdID,
				Written:     result.Written,
				Err:         err,
			}
		}
		result.Written++
	}

	a.logger.Debug("assignments persisted",
		zap.String("method", string(result.Method)),
		zap.Int("written", result.Written),
	)
	return nil
}
