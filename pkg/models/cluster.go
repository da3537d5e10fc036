package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ClusterMethod tags which routine produced an assignment
type ClusterMethod string

const (
	MethodKMeans          ClusterMethod = "kmeans"
	MethodIsolationForest ClusterMethod = "isolation_forest"
)

// AnomalyClusterID is the cluster index reserved for flagged households
const AnomalyClusterID = -1

// ParseClusterMethod validates a method tag read from flags or storage
func ParseClusterMethod(s string) (ClusterMethod, error) {
	switch ClusterMethod(s) {
	case MethodKMeans, MethodIsolationForest:
		return ClusterMethod(s), nil
	default:
		return "", fmt.Errorf("unknown cluster method: %s (available: kmeans, isolation_forest)", s)
	}
}

// ErrInvalidFeature is returned when a feature record fails validation
var ErrInvalidFeature = errors.New("invalid household feature record")

// HouseholdFeatures is the (consumption, cost, size) vector fed to the analyzer.
// It is built fresh from the latest prediction per household and never stored.
type HouseholdFeatures struct {
	ID          string  `json:"id"`
	Consumption float64 `json:"consumption"` // kWh per month
	Cost        float64 `json:"cost"`        // currency units per month
	Size        int     `json:"size"`        // people in the household
}

// Validate checks the record's field ranges
func (f HouseholdFeatures) Validate() error {
	switch {
	case f.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidFeature)
	case !finite(f.Consumption):
		return fmt.Errorf("%w: household %s has non-finite consumption %v", ErrInvalidFeature, f.ID, f.Consumption)
	case !finite(f.Cost):
		return fmt.Errorf("%w: household %s has non-finite cost %v", ErrInvalidFeature, f.ID, f.Cost)
	case f.Consumption < 0:
		return fmt.Errorf("%w: household %s has negative consumption %v", ErrInvalidFeature, f.ID, f.Consumption)
	case f.Cost < 0:
		return fmt.Errorf("%w: household %s has negative cost %v", ErrInvalidFeature, f.ID, f.Cost)
	case f.Size < 1:
		return fmt.Errorf("%w: household %s has size %d", ErrInvalidFeature, f.ID, f.Size)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClusterAssignment is the latest result of one method for one household.
// Rows are unique on (HouseholdID, Method).
type ClusterAssignment struct {
	HouseholdID string        `json:"household_id"`
	ClusterID   int           `json:"cluster_id"`
	Method      ClusterMethod `json:"cluster_method"`
	IsAnomaly   bool          `json:"is_anomaly"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// AssignmentFilter narrows ListAssignments; zero values match everything
type AssignmentFilter struct {
	Method      ClusterMethod
	HouseholdID string
	AnomalyOnly bool
}

// Matches reports whether an assignment passes the filter
func (f AssignmentFilter) Matches(a ClusterAssignment) bool {
	if f.Method != "" && a.Method != f.Method {
		return false
	}
	if f.HouseholdID != "" && a.HouseholdID != f.HouseholdID {
		return false
	}
	if f.AnomalyOnly && !a.IsAnomaly {
		return false
	}
	return true
}
