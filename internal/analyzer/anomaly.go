package analyzer

import (
	"math"

	"github.com/jgoulah/wattlens/pkg/models"
)

// AnomalySigma is the number of standard deviations above the mean that flags a household
const AnomalySigma = 2

// AnomalyStats describes the consumption distribution used for flagging
type AnomalyStats struct {
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
	Threshold float64 `json:"threshold"`
}

// Threshold computes the population mean and standard deviation of
// consumption and the resulting cutoff. Cost and size are ignored.
func Threshold(features []models.HouseholdFeatures) (AnomalyStats, error) {
	if err := requireMinimum(features); err != nil {
		return AnomalyStats{}, err
	}

	n := float64(len(features))
	var sum float64
	for _, f := range features {
		sum += f.Consumption
	}
	mean := sum / n

	var sq float64
	for _, f := range features {
		d := f.Consumption - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / n)

	return AnomalyStats{
		Mean:      mean,
		StdDev:    stddev,
		Threshold: mean + AnomalySigma*stddev,
	}, nil
}

// DetectAnomalies flags households whose consumption is strictly above
// mean + 2σ. Results are stored under the isolation_forest tag, though the
// test is a plain z-score cutoff.
func DetectAnomalies(features []models.HouseholdFeatures) ([]models.ClusterAssignment, AnomalyStats, error) {
	stats, err := Threshold(features)
	if err != nil {
		return nil, AnomalyStats{}, err
	}

	assignments := make([]models.ClusterAssignment, len(features))
	for i, f := range features {
		anomaly := f.Consumption > stats.Threshold
		clusterID := 0
		if anomaly {
			clusterID = models.AnomalyClusterID
		}
		assignments[i] = models.ClusterAssignment{
			HouseholdID: f.ID,
			ClusterID:   clusterID,
			Method:      models.MethodIsolationForest,
			IsAnomaly:   anomaly,
		}
	}
	return assignments, stats, nil
}
