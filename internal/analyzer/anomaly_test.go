package analyzer

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/jgoulah/wattlens/pkg/models"
)

func consumptionFeatures(values ...float64) []models.HouseholdFeatures {
	out := make([]models.HouseholdFeatures, len(values))
	for i, v := range values {
		out[i] = feature(fmt.Sprintf("h%d", i), v, v*300, 2)
	}
	return out
}

func TestDetectAnomalies(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		wantMean      float64
		wantStdDev    float64
		wantThreshold float64
		wantFlagged   []bool
	}{
		{
			name:          "outlier below threshold",
			values:        []float64{10, 10, 10, 100},
			wantMean:      32.5,
			wantStdDev:    math.Sqrt(1518.75),
			wantThreshold: 32.5 + 2*math.Sqrt(1518.75),
			wantFlagged:   []bool{false, false, false, false},
		},
		{
			name:          "value equal to threshold is not flagged",
			values:        []float64{10, 10, 10, 10, 200},
			wantMean:      48,
			wantStdDev:    76,
			wantThreshold: 200,
			wantFlagged:   []bool{false, false, false, false, false},
		},
		{
			name:          "clear outlier flagged",
			values:        []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100},
			wantMean:      19,
			wantStdDev:    27,
			wantThreshold: 73,
			wantFlagged:   []bool{false, false, false, false, false, false, false, false, false, true},
		},
		{
			name:          "uniform input",
			values:        []float64{42, 42, 42},
			wantMean:      42,
			wantStdDev:    0,
			wantThreshold: 42,
			wantFlagged:   []bool{false, false, false},
		},
	}

	const eps = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := DetectAnomalies(consumptionFeatures(tt.values...))
			if err != nil {
				t.Fatalf("DetectAnomalies: %v", err)
			}
			if math.Abs(stats.Mean-tt.wantMean) > eps {
				t.Errorf("mean = %v, want %v", stats.Mean, tt.wantMean)
			}
			if math.Abs(stats.StdDev-tt.wantStdDev) > eps {
				t.Errorf("stddev = %v, want %v", stats.StdDev, tt.wantStdDev)
			}
			if math.Abs(stats.Threshold-tt.wantThreshold) > eps {
				t.Errorf("threshold = %v, want %v", stats.Threshold, tt.wantThreshold)
			}
			for i, a := range got {
				if a.IsAnomaly != tt.wantFlagged[i] {
					t.Errorf("household %d anomaly = %v, want %v", i, a.IsAnomaly, tt.wantFlagged[i])
				}
				wantCluster := 0
				if a.IsAnomaly {
					wantCluster = models.AnomalyClusterID
				}
				if a.ClusterID != wantCluster {
					t.Errorf("household %d cluster = %d, want %d", i, a.ClusterID, wantCluster)
				}
				if a.Method != models.MethodIsolationForest {
					t.Errorf("household %d method = %s", i, a.Method)
				}
			}
		})
	}
}

func TestDetectAnomaliesIgnoresCostAndSize(t *testing.T) {
	features := consumptionFeatures(10, 10, 10, 10, 10, 10, 10, 10, 10, 100)
	features[0].Cost = 1e9
	features[1].Size = 50

	got, _, err := DetectAnomalies(features)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if got[0].IsAnomaly || got[1].IsAnomaly {
		t.Errorf("cost/size outliers flagged: %+v %+v", got[0], got[1])
	}
	if !got[9].IsAnomaly {
		t.Errorf("consumption outlier not flagged")
	}
}

func TestDetectAnomaliesRequiresThreeHouseholds(t *testing.T) {
	_, _, err := DetectAnomalies(consumptionFeatures(1, 2))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}
