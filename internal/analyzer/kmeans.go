package analyzer

import (
	"math"

	"github.com/jgoulah/wattlens/pkg/models"
)

const (
	// MaxClusters caps k; the effective k is min(MaxClusters, N)
	MaxClusters = 3
	// KMeansIterations is a fixed count; there is no convergence test
	KMeansIterations = 10
)

// Centroid is the mean feature vector of one cluster during a run
type Centroid struct {
	Consumption float64
	Cost        float64
	Size        float64
}

func centroidOf(f models.HouseholdFeatures) Centroid {
	return Centroid{Consumption: f.Consumption, Cost: f.Cost, Size: float64(f.Size)}
}

// distance is plain Euclidean over raw units. Features are not normalized, so
// cost dominates household size.
func distance(f models.HouseholdFeatures, c Centroid) float64 {
	dc := f.Consumption - c.Consumption
	dk := f.Cost - c.Cost
	ds := float64(f.Size) - c.Size
	return math.Sqrt(dc*dc + dk*dk + ds*ds)
}

// nearest returns the index of the closest centroid. Strict comparison keeps
// the lowest index on ties.
func nearest(f models.HouseholdFeatures, centroids []Centroid) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := distance(f, c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// cluster runs fixed-iteration K-Means and returns the labels from the final
// assignment step along with the centroids after the final update.
func cluster(features []models.HouseholdFeatures, k, iterations int) ([]int, []Centroid) {
	centroids := make([]Centroid, k)
	for i := 0; i < k; i++ {
		centroids[i] = centroidOf(features[i])
	}

	labels := make([]int, len(features))
	for iter := 0; iter < iterations; iter++ {
		for i, f := range features {
			labels[i] = nearest(f, centroids)
		}

		sums := make([]Centroid, k)
		counts := make([]int, k)
		for i, f := range features {
			c := labels[i]
			sums[c].Consumption += f.Consumption
			sums[c].Cost += f.Cost
			sums[c].Size += float64(f.Size)
			counts[c]++
		}
		for c := 0; c < k; c++ {
			// Empty clusters keep their previous centroid
			if counts[c] == 0 {
				continue
			}
			n := float64(counts[c])
			centroids[c] = Centroid{
				Consumption: sums[c].Consumption / n,
				Cost:        sums[c].Cost / n,
				Size:        sums[c].Size / n,
			}
		}
	}

	return labels, centroids
}

// KMeans assigns every household to one of min(3, N) clusters. Centroids are
// seeded from the first k records, so results depend on input order.
func KMeans(features []models.HouseholdFeatures) ([]models.ClusterAssignment, error) {
	assignments, _, err := kmeans(features)
	return assignments, err
}

func kmeans(features []models.HouseholdFeatures) ([]models.ClusterAssignment, []Centroid, error) {
	if err := requireMinimum(features); err != nil {
		return nil, nil, err
	}

	k := min(MaxClusters, len(features))
	labels, centroids := cluster(features, k, KMeansIterations)

	assignments := make([]models.ClusterAssignment, len(features))
	for i, f := range features {
		assignments[i] = models.ClusterAssignment{
			HouseholdID: f.ID,
			ClusterID:   labels[i],
			Method:      models.MethodKMeans,
			IsAnomaly:   false,
		}
	}
	return assignments, centroids, nil
}
