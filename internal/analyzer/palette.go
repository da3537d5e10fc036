package analyzer

import (
	"fmt"

	"github.com/jgoulah/wattlens/pkg/models"
)

var clusterPalette = []string{"#00FF7F", "#FF8C00", "#8B5CF6", "#EC4899"}

// ClusterColor maps a cluster index to a display color. The anomaly index -1
// wraps to the last palette entry.
func ClusterColor(clusterID int) string {
	n := len(clusterPalette)
	return clusterPalette[((clusterID%n)+n)%n]
}

// Label returns the display label for an assignment
func Label(a models.ClusterAssignment) string {
	if a.Method == models.MethodKMeans {
		return fmt.Sprintf("Cluster %d", a.ClusterID)
	}
	if a.IsAnomaly {
		return "Anomaly"
	}
	return "Normal"
}

// Summary is the aggregate shown on the admin overview
type Summary struct {
	Assignments int `json:"assignments"`
	Clusters    int `json:"clusters"`
	Anomalies   int `json:"anomalies"`
}

// Summarize counts distinct cluster ids and flagged rows
func Summarize(assignments []models.ClusterAssignment) Summary {
	ids := make(map[int]struct{})
	s := Summary{Assignments: len(assignments)}
	for _, a := range assignments {
		ids[a.ClusterID] = struct{}{}
		if a.IsAnomaly {
			s.Anomalies++
		}
	}
	s.Clusters = len(ids)
	return s
}
