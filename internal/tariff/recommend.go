package tariff

import (
	"fmt"
	"strings"

	"github.com/jgoulah/wattlens/pkg/models"
)

// Recommendation kinds
const (
	KindWarning = "warning"
	KindTip     = "tip"
	KindSuccess = "success"
)

const (
	heavyApplianceKWh  = 50
	heavyHouseholdKWh  = 100
	savingsDaysMonthly = 30
)

// Recommendation is one piece of advice for a household
type Recommendation struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Recommend returns energy-saving advice for an appliance inventory
func Recommend(appliances []models.Appliance) []Recommendation {
	var recs []Recommendation

	for _, a := range appliances {
		monthly := a.MonthlyKWh()
		if monthly > heavyApplianceKWh {
			// one hour less per day over a month
			saved := a.PowerWatts * savingsDaysMonthly / 1000
			recs = append(recs, Recommendation{
				Kind: KindWarning,
				Message: fmt.Sprintf("%s consumes %.1f kWh/month. Consider reducing usage by 1 hour/day to save %.1f kWh.",
					a.Name, monthly, saved),
			})
		}

		name := strings.ToLower(a.Name)
		if strings.Contains(name, "bulb") || strings.Contains(name, "light") {
			recs = append(recs, Recommendation{
				Kind:    KindTip,
				Message: fmt.Sprintf("Switch to LED %s to reduce energy consumption by up to 75%%.", a.Name),
			})
		}
		if strings.Contains(name, "ac") || strings.Contains(name, "air") {
			recs = append(recs, Recommendation{
				Kind:    KindTip,
				Message: fmt.Sprintf("Set %s to 24°C instead of 18°C to save up to 30%% energy.", a.Name),
			})
		}
	}

	if total := TotalKWh(appliances); total > heavyHouseholdKWh {
		recs = append(recs, Recommendation{
			Kind: KindWarning,
			Message: fmt.Sprintf("Your total consumption is %.1f kWh/month. Consider using energy during off-peak hours to reduce costs.",
				total),
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Kind:    KindSuccess,
			Message: "Great job! Your energy usage is efficient. Keep monitoring your consumption.",
		})
	}

	return recs
}
