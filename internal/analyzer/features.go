package analyzer

import (
	"fmt"

	"github.com/jgoulah/wattlens/pkg/models"
)

// Features joins households to their latest prediction. Households with no
// prediction or no positive consumption are left out. Output order follows the
// households slice, which fixes the K-Means seeding order.
func Features(households []models.Household, latest map[string]models.Prediction) []models.HouseholdFeatures {
	out := make([]models.HouseholdFeatures, 0, len(households))
	for _, h := range households {
		p, ok := latest[h.ID]
		if !ok || p.MonthlyConsumptionKWh <= 0 {
			continue
		}
		out = append(out, models.HouseholdFeatures{
			ID:          h.ID,
			Consumption: p.MonthlyConsumptionKWh,
			Cost:        p.EstimatedBill,
			Size:        h.HouseholdSize,
		})
	}
	return out
}

// ValidateFeatures checks every record and rejects duplicate ids
func ValidateFeatures(features []models.HouseholdFeatures) error {
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if err := f.Validate(); err != nil {
			return err
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate household %s", models.ErrInvalidFeature, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

func requireMinimum(features []models.HouseholdFeatures) error {
	if len(features) < MinHouseholds {
		return fmt.Errorf("%w: need at least %d households with predictions, have %d",
			ErrInsufficientData, MinHouseholds, len(features))
	}
	return nil
}
