package tariff

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jgoulah/wattlens/internal/config"
	"github.com/jgoulah/wattlens/pkg/models"
)

// ErrNoAppliances is returned when a prediction is requested for an empty inventory
var ErrNoAppliances = errors.New("household has no appliances")

// Calculator prices monthly consumption against a tiered tariff
type Calculator struct {
	tariff config.TariffConfig
}

// New creates a calculator for a validated tariff
func New(t config.TariffConfig) (*Calculator, error) {
	if err := config.ValidateTariff(t); err != nil {
		return nil, err
	}
	return &Calculator{tariff: t}, nil
}

// Currency returns the tariff's currency code
func (c *Calculator) Currency() string {
	return c.tariff.Currency
}

// Bracket returns the tier that prices the whole of kWh. Tiers are not
// progressive: the full amount is billed at the matching tier's rate.
func (c *Calculator) Bracket(kWh float64) config.TariffBracket {
	last := len(c.tariff.Brackets) - 1
	for _, b := range c.tariff.Brackets[:last] {
		if kWh <= b.MaxKWh {
			return b
		}
	}
	return c.tariff.Brackets[last]
}

// Bill returns the monthly bill for kWh. It is not rounded; callers round
// for display only, so the budget check sees the exact amount.
func (c *Calculator) Bill(kWh float64) decimal.Decimal {
	rate := decimal.NewFromFloat(c.Bracket(kWh).Rate)
	return decimal.NewFromFloat(kWh).Mul(rate)
}

// TotalKWh sums monthly consumption across appliances
func TotalKWh(appliances []models.Appliance) float64 {
	total := decimal.Zero
	for _, a := range appliances {
		total = total.Add(decimal.NewFromFloat(a.MonthlyKWh()))
	}
	f, _ := total.Float64()
	return f
}

// Predict computes consumption, bill and budget status for a household. The
// returned prediction has no ID; the store assigns one on insert.
func (c *Calculator) Predict(h models.Household, appliances []models.Appliance) (*models.Prediction, error) {
	if len(appliances) == 0 {
		return nil, fmt.Errorf("predicting for household %s: %w", h.ID, ErrNoAppliances)
	}

	kWh := TotalKWh(appliances)
	bill := c.Bill(kWh)

	status := models.BudgetOver
	if bill.LessThanOrEqual(decimal.NewFromFloat(h.MonthlyBudget)) {
		status = models.BudgetWithin
	}

	billF, _ := bill.Float64()
	return &models.Prediction{
		HouseholdID:           h.ID,
		MonthlyConsumptionKWh: kWh,
		EstimatedBill:         billF,
		TariffBracket:         c.Bracket(kWh).Label,
		BudgetStatus:          status,
	}, nil
}

// ReportData builds the document stored with a prediction report
func ReportData(h models.Household, p models.Prediction, appliances []models.Appliance) models.PredictionReportData {
	usage := make([]models.ApplianceUsage, len(appliances))
	for i, a := range appliances {
		usage[i] = models.ApplianceUsage{Name: a.Name, MonthlyKWh: a.MonthlyKWh()}
	}
	return models.PredictionReportData{
		Appliances: usage,
		Prediction: p,
		Household:  h,
	}
}
