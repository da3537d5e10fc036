package models

import "time"

// Household represents a registered household and its monthly budget
type Household struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Region        string    `json:"region"`
	IncomeLevel   string    `json:"income_level"`
	HouseholdSize int       `json:"household_size"`
	MonthlyBudget float64   `json:"monthly_budget"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Appliance is one line of a household's appliance inventory
type Appliance struct {
	ID               string    `json:"id"`
	HouseholdID      string    `json:"household_id"`
	Name             string    `json:"name"`
	PowerWatts       float64   `json:"power_watts"`
	UsageHoursPerDay float64   `json:"usage_hours_per_day"`
	Quantity         int       `json:"quantity"`
	UsageDaysMonthly int       `json:"usage_days_monthly"`
	CreatedAt        time.Time `json:"created_at"`
}

// DefaultUsageDaysMonthly is used when an appliance is added without a day count
const DefaultUsageDaysMonthly = 30

// DailyKWh returns the appliance's consumption for one day of use
func (a Appliance) DailyKWh() float64 {
	return a.PowerWatts * a.UsageHoursPerDay * float64(a.Quantity) / 1000
}

// MonthlyKWh returns the appliance's consumption over its monthly usage days
func (a Appliance) MonthlyKWh() float64 {
	return a.PowerWatts * a.UsageHoursPerDay * float64(a.Quantity) * float64(a.UsageDaysMonthly) / 1000
}
