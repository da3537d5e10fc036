package models

import (
	"encoding/json"
	"time"
)

// Budget status values stored on a prediction
const (
	BudgetWithin = "within_budget"
	BudgetOver   = "over_budget"
)

// ReportTypePrediction is the report type written alongside each prediction
const ReportTypePrediction = "prediction"

// Prediction is a computed monthly consumption and bill estimate
type Prediction struct {
	ID                    string    `json:"id"`
	HouseholdID           string    `json:"household_id"`
	MonthlyConsumptionKWh float64   `json:"monthly_consumption_kwh"`
	EstimatedBill         float64   `json:"estimated_bill"`
	TariffBracket         string    `json:"tariff_bracket"`
	BudgetStatus          string    `json:"budget_status"`
	CreatedAt             time.Time `json:"created_at"`
}

// Report is a stored snapshot of a prediction and its inputs
type Report struct {
	ID           string          `json:"id"`
	HouseholdID  string          `json:"household_id"`
	PredictionID string          `json:"prediction_id"`
	ReportType   string          `json:"report_type"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ApplianceUsage is the per-appliance line of a prediction report
type ApplianceUsage struct {
	Name       string  `json:"name"`
	MonthlyKWh float64 `json:"monthly_kwh"`
}

// PredictionReportData is the document stored in Report.Data for prediction reports
type PredictionReportData struct {
	Appliances []ApplianceUsage `json:"appliances"`
	Prediction Prediction       `json:"prediction"`
	Household  Household        `json:"household"`
}
