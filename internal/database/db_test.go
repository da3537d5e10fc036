package database

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jgoulah/wattlens/internal/analyzer"
	"github.com/jgoulah/wattlens/pkg/models"
)

// Compile-time check that DB can back the analyzer
var _ analyzer.RecordStore = (*DB)(nil)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Deterministic, strictly increasing clock
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	db.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return db
}

func mustCreateHousehold(t *testing.T, db *DB, name string, size int) *models.Household {
	t.Helper()
	h := &models.Household{Name: name, Region: "Kigali", IncomeLevel: "medium", HouseholdSize: size, MonthlyBudget: 20000}
	if err := db.CreateHousehold(context.Background(), h); err != nil {
		t.Fatalf("CreateHousehold: %v", err)
	}
	return h
}

var ignoreTimes = cmpopts.IgnoreFields(models.ClusterAssignment{}, "UpdatedAt")

func TestHouseholdCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := mustCreateHousehold(t, db, "first", 3)
	second := mustCreateHousehold(t, db, "second", 5)
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct generated IDs, got %q and %q", first.ID, second.ID)
	}

	got, err := db.GetHousehold(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetHousehold: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("GetHousehold mismatch (-want +got):\n%s", diff)
	}

	second.MonthlyBudget = 35000
	second.HouseholdSize = 6
	if err := db.UpdateHousehold(ctx, second); err != nil {
		t.Fatalf("UpdateHousehold: %v", err)
	}

	list, err := db.ListHouseholds(ctx)
	if err != nil {
		t.Fatalf("ListHouseholds: %v", err)
	}
	if diff := cmp.Diff([]models.Household{*first, *second}, list); diff != "" {
		t.Errorf("ListHouseholds mismatch (-want +got):\n%s", diff)
	}

	if _, err := db.GetHousehold(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetHousehold(missing) error = %v, want ErrNotFound", err)
	}
	if err := db.UpdateHousehold(ctx, &models.Household{ID: "missing", HouseholdSize: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateHousehold(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHouseholdSizeConstraint(t *testing.T) {
	db := openTestDB(t)
	err := db.CreateHousehold(context.Background(), &models.Household{Name: "empty", HouseholdSize: 0})
	if err == nil {
		t.Fatal("expected CHECK constraint failure for household_size 0")
	}
}

func TestAppliances(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	h := mustCreateHousehold(t, db, "home", 2)

	fridge := &models.Appliance{HouseholdID: h.ID, Name: "Fridge", PowerWatts: 150, UsageHoursPerDay: 24}
	tv := &models.Appliance{HouseholdID: h.ID, Name: "TV", PowerWatts: 100, UsageHoursPerDay: 4, Quantity: 2, UsageDaysMonthly: 20}
	for _, a := range []*models.Appliance{fridge, tv} {
		if err := db.AddAppliance(ctx, a); err != nil {
			t.Fatalf("AddAppliance(%s): %v", a.Name, err)
		}
	}
	if fridge.Quantity != 1 || fridge.UsageDaysMonthly != models.DefaultUsageDaysMonthly {
		t.Errorf("defaults not applied: %+v", fridge)
	}

	list, err := db.ListAppliances(ctx, h.ID)
	if err != nil {
		t.Fatalf("ListAppliances: %v", err)
	}
	if diff := cmp.Diff([]models.Appliance{*fridge, *tv}, list); diff != "" {
		t.Errorf("ListAppliances mismatch (-want +got):\n%s", diff)
	}

	if err := db.DeleteAppliance(ctx, fridge.ID); err != nil {
		t.Fatalf("DeleteAppliance: %v", err)
	}
	if err := db.DeleteAppliance(ctx, fridge.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteAppliance error = %v, want ErrNotFound", err)
	}

	orphan := &models.Appliance{HouseholdID: "nope", Name: "Kettle", PowerWatts: 2000, UsageHoursPerDay: 0.2}
	if err := db.AddAppliance(ctx, orphan); err == nil {
		t.Error("expected foreign key failure for unknown household")
	}
}

func TestSavePredictionAndLatest(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a := mustCreateHousehold(t, db, "a", 2)
	b := mustCreateHousehold(t, db, "b", 4)
	mustCreateHousehold(t, db, "no predictions", 1)

	save := func(h *models.Household, kwh float64) *models.Prediction {
		t.Helper()
		p := &models.Prediction{HouseholdID: h.ID, MonthlyConsumptionKWh: kwh, EstimatedBill: kwh * 300, TariffBracket: "21-50", BudgetStatus: models.BudgetWithin}
		report, err := db.SavePrediction(ctx, p, map[string]float64{"kwh": kwh})
		if err != nil {
			t.Fatalf("SavePrediction: %v", err)
		}
		if report.PredictionID != p.ID || report.ReportType != models.ReportTypePrediction {
			t.Fatalf("unexpected report %+v", report)
		}
		return p
	}

	save(a, 30)
	latestA := save(a, 40)
	latestB := save(b, 25)

	latest, err := db.LatestPredictions(ctx)
	if err != nil {
		t.Fatalf("LatestPredictions: %v", err)
	}
	want := map[string]models.Prediction{a.ID: *latestA, b.ID: *latestB}
	if diff := cmp.Diff(want, latest); diff != "" {
		t.Errorf("LatestPredictions mismatch (-want +got):\n%s", diff)
	}

	history, err := db.ListPredictions(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListPredictions: %v", err)
	}
	if len(history) != 2 || history[0].ID != latestA.ID {
		t.Errorf("ListPredictions = %+v, want newest first", history)
	}
}

func TestReports(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	h := mustCreateHousehold(t, db, "home", 3)

	p := &models.Prediction{HouseholdID: h.ID, MonthlyConsumptionKWh: 12, EstimatedBill: 2400, TariffBracket: "0-20", BudgetStatus: models.BudgetWithin}
	created, err := db.SavePrediction(ctx, p, map[string]string{"note": "first"})
	if err != nil {
		t.Fatalf("SavePrediction: %v", err)
	}

	got, err := db.GetReport(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if string(got.Data) != `{"note":"first"}` {
		t.Errorf("report data = %s", got.Data)
	}

	if err := db.UpdateReportData(ctx, created.ID, json.RawMessage(`{"note":"edited"}`)); err != nil {
		t.Fatalf("UpdateReportData: %v", err)
	}
	if err := db.UpdateReportData(ctx, created.ID, json.RawMessage(`{broken`)); err == nil {
		t.Error("expected invalid JSON to be rejected")
	}

	all, err := db.ListReports(ctx, "")
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(all) != 1 || string(all[0].Data) != `{"note":"edited"}` {
		t.Errorf("ListReports = %+v", all)
	}

	if err := db.DeleteReport(ctx, created.ID); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if _, err := db.GetReport(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport after delete error = %v, want ErrNotFound", err)
	}
}

func TestUpsertAssignmentOverwritesPerMethod(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	writes := []models.ClusterAssignment{
		{HouseholdID: "h1", ClusterID: 2, Method: models.MethodKMeans},
		{HouseholdID: "h1", ClusterID: -1, Method: models.MethodIsolationForest, IsAnomaly: true},
		{HouseholdID: "h2", ClusterID: 0, Method: models.MethodIsolationForest},
		{HouseholdID: "h1", ClusterID: 1, Method: models.MethodKMeans},
	}
	for _, w := range writes {
		if err := db.UpsertAssignment(ctx, w); err != nil {
			t.Fatalf("UpsertAssignment: %v", err)
		}
	}

	all, err := db.ListAssignments(ctx, models.AssignmentFilter{})
	if err != nil {
		t.Fatalf("ListAssignments: %v", err)
	}
	want := []models.ClusterAssignment{
		{HouseholdID: "h1", ClusterID: -1, Method: models.MethodIsolationForest, IsAnomaly: true},
		{HouseholdID: "h1", ClusterID: 1, Method: models.MethodKMeans},
		{HouseholdID: "h2", ClusterID: 0, Method: models.MethodIsolationForest},
	}
	if diff := cmp.Diff(want, all, ignoreTimes); diff != "" {
		t.Errorf("ListAssignments mismatch (-want +got):\n%s", diff)
	}
	for _, a := range all {
		if a.UpdatedAt.IsZero() {
			t.Errorf("assignment %+v has no updated_at", a)
		}
	}

	tests := []struct {
		name   string
		filter models.AssignmentFilter
		want   int
	}{
		{name: "kmeans", filter: models.AssignmentFilter{Method: models.MethodKMeans}, want: 1},
		{name: "isolation forest", filter: models.AssignmentFilter{Method: models.MethodIsolationForest}, want: 2},
		{name: "household", filter: models.AssignmentFilter{HouseholdID: "h1"}, want: 2},
		{name: "anomalies", filter: models.AssignmentFilter{AnomalyOnly: true}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListAssignments(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListAssignments: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d rows, want %d", len(got), tt.want)
			}
			for _, a := range got {
				if !tt.filter.Matches(a) {
					t.Errorf("row %+v does not match filter", a)
				}
			}
		})
	}
}

func TestAnalyzerAgainstDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var households []models.Household
	for i, kwh := range []float64{10, 12, 11, 95, 0} {
		h := mustCreateHousehold(t, db, "h", i+1)
		households = append(households, *h)
		if kwh == 0 {
			continue
		}
		p := &models.Prediction{HouseholdID: h.ID, MonthlyConsumptionKWh: kwh, EstimatedBill: kwh * 300, TariffBracket: "x", BudgetStatus: models.BudgetWithin}
		if _, err := db.SavePrediction(ctx, p, struct{}{}); err != nil {
			t.Fatalf("SavePrediction: %v", err)
		}
	}

	latest, err := db.LatestPredictions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	features := analyzer.Features(households, latest)
	if len(features) != 4 {
		t.Fatalf("got %d features, want 4 (household without prediction skipped)", len(features))
	}

	a := analyzer.New(db, nil)
	if _, err := a.RunKMeans(ctx, features); err != nil {
		t.Fatalf("RunKMeans: %v", err)
	}
	if _, err := a.RunAnomalyDetection(ctx, features); err != nil {
		t.Fatalf("RunAnomalyDetection: %v", err)
	}

	stored, err := db.ListAssignments(ctx, models.AssignmentFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 8 {
		t.Errorf("stored %d assignments, want 8", len(stored))
	}
}
