package models

import (
	"errors"
	"math"
	"testing"
)

func TestApplianceKWh(t *testing.T) {
	a := Appliance{PowerWatts: 100, UsageHoursPerDay: 5, Quantity: 3, UsageDaysMonthly: 30}
	if got := a.DailyKWh(); got != 1.5 {
		t.Errorf("DailyKWh() = %v, want 1.5", got)
	}
	if got := a.MonthlyKWh(); got != 45 {
		t.Errorf("MonthlyKWh() = %v, want 45", got)
	}
}

func TestHouseholdFeaturesValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       HouseholdFeatures
		wantErr bool
	}{
		{name: "valid", f: HouseholdFeatures{ID: "h", Consumption: 10, Cost: 2000, Size: 1}},
		{name: "zero consumption allowed", f: HouseholdFeatures{ID: "h", Size: 1}},
		{name: "empty id", f: HouseholdFeatures{Consumption: 1, Size: 1}, wantErr: true},
		{name: "negative consumption", f: HouseholdFeatures{ID: "h", Consumption: -0.1, Size: 1}, wantErr: true},
		{name: "negative cost", f: HouseholdFeatures{ID: "h", Cost: -1, Size: 1}, wantErr: true},
		{name: "no people", f: HouseholdFeatures{ID: "h", Consumption: 1}, wantErr: true},
		{name: "NaN consumption", f: HouseholdFeatures{ID: "h", Consumption: math.NaN(), Size: 1}, wantErr: true},
		{name: "infinite consumption", f: HouseholdFeatures{ID: "h", Consumption: math.Inf(1), Size: 1}, wantErr: true},
		{name: "NaN cost", f: HouseholdFeatures{ID: "h", Consumption: 1, Cost: math.NaN(), Size: 1}, wantErr: true},
		{name: "negative infinite cost", f: HouseholdFeatures{ID: "h", Consumption: 1, Cost: math.Inf(-1), Size: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFeature) {
				t.Errorf("error %v does not wrap ErrInvalidFeature", err)
			}
		})
	}
}

func TestParseClusterMethod(t *testing.T) {
	for _, s := range []string{"kmeans", "isolation_forest"} {
		m, err := ParseClusterMethod(s)
		if err != nil || string(m) != s {
			t.Errorf("ParseClusterMethod(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseClusterMethod("dbscan"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestAssignmentFilterMatches(t *testing.T) {
	a := ClusterAssignment{HouseholdID: "h1", ClusterID: -1, Method: MethodIsolationForest, IsAnomaly: true}
	tests := []struct {
		filter AssignmentFilter
		want   bool
	}{
		{AssignmentFilter{}, true},
		{AssignmentFilter{Method: MethodIsolationForest}, true},
		{AssignmentFilter{Method: MethodKMeans}, false},
		{AssignmentFilter{HouseholdID: "h2"}, false},
		{AssignmentFilter{AnomalyOnly: true}, true},
	}
	for _, tt := range tests {
		if got := tt.filter.Matches(a); got != tt.want {
			t.Errorf("%+v.Matches() = %v, want %v", tt.filter, got, tt.want)
		}
	}
}
