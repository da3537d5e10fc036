package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jgoulah/wattlens/pkg/models"
)

func TestAssignmentFlagsFilter(t *testing.T) {
	f := assignmentFlags{method: "isolation_forest", household: "h1", anomalies: true}

	got, err := f.filter()
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	want := models.AssignmentFilter{Method: models.MethodIsolationForest, HouseholdID: "h1", AnomalyOnly: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}

	f.method = "spectral"
	if _, err := f.filter(); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestCommandFiltersAreIndependent(t *testing.T) {
	t.Cleanup(func() {
		clustersFilter, publishFilter = assignmentFlags{}, assignmentFlags{}
	})

	if err := clustersCmd.Flags().Set("anomalies", "true"); err != nil {
		t.Fatal(err)
	}
	if err := clustersCmd.Flags().Set("household", "h1"); err != nil {
		t.Fatal(err)
	}

	got, err := publishFilter.filter()
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if diff := cmp.Diff(models.AssignmentFilter{}, got); diff != "" {
		t.Errorf("publish filter picked up clusters flags (-want +got):\n%s", diff)
	}
	if !clustersFilter.anomalies || clustersFilter.household != "h1" {
		t.Errorf("clustersFilter = %+v, want anomalies for h1", clustersFilter)
	}
}
