package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/internal/analyzer"
	"github.com/jgoulah/wattlens/pkg/models"
)

// assignmentFlags holds the --method, --household and --anomalies filter
// flags of one command
type assignmentFlags struct {
	method    string
	household string
	anomalies bool
}

var clustersFilter assignmentFlags

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List stored cluster assignments",
	Long:  `Displays the latest assignment per household for each analysis method.`,
	Args:  cobra.NoArgs,
	RunE:  runClusters,
}

func init() {
	clustersFilter.register(clustersCmd, "Only show")
	rootCmd.AddCommand(clustersCmd)
}

func (f *assignmentFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().StringVar(&f.method, "method", "", verb+" this method (kmeans or isolation_forest)")
	cmd.Flags().StringVar(&f.household, "household", "", verb+" this household")
	cmd.Flags().BoolVar(&f.anomalies, "anomalies", false, verb+" flagged households")
}

func (f assignmentFlags) filter() (models.AssignmentFilter, error) {
	filter := models.AssignmentFilter{
		HouseholdID: f.household,
		AnomalyOnly: f.anomalies,
	}
	if f.method != "" {
		m, err := models.ParseClusterMethod(f.method)
		if err != nil {
			return filter, err
		}
		filter.Method = m
	}
	return filter, nil
}

func runClusters(cmd *cobra.Command, args []string) error {
	filter, err := clustersFilter.filter()
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	assignments, err := e.db.ListAssignments(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("listing assignments: %w", err)
	}
	if len(assignments) == 0 {
		fmt.Println("No cluster assignments found")
		return nil
	}

	fmt.Printf("%-36s  %-16s  %-10s  %-8s  %s\n", "Household", "Method", "Label", "Color", "Updated")
	fmt.Println("----------------------------------------------------------------------------------------------")
	for _, a := range assignments {
		fmt.Printf("%-36s  %-16s  %-10s  %-8s  %s\n",
			a.HouseholdID, a.Method, analyzer.Label(a), analyzer.ClusterColor(a.ClusterID),
			a.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	s := analyzer.Summarize(assignments)
	fmt.Println("----------------------------------------------------------------------------------------------")
	fmt.Printf("Total: %d assignments, %d distinct clusters, %d anomalies\n", s.Assignments, s.Clusters, s.Anomalies)
	return nil
}
