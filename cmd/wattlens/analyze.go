package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/internal/analyzer"
	"github.com/jgoulah/wattlens/pkg/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run household pattern analysis",
	Long: `Builds a (consumption, cost, size) feature vector from each household's latest
prediction and runs one of the analysis routines. At least 3 households with a
positive predicted consumption are required.`,
}

var analyzeKMeansCmd = &cobra.Command{
	Use:   "kmeans",
	Short: "Group households into up to 3 clusters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, models.MethodKMeans)
	},
}

var analyzeAnomaliesCmd = &cobra.Command{
	Use:     "anomalies",
	Aliases: []string{"isolation-forest"},
	Short:   "Flag households consuming more than mean + 2 standard deviations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, models.MethodIsolationForest)
	},
}

func init() {
	analyzeCmd.AddCommand(analyzeKMeansCmd, analyzeAnomaliesCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, method models.ClusterMethod) error {
	fmt.Printf("=== Analysis (%s) started at %s ===\n", method, time.Now().Format("2006-01-02 15:04:05 MST"))

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	households, err := e.db.ListHouseholds(ctx)
	if err != nil {
		return fmt.Errorf("listing households: %w", err)
	}
	latest, err := e.db.LatestPredictions(ctx)
	if err != nil {
		return fmt.Errorf("loading predictions: %w", err)
	}
	features := analyzer.Features(households, latest)

	a := analyzer.New(e.db, e.logger)
	var result *analyzer.RunResult
	switch method {
	case models.MethodKMeans:
		result, err = a.RunKMeans(ctx, features)
	default:
		result, err = a.RunAnomalyDetection(ctx, features)
	}

	var perr *analyzer.PersistError
	switch {
	case errors.Is(err, analyzer.ErrInsufficientData):
		return fmt.Errorf("need at least %d households with predictions to run %s (have %d)",
			analyzer.MinHouseholds, method, len(features))
	case errors.As(err, &perr):
		return fmt.Errorf("%w (%d of %d assignments saved)", err, perr.Written, len(features))
	case err != nil:
		return err
	}

	if result.Stats != nil {
		fmt.Printf("Mean: %.2f kWh  Std dev: %.2f kWh  Threshold: %.2f kWh\n",
			result.Stats.Mean, result.Stats.StdDev, result.Stats.Threshold)
	}
	for i, c := range result.Centroids {
		fmt.Printf("Cluster %d centroid: %.2f kWh, %.2f cost, %.1f people\n", i, c.Consumption, c.Cost, c.Size)
	}

	summary := analyzer.Summarize(result.Assignments)
	fmt.Printf("✓ Saved %d assignments (%d clusters, %d anomalies)\n",
		result.Written, summary.Clusters, summary.Anomalies)
	return nil
}
