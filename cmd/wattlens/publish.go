package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/internal/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish cluster assignments over MQTT",
	Long: `Reads stored cluster assignments and publishes them as retained MQTT messages,
one per household and method plus a summary per method. Filters narrow the
household messages only; each summary always covers every stored assignment
of its method.`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

var publishFilter assignmentFlags

func init() {
	publishFilter.register(publishCmd, "Only publish")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	filter, err := publishFilter.filter()
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
		fmt.Println("No cluster assignments to publish")
		return nil
	}

	pub, err := publisher.New(e.cfg.MQTT, e.logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Printf("Publishing %d assignments...\n", len(assignments))
	published, err := pub.PublishAssignments(cmd.Context(), e.db, assignments)
	fmt.Printf("Successfully published %d/%d assignments\n", published, len(assignments))
	if err != nil {
		return fmt.Errorf("publishing: %w", err)
	}
	return nil
}
