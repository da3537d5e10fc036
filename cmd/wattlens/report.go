package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	reportHousehold string
	reportDataFile  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage stored prediction reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [report-id]",
	Short: "Print a report's JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportUpdateCmd = &cobra.Command{
	Use:   "update [report-id]",
	Short: "Replace a report's JSON document",
	Long:  `Reads the new document from --data (a file path, or - for stdin).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReportUpdate,
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete [report-id]",
	Short: "Delete a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDelete,
}

func init() {
	reportListCmd.Flags().StringVar(&reportHousehold, "household", "", "Only list reports for this household")
	reportUpdateCmd.Flags().StringVar(&reportDataFile, "data", "-", "JSON file with the new report data (- for stdin)")

	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportUpdateCmd, reportDeleteCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	reports, err := e.db.ListReports(cmd.Context(), reportHousehold)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("No reports found")
		return nil
	}

	fmt.Printf("%-36s  %-36s  %-10s  %8s  %s\n", "ID", "Household", "Type", "Size", "Created")
	fmt.Println("------------------------------------------------------------------------------------------------------------------")
	for _, r := range reports {
		fmt.Printf("%-36s  %-36s  %-10s  %8s  %s\n",
			r.ID, r.HouseholdID, r.ReportType, humanize.Bytes(uint64(len(r.Data))), humanize.Time(r.CreatedAt))
	}
	fmt.Printf("\nTotal: %d reports\n", len(reports))
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := e.db.GetReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, r.Data, "", "  "); err != nil {
		return fmt.Errorf("formatting report data: %w", err)
	}
	fmt.Println(out.String())
	return nil
}

func runReportUpdate(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if reportDataFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(reportDataFile)
	}
	if err != nil {
		return fmt.Errorf("reading report data: %w", err)
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.db.UpdateReportData(cmd.Context(), args[0], bytes.TrimSpace(data)); err != nil {
		return err
	}

	fmt.Printf("✓ Updated report %s\n", args[0])
	return nil
}

func runReportDelete(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.db.DeleteReport(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted report %s\n", args[0])
	return nil
}
