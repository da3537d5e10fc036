package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/pkg/models"
)

var (
	applianceName  string
	applianceWatts float64
	applianceHours float64
	applianceQty   int
	applianceDays  int
)

var applianceCmd = &cobra.Command{
	Use:   "appliance",
	Short: "Manage a household's appliance inventory",
}

var applianceAddCmd = &cobra.Command{
	Use:   "add [household-id]",
	Short: "Add an appliance to a household",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplianceAdd,
}

var applianceListCmd = &cobra.Command{
	Use:   "list [household-id]",
	Short: "List a household's appliances",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplianceList,
}

var applianceDeleteCmd = &cobra.Command{
	Use:   "delete [appliance-id]",
	Short: "Remove an appliance",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplianceDelete,
}

func init() {
	applianceAddCmd.Flags().StringVar(&applianceName, "name", "", "Appliance name")
	applianceAddCmd.Flags().Float64Var(&applianceWatts, "watts", 0, "Power draw in watts")
	applianceAddCmd.Flags().Float64Var(&applianceHours, "hours", 0, "Hours of use per day")
	applianceAddCmd.Flags().IntVar(&applianceQty, "quantity", 1, "Number of identical appliances")
	applianceAddCmd.Flags().IntVar(&applianceDays, "days", models.DefaultUsageDaysMonthly, "Days of use per month")
	applianceAddCmd.MarkFlagRequired("name")
	applianceAddCmd.MarkFlagRequired("watts")
	applianceAddCmd.MarkFlagRequired("hours")

	applianceCmd.AddCommand(applianceAddCmd, applianceListCmd, applianceDeleteCmd)
	rootCmd.AddCommand(applianceCmd)
}

func runApplianceAdd(cmd *cobra.Command, args []string) error {
	switch {
	case applianceWatts <= 0:
		return fmt.Errorf("--watts must be positive")
	case applianceHours < 0 || applianceHours > 24:
		return fmt.Errorf("--hours must be between 0 and 24")
	case applianceQty < 1:
		return fmt.Errorf("--quantity must be at least 1")
	case applianceDays < 1 || applianceDays > 31:
		return fmt.Errorf("--days must be between 1 and 31")
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if _, err := e.db.GetHousehold(ctx, args[0]); err != nil {
		return err
	}

	a := &models.Appliance{
		HouseholdID:      args[0],
		Name:             applianceName,
		PowerWatts:       applianceWatts,
		UsageHoursPerDay: applianceHours,
		Quantity:         applianceQty,
		UsageDaysMonthly: applianceDays,
	}
	if err := e.db.AddAppliance(ctx, a); err != nil {
		return err
	}

	fmt.Printf("✓ Added %s (%.2f kWh/month) as %s\n", a.Name, a.MonthlyKWh(), a.ID)
	return nil
}

func runApplianceList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	appliances, err := e.db.ListAppliances(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing appliances: %w", err)
	}
	if len(appliances) == 0 {
		fmt.Println("No appliances found")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %6s  %4s  %4s  %9s  %10s\n", "ID", "Name", "Watts", "Hours", "Qty", "Days", "kWh/day", "kWh/month")
	fmt.Println("-------------------------------------------------------------------------------------------------------------")
	var total, daily float64
	for _, a := range appliances {
		fmt.Printf("%-36s  %-20s  %8.0f  %6.1f  %4d  %4d  %9.2f  %10.2f\n",
			a.ID, a.Name, a.PowerWatts, a.UsageHoursPerDay, a.Quantity, a.UsageDaysMonthly, a.DailyKWh(), a.MonthlyKWh())
		total += a.MonthlyKWh()
		daily += a.DailyKWh()
	}
	fmt.Println("-------------------------------------------------------------------------------------------------------------")
	fmt.Printf("Total: %.2f kWh/month, %.2f kWh on a day every appliance runs (%d appliances)\n", total, daily, len(appliances))
	return nil
}

func runApplianceDelete(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.db.DeleteAppliance(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted appliance %s\n", args[0])
	return nil
}
