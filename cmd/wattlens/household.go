package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/pkg/models"
)

var (
	householdName   string
	householdRegion string
	householdIncome string
	householdSize   int
	householdBudget float64
)

var householdCmd = &cobra.Command{
	Use:   "household",
	Short: "Manage households",
}

var householdAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a household",
	Args:  cobra.NoArgs,
	RunE:  runHouseholdAdd,
}

var householdListCmd = &cobra.Command{
	Use:   "list",
	Short: "List households",
	Args:  cobra.NoArgs,
	RunE:  runHouseholdList,
}

var householdUpdateCmd = &cobra.Command{
	Use:   "update [household-id]",
	Short: "Update a household's details",
	Long:  `Updates only the fields whose flags are given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHouseholdUpdate,
}

func init() {
	for _, c := range []*cobra.Command{householdAddCmd, householdUpdateCmd} {
		c.Flags().StringVar(&householdName, "name", "", "Household name")
		c.Flags().StringVar(&householdRegion, "region", "", "Region")
		c.Flags().StringVar(&householdIncome, "income", "", "Income level (low, medium, high)")
		c.Flags().IntVar(&householdSize, "size", 1, "Number of people in the household")
		c.Flags().Float64Var(&householdBudget, "budget", 0, "Monthly energy budget")
	}
	householdCmd.AddCommand(householdAddCmd, householdListCmd, householdUpdateCmd)
	rootCmd.AddCommand(householdCmd)
}

func runHouseholdAdd(cmd *cobra.Command, args []string) error {
	if householdSize < 1 {
		return fmt.Errorf("--size must be at least 1")
	}
	if householdBudget < 0 {
		return fmt.Errorf("--budget must not be negative")
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	h := &models.Household{
		Name:          householdName,
		Region:        householdRegion,
		IncomeLevel:   householdIncome,
		HouseholdSize: householdSize,
		MonthlyBudget: householdBudget,
	}
	if err := e.db.CreateHousehold(cmd.Context(), h); err != nil {
		return err
	}

	fmt.Printf("✓ Created household %s\n", h.ID)
	return nil
}

func runHouseholdList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	households, err := e.db.ListHouseholds(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing households: %w", err)
	}
	if len(households) == 0 {
		fmt.Println("No households found")
		return nil
	}

	currency := e.cfg.GetTariff().Currency
	fmt.Printf("%-36s  %-16s  %-10s  %4s  %14s\n", "ID", "Name", "Region", "Size", "Budget")
	fmt.Println("--------------------------------------------------------------------------------------")
	for _, h := range households {
		fmt.Printf("%-36s  %-16s  %-10s  %4d  %10s %s\n",
			h.ID, h.Name, h.Region, h.HouseholdSize, money(h.MonthlyBudget), currency)
	}
	fmt.Printf("\nTotal: %d households\n", len(households))
	return nil
}

func runHouseholdUpdate(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	h, err := e.db.GetHousehold(ctx, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		h.Name = householdName
	}
	if flags.Changed("region") {
		h.Region = householdRegion
	}
	if flags.Changed("income") {
		h.IncomeLevel = householdIncome
	}
	if flags.Changed("size") {
		if householdSize < 1 {
			return fmt.Errorf("--size must be at least 1")
		}
		h.HouseholdSize = householdSize
	}
	if flags.Changed("budget") {
		if householdBudget < 0 {
			return fmt.Errorf("--budget must not be negative")
		}
		h.MonthlyBudget = householdBudget
	}

	if err := e.db.UpdateHousehold(ctx, h); err != nil {
		return err
	}

	fmt.Printf("✓ Updated household %s\n", h.ID)
	return nil
}
