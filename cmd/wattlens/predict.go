package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/internal/tariff"
	"github.com/jgoulah/wattlens/pkg/models"
)

var predictCmd = &cobra.Command{
	Use:   "predict [household-id]",
	Short: "Predict a household's monthly consumption and bill",
	Long: `Sums the household's appliance inventory into monthly kWh, prices it against
the configured tariff and compares the bill with the household budget.
The prediction and a report snapshot are stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

var predictHistoryCmd = &cobra.Command{
	Use:   "history [household-id]",
	Short: "List a household's past predictions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredictHistory,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [household-id]",
	Short: "Show energy-saving recommendations for a household",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	predictCmd.AddCommand(predictHistoryCmd)
	rootCmd.AddCommand(predictCmd, recommendCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	calc, err := tariff.New(e.cfg.GetTariff())
	if err != nil {
		return fmt.Errorf("loading tariff: %w", err)
	}

	ctx := cmd.Context()
	h, err := e.db.GetHousehold(ctx, args[0])
	if err != nil {
		return err
	}
	appliances, err := e.db.ListAppliances(ctx, h.ID)
	if err != nil {
		return fmt.Errorf("listing appliances: %w", err)
	}

	p, err := calc.Predict(*h, appliances)
	if err != nil {
		return err
	}
	report, err := e.db.SavePrediction(ctx, p, tariff.ReportData(*h, *p, appliances))
	if err != nil {
		return err
	}

	currency := calc.Currency()
	fmt.Printf("Consumption:    %.2f kWh/month\n", p.MonthlyConsumptionKWh)
	fmt.Printf("Tariff bracket: %s kWh\n", p.TariffBracket)
	fmt.Printf("Estimated bill: %s %s\n", money(p.EstimatedBill), currency)
	fmt.Printf("Budget:         %s %s\n", money(h.MonthlyBudget), currency)
	if p.BudgetStatus == models.BudgetWithin {
		fmt.Printf("✓ Within budget, %s %s remaining\n", money(h.MonthlyBudget-p.EstimatedBill), currency)
	} else {
		fmt.Printf("⚠ Over budget by %s %s\n", money(p.EstimatedBill-h.MonthlyBudget), currency)
	}
	fmt.Printf("\nSaved prediction %s (report %s)\n", p.ID, report.ID)
	return nil
}

func runPredictHistory(cmd *cobra.Command, args []string) error {
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
	predictions, err := e.db.ListPredictions(ctx, h.ID)
	if err != nil {
		return fmt.Errorf("listing predictions: %w", err)
	}
	if len(predictions) == 0 {
		fmt.Println("No predictions found")
		return nil
	}

	currency := e.cfg.GetTariff().Currency
	fmt.Printf("%-16s  %10s  %9s  %14s  %-8s  %s\n", "Date", "kWh/month", "kWh/day", "Bill", "Bracket", "Budget")
	fmt.Println("---------------------------------------------------------------------------------")
	for _, p := range predictions {
		fmt.Printf("%-16s  %10.2f  %9.2f  %14s  %-8s  %s\n",
			p.CreatedAt.Local().Format("2006-01-02 15:04"), p.MonthlyConsumptionKWh,
			p.MonthlyConsumptionKWh/models.DefaultUsageDaysMonthly,
			money(p.EstimatedBill)+" "+currency, p.TariffBracket, p.BudgetStatus)
	}
	fmt.Println("---------------------------------------------------------------------------------")
	fmt.Printf("Total: %d predictions for %s\n", len(predictions), h.Name)
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	appliances, err := e.db.ListAppliances(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing appliances: %w", err)
	}

	for _, r := range tariff.Recommend(appliances) {
		marker := "•"
		switch r.Kind {
		case tariff.KindWarning:
			marker = "⚠"
		case tariff.KindSuccess:
			marker = "✓"
		}
		fmt.Printf("%s %s\n", marker, r.Message)
	}
	return nil
}
