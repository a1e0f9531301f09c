package main

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring [files...]",
		Short: "Detect recurring payments and subscriptions",
		Long: `Scan transaction exports for recurring payment patterns: subscriptions,
memberships, and other charges that repeat at consistent intervals.

Examples:
  pennywise recurring ~/Downloads/chase_2025.qfx
  pennywise recurring ~/Downloads/*.csv --window-days 180`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecurring,
	}

	cmd.Flags().Int("min-occurrences", 0, "minimum charges before a pattern counts (default 3)")
	cmd.Flags().Int("window-days", 0, "how far back to look (default 365)")
	cmd.Flags().Float64("amount-variance", 0, "allowed relative amount variance (default 0.05)")

	return cmd
}

func runRecurring(cmd *cobra.Command, args []string) error {
	minOccurrences, _ := cmd.Flags().GetInt("min-occurrences")
	windowDays, _ := cmd.Flags().GetInt("window-days")
	amountVariance, _ := cmd.Flags().GetFloat64("amount-variance")

	files, err := expandFileArgs(args)
	if err != nil {
		return err
	}

	txns, err := readTransactions(cmd.Context(), files)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Println("No transactions found in any file.")
		return nil
	}

	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := e.DetectRecurring(cmd.Context(), txns, service.DetectorOptions{
		MinOccurrences: minOccurrences,
		WindowDays:     windowDays,
		AmountVariance: amountVariance,
	})
	if err != nil {
		return err
	}

	if len(report.Patterns) == 0 {
		fmt.Println("No recurring patterns detected.")
		return nil
	}

	fmt.Printf("\n🔁 Recurring payments (%d patterns, %d subscriptions):\n\n",
		len(report.Patterns), report.TotalSubscriptions)
	for _, p := range report.Patterns {
		label := ""
		if p.IsSubscription {
			label = " [subscription]"
		}
		fmt.Printf("  %-40s $%8.2f  %-12s $%.2f/yr%s\n",
			p.Description, p.AvgAmount, p.Interval, p.AnnualCost, label)
	}

	fmt.Printf("\n💳 Subscription cost: $%.2f/month ($%.2f/year)\n",
		report.MonthlySubscriptionCost, report.AnnualSubscriptionCost)

	if len(report.UpcomingPayments) > 0 {
		fmt.Println("\n📅 Due within a week:")
		for _, u := range report.UpcomingPayments {
			fmt.Printf("  %s  %-40s $%.2f\n", u.Date.Format("2006-01-02"), u.Description, u.Amount)
		}
	}

	return nil
}
