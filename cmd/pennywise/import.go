package main

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Categorize transactions from OFX/QFX or CSV exports",
		Long: `Parse bank export files and categorize every transaction in them.
Duplicate transactions across files are detected by content hash.

Examples:
  pennywise import ~/Downloads/chase_jan.qfx
  pennywise import ~/Downloads/*.qfx ~/Downloads/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("verbose", "v", false, "show every transaction")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

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

	categoryTotals := make(map[string]float64)
	categoryCounts := make(map[string]int)

	for _, tx := range txns {
		amount := tx.Amount
		pred, err := e.Categorize(cmd.Context(), tx.Description, &amount)
		if err != nil {
			return fmt.Errorf("failed to categorize %q: %w", tx.Description, err)
		}

		categoryTotals[pred.Category] += tx.Amount
		categoryCounts[pred.Category]++

		if verbose {
			fmt.Printf("%s  $%8.2f  %-24s %s (%.0f%%)\n",
				tx.Date.Format("2006-01-02"), tx.Amount, pred.Category,
				tx.Description, pred.Confidence*100)
		}
	}

	fmt.Printf("\n📊 Categorized %d transactions:\n\n", len(txns))
	for _, category := range sortedByTotal(categoryTotals) {
		fmt.Printf("  %-24s %4d transactions  $%10.2f\n",
			category, categoryCounts[category], categoryTotals[category])
	}

	return nil
}

func sortedByTotal(totals map[string]float64) []string {
	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			if totals[categories[j]] > totals[categories[i]] {
				categories[i], categories[j] = categories[j], categories[i]
			}
		}
	}
	return categories
}
