package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize [description]",
		Short: "Categorize an expense description",
		Long: `Predict the spending category for a transaction description.

Examples:
  pennywise categorize "STARBUCKS STORE 123"
  pennywise categorize "AMAZON MKTPLACE" --amount 34.99`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCategorize,
	}

	cmd.Flags().Float64P("amount", "a", 0, "transaction amount, used by confidence rules")
	cmd.Flags().BoolP("verbose", "v", false, "show alternatives and explanation")

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	var amount *float64
	if cmd.Flags().Changed("amount") {
		v, _ := cmd.Flags().GetFloat64("amount")
		amount = &v
	}

	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	description := strings.Join(args, " ")
	pred, err := e.Categorize(cmd.Context(), description, amount)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%.1f%% confidence, %s)\n", pred.Category, pred.Confidence*100, pred.Source)
	if verbose {
		fmt.Printf("  %s\n", pred.Explanation)
		for _, alt := range pred.Alternatives {
			fmt.Printf("  also considered: %s (%.1f%%)\n", alt.Category, alt.Confidence*100)
		}
		fmt.Printf("  model version: %d\n", pred.ModelVersion)
	}

	return nil
}
