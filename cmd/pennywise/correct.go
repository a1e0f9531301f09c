package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct [description]",
		Short: "Record a category correction",
		Long: `Tell the engine what category a description really belongs to. The
correction immediately overrides future predictions for the same description,
and the next retraining run folds it into the model.

Examples:
  pennywise correct "ACME WIDGETS LLC" --category "Business Services"
  pennywise correct "SHELL OIL 123" --category Transportation --predicted Shopping --amount 45.00`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCorrect,
	}

	cmd.Flags().StringP("category", "c", "", "the correct category (required)")
	cmd.Flags().StringP("predicted", "p", "", "the category the model predicted")
	cmd.Flags().Float64P("amount", "a", 0, "transaction amount")
	cmd.Flags().Float64("confidence", 0, "model confidence of the mistaken prediction")
	cmd.Flags().String("ref", "", "transaction reference for deduplication")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runCorrect(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	predicted, _ := cmd.Flags().GetString("predicted")
	ref, _ := cmd.Flags().GetString("ref")

	var amount *float64
	if cmd.Flags().Changed("amount") {
		v, _ := cmd.Flags().GetFloat64("amount")
		amount = &v
	}

	var confidence *float64
	if cmd.Flags().Changed("confidence") {
		v, _ := cmd.Flags().GetFloat64("confidence")
		confidence = &v
	}

	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	saved, err := e.Correct(cmd.Context(), engine.CorrectionRequest{
		Description:       strings.Join(args, " "),
		Amount:            amount,
		Confidence:        confidence,
		PredictedCategory: predicted,
		CorrectCategory:   category,
		TransactionRef:    ref,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unknown category") {
			fmt.Println("Valid categories:")
			for _, c := range model.ActiveCategories(detailedCategories()) {
				fmt.Printf("  - %s\n", c)
			}
		}
		return err
	}

	fmt.Printf("✅ Correction #%d recorded: %q → %s\n", saved.ID, saved.Description, saved.CorrectCategory)
	fmt.Println("Run 'pennywise retrain' to fold pending corrections into the model.")

	return nil
}
