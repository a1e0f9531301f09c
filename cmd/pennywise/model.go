package main

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect the trained model",
		RunE:  runModelInfo,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Show the training history",
		RunE:  runModelHistory,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "features",
		Short: "Show the top features per category",
		RunE:  runModelFeatures,
	})

	return cmd
}

func runModelInfo(cmd *cobra.Command, _ []string) error {
	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := e.ModelInfo(cmd.Context())
	if err != nil {
		return err
	}

	if !info.IsTrained {
		fmt.Println("No trained model yet. Run 'pennywise train' to build one.")
		return nil
	}

	fmt.Printf("Model version:  %d\n", info.Version)
	fmt.Printf("Last trained:   %s\n", info.LastTrained)
	fmt.Printf("Accuracy:       %.3f\n", info.Accuracy)
	fmt.Printf("Categories:     %d\n", len(info.Categories))

	return nil
}

func runModelHistory(cmd *cobra.Command, _ []string) error {
	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	history, err := e.TrainingHistory(cmd.Context())
	if err != nil {
		return err
	}

	if len(history.RetrainingEvents) == 0 {
		fmt.Println("No training runs recorded yet.")
		return nil
	}

	fmt.Printf("Training runs: %d (corrections applied: %d)\n\n",
		len(history.RetrainingEvents), history.TotalCorrectionsApplied)
	for _, event := range history.RetrainingEvents {
		kind := "retrain"
		if event.IsInitial {
			kind = "initial"
		}
		fmt.Printf("  v%-3d %s  %-7s accuracy %.3f  corrections %d\n",
			event.Version, event.Timestamp.Format("2006-01-02 15:04"),
			kind, event.Metrics.Accuracy, event.CorrectionsApplied)
	}

	return nil
}

func runModelFeatures(cmd *cobra.Command, _ []string) error {
	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := e.ModelInfo(cmd.Context())
	if err != nil {
		return err
	}
	if !info.IsTrained {
		fmt.Println("No trained model yet. Run 'pennywise train' to build one.")
		return nil
	}

	for _, category := range info.Categories {
		features := info.FeatureImportances[category]
		if len(features) == 0 {
			continue
		}
		limit := 5
		if len(features) < limit {
			limit = len(features)
		}
		fmt.Printf("%s:\n", category)
		for _, fw := range features[:limit] {
			fmt.Printf("  %-20s %.4f\n", fw.Feature, fw.Weight)
		}
	}

	return nil
}
