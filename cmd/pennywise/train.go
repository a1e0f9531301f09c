package main

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the initial model from seed data",
		Long: `Build the first model version from the built-in seed corpus. Use this
to initialize a fresh data directory; later versions come from 'retrain'.`,
		RunE: runTrain,
	}
}

func runTrain(cmd *cobra.Command, _ []string) error {
	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := e.Bootstrap(cmd.Context(), trainingProgressBar("Training model"))
	if err != nil {
		return err
	}

	fmt.Printf("✅ Model version %d trained on %d categories (accuracy %.3f)\n",
		result.Version, len(result.Categories), result.Metrics.Accuracy)

	return nil
}

func retrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the model with pending corrections",
		Long: `Refit the model from seed data plus every unapplied correction, producing
a new model version. Corrections are marked as applied only once the new
version is durable on disk.`,
		RunE: runRetrain,
	}

	cmd.Flags().Int("max", 0, "maximum corrections to apply this run (0 = all)")

	return cmd
}

func runRetrain(cmd *cobra.Command, _ []string) error {
	maxCorrections, _ := cmd.Flags().GetInt("max")

	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := e.Retrain(cmd.Context(), maxCorrections, trainingProgressBar("Retraining model"))
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s\n", result.Message)

	return nil
}
