package main

import (
	"log/slog"

	"github.com/Veraticus/pennywise/internal/server"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the categorization engine over HTTP. Endpoints live under /api/v1:
categorize, corrections, retrain, recurring/detect, model, and stats.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, cleanup, err := buildEngine(cmd.Context(), service.DetectorOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(e, viper.GetString("server.addr"), detailedCategories(), slog.Default())
	return srv.ListenAndServe(cmd.Context())
}
