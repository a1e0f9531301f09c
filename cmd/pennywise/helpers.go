package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/pennywise/internal/classify"
	"github.com/Veraticus/pennywise/internal/config"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/importer"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/nlp"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/Veraticus/pennywise/internal/trainer"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"
)

func dataDir() string {
	if dir := viper.GetString("data.dir"); dir != "" {
		return config.ExpandPath(dir)
	}
	return config.DefaultDataDir()
}

func detailedCategories() bool {
	return viper.GetBool("categories.detailed")
}

// buildEngine wires the full stack from configuration: sqlite corrections
// store, versioned model artifacts, trainer, and recurring detector. The
// returned cleanup closes the database.
func buildEngine(ctx context.Context, detectorOpts service.DetectorOptions) (*engine.Engine, func(), error) {
	dir := dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	artifacts, err := classify.NewArtifactStore(config.ModelDir(dir))
	if err != nil {
		return nil, nil, err
	}

	classifier, err := classify.NewClassifier(artifacts, nlp.NewNormalizer(), slog.Default())
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStorage(config.DatabasePath(dir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}

	detailed := detailedCategories()

	var opts []trainer.TrainerOption
	if detailed {
		opts = append(opts, trainer.WithSeedData(classify.DetailedSeedExamples))
	}
	tr := trainer.New(classifier, store, trainer.NewHistoryStore(config.HistoryPath(dir)), slog.Default(), opts...)

	e := engine.New(classifier, store, tr, detectorOpts, engine.Options{
		Logger:   slog.Default(),
		Detailed: detailed,
	})

	cleanup := func() { _ = store.Close() }
	return e, cleanup, nil
}

// trainingProgressBar returns a progress callback rendering a terminal bar
// while trees are fit.
func trainingProgressBar(description string) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
}

// expandFileArgs expands glob patterns into a flat file list.
func expandFileArgs(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// readerForFile picks an importer based on the file extension.
func readerForFile(path string) (service.TransactionReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return importer.NewOFXReader(slog.Default()), nil
	case ".csv":
		return importer.NewCSVReader(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// readTransactions parses every file and deduplicates by transaction hash.
func readTransactions(ctx context.Context, files []string) ([]model.Transaction, error) {
	var all []model.Transaction
	seen := make(map[string]bool)

	for _, path := range files {
		reader, err := readerForFile(path)
		if err != nil {
			slog.Warn("Skipping file", "file", path, "error", err)
			continue
		}

		txns, err := reader.Read(ctx, path)
		if err != nil {
			slog.Error("Failed to parse file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, tx := range txns {
			if seen[tx.Hash] {
				continue
			}
			seen[tx.Hash] = true
			all = append(all, tx)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(txns),
			"added", added,
			"duplicates", len(txns)-added)
	}

	return all, nil
}
