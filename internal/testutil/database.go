// Package testutil provides shared helpers for tests that need a migrated
// corrections database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/storage"
)

// SetupCorrectionsDB creates a migrated in-memory corrections store and
// registers cleanup.
func SetupCorrectionsDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedCorrection records a correction or fails the test.
func SeedCorrection(t *testing.T, store *storage.SQLiteStorage, c model.Correction) *model.Correction {
	t.Helper()

	saved, err := store.RecordCorrection(context.Background(), c)
	if err != nil {
		t.Fatalf("failed to seed correction %q: %v", c.Description, err)
	}
	return saved
}
