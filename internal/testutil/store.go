package testutil

import (
	"testing"

	"biome/internal/database"
)

// NewTestStore creates a new in-memory SQLite store with the schema
// applied. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := store.MigrateUp(); err != nil {
		store.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
