package database

import (
	"fmt"
	"path/filepath"

	"biome/internal/config"
)

// DBPath returns the on-disk database location for a sqlite config.
func DBPath(cfg config.DatabaseConfig) string {
	return filepath.Join(cfg.DataDir, "biome.db")
}

// NewStoreFromConfig creates a SQLiteStore based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteStore(DBPath(cfg))
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
