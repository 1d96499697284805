package database

import (
	"path/filepath"
	"testing"

	"biome/internal/config"
)

func TestDBPath(t *testing.T) {
	cfg := config.DatabaseConfig{Type: "sqlite", DataDir: "/data/biome/data"}
	want := filepath.Join("/data/biome/data", "biome.db")
	if got := DBPath(cfg); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "memory"}
		got, err := NewStoreFromConfig(cfg)

		if err != nil {
			t.Errorf("NewStoreFromConfig() unexpected error: %v", err)
			return
		}

		if got == nil {
			t.Error("NewStoreFromConfig() returned nil")
		}

		if got != nil {
			got.Close()
		}
	})

	t.Run("sqlite database", func(t *testing.T) {
		cfg := config.DatabaseConfig{
			Type:    "sqlite",
			DataDir: t.TempDir(),
		}
		got, err := NewStoreFromConfig(cfg)

		if err != nil {
			t.Errorf("NewStoreFromConfig() unexpected error: %v", err)
			return
		}

		if got == nil {
			t.Error("NewStoreFromConfig() returned nil")
		}

		if got != nil {
			got.Close()
		}
	})

	t.Run("sqlite database without data_dir", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "sqlite"}
		got, err := NewStoreFromConfig(cfg)

		if err == nil {
			t.Error("NewStoreFromConfig() expected error for missing data_dir, got nil")
		}

		if got != nil {
			t.Error("NewStoreFromConfig() should return nil on error")
			got.Close()
		}
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "unknown"}
		got, err := NewStoreFromConfig(cfg)

		if err == nil {
			t.Error("NewStoreFromConfig() expected error for unknown type, got nil")
		}

		if got != nil {
			t.Error("NewStoreFromConfig() should return nil on error")
			got.Close()
		}
	})
}
