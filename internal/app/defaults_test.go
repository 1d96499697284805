package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("BIOME_CONFIG_PATH", "/custom/biome.toml")
		t.Setenv("BIOME_HOME", "/custom/biome")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/biome.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/biome.toml")
		}
		if defaults["base_dir"] != "/custom/biome" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/biome")
		}
		if defaults["log_dir"] != "/custom/biome/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/biome/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("BIOME_CONFIG_PATH", "")
		t.Setenv("BIOME_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "biome.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "biome")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}
