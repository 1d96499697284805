package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		InstallID: "test-install-abc",
		BaseDir:   "/home/user/.local/share/biome",
		LogDir:    "/home/user/.local/share/biome/log",
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/biome/data"},
		Scan:      ScanConfig{EmptyFileThreshold: 8, EmptyMissingThreshold: 2},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/biome/keys/biome.pub",
			PrivateKeyPath: "/home/user/.local/share/biome/keys/biome.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.InstallID != original.InstallID {
		t.Errorf("InstallID = %q, want %q", got.InstallID, original.InstallID)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if got.Scan.EmptyFileThreshold != 8 {
		t.Errorf("Scan.EmptyFileThreshold = %d, want %d", got.Scan.EmptyFileThreshold, 8)
	}
	if got.Scan.EmptyMissingThreshold != 2 {
		t.Errorf("Scan.EmptyMissingThreshold = %d, want %d", got.Scan.EmptyMissingThreshold, 2)
	}
	if got.Encryption.PublicKeyPath != original.Encryption.PublicKeyPath {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", got.Encryption.PublicKeyPath, original.Encryption.PublicKeyPath)
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("install-1", "/data/biome")

	if cfg.InstallID != "install-1" {
		t.Errorf("InstallID = %q, want %q", cfg.InstallID, "install-1")
	}
	if cfg.BaseDir != "/data/biome" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/biome")
	}
	if cfg.LogDir != "/data/biome/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/biome/log")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Database.DataDir != "/data/biome/data" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/biome/data")
	}
	if cfg.Scan.EmptyFileThreshold != 5 {
		t.Errorf("Scan.EmptyFileThreshold = %d, want %d", cfg.Scan.EmptyFileThreshold, 5)
	}
	if cfg.Scan.EmptyMissingThreshold != 3 {
		t.Errorf("Scan.EmptyMissingThreshold = %d, want %d", cfg.Scan.EmptyMissingThreshold, 3)
	}
	if cfg.Encryption.PublicKeyPath != "/data/biome/keys/biome.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/biome/keys/biome.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/biome/keys/biome.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/biome/keys/biome.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "biome.toml")
		cfg := NewConfig("i1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "biome.toml")
		cfg := NewConfig("i1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "biome.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.InstallID != "read-test" {
			t.Errorf("InstallID = %q, want %q", got.InstallID, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/biome.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
