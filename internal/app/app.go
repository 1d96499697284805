package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biome/internal/archive"
	"biome/internal/biome"
	"biome/internal/config"
	"biome/internal/database"
	"biome/internal/encryption"
	"biome/internal/fs"
)

// BiomeApp is the application layer between the CLI and the Service.
// It constructs all dependencies from config, exposes the operations
// that need more than the service alone (archive export, database
// backup and restore), and manages the DB lifecycle on Close.
type BiomeApp struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	fsmgr     *fs.OSFilesystemManager
	encryptor biome.Encryptor
	exporter  *archive.Exporter
	logFile   *os.File

	// Service exposes the synchronization engine operations directly.
	Service *biome.Service
}

// NewBiomeApp creates a fully wired BiomeApp from the given config.
// operation identifies the CLI command being run (e.g. "ProjectUpdate").
// Pending schema migrations are applied on open. The caller must call
// Close when done.
func NewBiomeApp(cfg *config.Config, operation string) (*BiomeApp, error) {
	fsmgr := fs.NewOSFilesystemManager()

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.MigrateUp(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	opts := []biome.Option{}
	if cfg.Scan.EmptyFileThreshold > 0 || cfg.Scan.EmptyMissingThreshold > 0 {
		opts = append(opts, biome.WithEmptinessPolicy(
			biome.DefaultEmptinessPolicy(cfg.Scan.EmptyFileThreshold, cfg.Scan.EmptyMissingThreshold)))
	}
	svc := biome.NewService(store, fsmgr, &slogAdapter{l: logger}, opts...)

	return &BiomeApp{
		cfg:       cfg,
		store:     store,
		fsmgr:     fsmgr,
		encryptor: enc,
		exporter:  archive.NewExporter(filepath.Join(cfg.BaseDir, "exports")),
		logFile:   logFile,
		Service:   svc,
	}, nil
}

// ExportProjectStructure archives the project's tree into a ZIP under
// the exports work dir and returns the archive path.
func (a *BiomeApp) ExportProjectStructure(ctx context.Context, projectID int64) (string, error) {
	root, err := a.Service.ProjectRoot(ctx, projectID)
	if err != nil {
		return "", err
	}
	return a.exporter.ExportTreeToFile(ctx, root)
}

// SetupKeys generates the encryption key pair, protecting the private
// key with the passphrase.
func (a *BiomeApp) SetupKeys(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already configured")
	}
	return a.encryptor.Setup(passphrase)
}

// BackupDatabase snapshots the database to destPath using VACUUM INTO.
// With encrypt set, the snapshot is age-encrypted and ".age" is appended
// to the destination name.
func (a *BiomeApp) BackupDatabase(destPath string, encrypt bool) (string, error) {
	if !encrypt {
		if err := a.store.BackupTo(destPath); err != nil {
			return "", err
		}
		return destPath, nil
	}

	if !a.encryptor.IsConfigured() {
		return "", fmt.Errorf("encryption keys not configured; run keys init first")
	}

	tmp, err := os.CreateTemp("", "biome-db-backup-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for db backup: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	if err := a.store.BackupTo(tmpPath); err != nil {
		return "", err
	}

	if !strings.HasSuffix(destPath, ".age") {
		destPath += ".age"
	}
	in, err := os.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("opening db snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("creating encrypted backup: %w", err)
	}
	if err := a.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("encrypting db snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing encrypted backup: %w", err)
	}
	return destPath, nil
}

// RestoreDatabase replaces the configured database file with a backup.
// Encrypted backups (".age") are decrypted with the passphrase. The
// store is closed first; the process should exit after a restore.
func (a *BiomeApp) RestoreDatabase(srcPath, passphrase string) error {
	if a.cfg.Database.Type != "sqlite" {
		return fmt.Errorf("restore requires a sqlite database config")
	}
	dbPath := database.DBPath(a.cfg.Database)

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	if !strings.HasSuffix(srcPath, ".age") {
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fmt.Errorf("reading backup: %w", err)
		}
		if err := a.fsmgr.WriteFile(dbPath, data); err != nil {
			return fmt.Errorf("writing database: %w", err)
		}
		return nil
	}

	dctx, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening encrypted backup: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dbPath), ".biome-restore-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := dctx.Decrypt(in, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("decrypting backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing database: %w", err)
	}
	return nil
}

// Close closes the database and the log file.
func (a *BiomeApp) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
