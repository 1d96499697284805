package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"biome/internal/biome"
)

// OSFilesystemManager is the real filesystem implementation of
// FilesystemManager. It performs actual filesystem operations using the
// os package.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a new filesystem manager that operates
// on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// MkdirAll creates a directory and any missing parents.
func (m *OSFilesystemManager) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes data atomically: to a temp file in the target
// directory, then renamed into place. A crash mid-write leaves the
// previous content intact.
func (m *OSFilesystemManager) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadFile reads the whole file at path.
func (m *OSFilesystemManager) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether path exists at all.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir lists the entries of a directory.
func (m *OSFilesystemManager) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Rename moves a file. Callers check the target first.
func (m *OSFilesystemManager) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// CopyFile copies src to dst with the same temp-then-rename discipline
// as WriteFile.
func (m *OSFilesystemManager) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copying data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Remove deletes a single file.
func (m *OSFilesystemManager) Remove(path string) error {
	return os.Remove(path)
}

// Compile-time check that OSFilesystemManager implements the
// biome.FilesystemManager interface
var _ biome.FilesystemManager = (*OSFilesystemManager)(nil)
