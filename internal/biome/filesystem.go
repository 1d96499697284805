package biome

import "io/fs"

// FilesystemManager provides an interface for the filesystem operations
// the engine performs. It exists so components can be exercised against a
// temp directory in tests without reaching outside it.
type FilesystemManager interface {
	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// WriteFile writes data to path. Implementations must write to a
	// temp file in the same directory and rename into place so a crash
	// never leaves a truncated file.
	WriteFile(path string, data []byte) error

	// ReadFile reads the whole file at path.
	ReadFile(path string) ([]byte, error)

	// Exists reports whether path exists at all.
	Exists(path string) bool

	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)

	// ReadDir lists the entries of a directory.
	ReadDir(path string) ([]fs.DirEntry, error)

	// Rename moves a file, replacing nothing: callers check the target first.
	Rename(oldPath, newPath string) error

	// CopyFile copies src to dst. The write is atomic (temp + rename).
	CopyFile(src, dst string) error

	// Remove deletes a single file.
	Remove(path string) error
}
