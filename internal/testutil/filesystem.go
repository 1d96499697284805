package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"biome/internal/biome"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	IsDirectory bool
	ModTime     time.Time
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths
// are treated as opaque slash-separated strings rooted anywhere.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string]*MockFile

	// FailWrites makes every WriteFile call error, for exercising
	// abort paths.
	FailWrites bool
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{files: make(map[string]*MockFile)}
}

// AddFile adds a file, creating implied parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addDirsLocked(filepath.Dir(path))
	m.files[filepath.Clean(path)] = &MockFile{Content: content, ModTime: time.Now()}
}

// AddDirectory adds a directory and its parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addDirsLocked(filepath.Clean(path))
}

func (m *MockFilesystemManager) addDirsLocked(path string) {
	for p := filepath.Clean(path); p != "." && p != "/" && p != ""; p = filepath.Dir(p) {
		if _, ok := m.files[p]; !ok {
			m.files[p] = &MockFile{IsDirectory: true, ModTime: time.Now()}
		}
	}
}

func (m *MockFilesystemManager) MkdirAll(path string) error {
	m.AddDirectory(path)
	return nil
}

func (m *MockFilesystemManager) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("write failed: %s", path)
	}
	clean := filepath.Clean(path)
	if f, ok := m.files[clean]; ok && f.IsDirectory {
		return fmt.Errorf("is a directory: %s", path)
	}
	m.addDirsLocked(filepath.Dir(clean))
	m.files[clean] = &MockFile{Content: append([]byte(nil), data...), ModTime: time.Now()}
	return nil
}

func (m *MockFilesystemManager) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok || f.IsDirectory {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	return append([]byte(nil), f.Content...), nil
}

func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clean := filepath.Clean(path)
	f, ok := m.files[clean]
	if !ok {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	return &mockFileInfo{name: filepath.Base(clean), file: f}, nil
}

func (m *MockFilesystemManager) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clean := filepath.Clean(path)
	dir, ok := m.files[clean]
	if !ok || !dir.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", path)
	}

	prefix := clean + string(filepath.Separator)
	var entries []fs.DirEntry
	for p, f := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if strings.ContainsRune(rest, filepath.Separator) {
			continue
		}
		entries = append(entries, &mockDirEntry{name: rest, file: f})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFilesystemManager) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(oldPath)]
	if !ok {
		return fmt.Errorf("file does not exist: %s", oldPath)
	}
	delete(m.files, filepath.Clean(oldPath))
	m.addDirsLocked(filepath.Dir(filepath.Clean(newPath)))
	m.files[filepath.Clean(newPath)] = f
	return nil
}

func (m *MockFilesystemManager) CopyFile(src, dst string) error {
	data, err := m.ReadFile(src)
	if err != nil {
		return err
	}
	return m.WriteFile(dst, data)
}

func (m *MockFilesystemManager) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clean := filepath.Clean(path)
	if _, ok := m.files[clean]; !ok {
		return fmt.Errorf("file does not exist: %s", path)
	}
	delete(m.files, clean)
	return nil
}

type mockFileInfo struct {
	name string
	file *MockFile
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return int64(len(i.file.Content)) }
func (i *mockFileInfo) ModTime() time.Time { return i.file.ModTime }
func (i *mockFileInfo) IsDir() bool        { return i.file.IsDirectory }
func (i *mockFileInfo) Sys() any           { return nil }
func (i *mockFileInfo) Mode() fs.FileMode {
	if i.file.IsDirectory {
		return fs.ModeDir | 0755
	}
	return 0644
}

type mockDirEntry struct {
	name string
	file *MockFile
}

func (e *mockDirEntry) Name() string { return e.name }
func (e *mockDirEntry) IsDir() bool  { return e.file.IsDirectory }
func (e *mockDirEntry) Type() fs.FileMode {
	if e.file.IsDirectory {
		return fs.ModeDir
	}
	return 0
}
func (e *mockDirEntry) Info() (fs.FileInfo, error) {
	return &mockFileInfo{name: e.name, file: e.file}, nil
}

// Compile-time check that MockFilesystemManager implements the
// biome.FilesystemManager interface
var _ biome.FilesystemManager = (*MockFilesystemManager)(nil)
