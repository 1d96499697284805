package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildTree lays out a small project directory under a temp dir:
// two data files, a nested folder, and an empty folder.
func buildTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Mito Count")

	dirs := []string{
		filepath.Join(root, "raw_data"),
		filepath.Join(root, "results", "analysis_results"),
		filepath.Join(root, "scripts"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("MkdirAll(%s) error = %v", d, err)
		}
	}

	files := map[string]string{
		filepath.Join(root, "README.md"):                                   "# Mito Count\n",
		filepath.Join(root, "raw_data", "plate01.tif"):                     "fake tif bytes",
		filepath.Join(root, "results", "analysis_results", "counts.csv"):   "well,count\nA1,42\n",
	}
	for p, content := range files {
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", p, err)
		}
	}
	return root
}

func readArchive(t *testing.T, data []byte) (dirs map[string]bool, files map[string]string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	dirs = make(map[string]bool)
	files = make(map[string]string)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			dirs[f.Name] = true
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening archive entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading archive entry %s: %v", f.Name, err)
		}
		files[f.Name] = string(content)
	}
	return dirs, files
}

func TestExportTree(t *testing.T) {
	ctx := context.Background()
	root := buildTree(t)

	var buf bytes.Buffer
	if err := ExportTree(ctx, root, &buf); err != nil {
		t.Fatalf("ExportTree() error = %v", err)
	}
	dirs, files := readArchive(t, buf.Bytes())

	t.Run("file contents", func(t *testing.T) {
		want := map[string]string{
			"README.md":                         "# Mito Count\n",
			"raw_data/plate01.tif":              "fake tif bytes",
			"results/analysis_results/counts.csv": "well,count\nA1,42\n",
		}
		if len(files) != len(want) {
			t.Fatalf("archive has %d files, want %d: %v", len(files), len(want), files)
		}
		for name, content := range want {
			if got := files[name]; got != content {
				t.Errorf("entry %s = %q, want %q", name, got, content)
			}
		}
	})

	t.Run("empty directory preserved", func(t *testing.T) {
		if !dirs["scripts/"] {
			t.Errorf("archive is missing empty directory entry scripts/: %v", dirs)
		}
	})

	t.Run("entry names are relative", func(t *testing.T) {
		for name := range files {
			if strings.HasPrefix(name, "/") || strings.Contains(name, "Mito Count") {
				t.Errorf("entry %s is not relative to the project root", name)
			}
		}
	})
}

func TestExportTreeCancelled(t *testing.T) {
	root := buildTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := ExportTree(ctx, root, &buf); err == nil {
		t.Fatal("ExportTree() with cancelled context expected error, got nil")
	}
}

func TestExportTreeToFile(t *testing.T) {
	ctx := context.Background()
	root := buildTree(t)
	workDir := t.TempDir()
	exp := NewExporter(workDir)

	dest, err := exp.ExportTreeToFile(ctx, root)
	if err != nil {
		t.Fatalf("ExportTreeToFile() error = %v", err)
	}

	if filepath.Base(dest) != "Mito Count.zip" {
		t.Errorf("archive name = %s, want Mito Count.zip", filepath.Base(dest))
	}
	session := filepath.Dir(dest)
	if filepath.Dir(session) != workDir {
		t.Errorf("session directory %s is not directly under work dir %s", session, workDir)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	_, files := readArchive(t, data)
	if files["README.md"] != "# Mito Count\n" {
		t.Errorf("archive README.md = %q, want %q", files["README.md"], "# Mito Count\n")
	}

	t.Run("sessions do not collide", func(t *testing.T) {
		other, err := exp.ExportTreeToFile(ctx, root)
		if err != nil {
			t.Fatalf("second ExportTreeToFile() error = %v", err)
		}
		if other == dest {
			t.Errorf("second export reused the same path %s", dest)
		}
	})
}

func TestSanitizeArchiveName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`we:ird*name?`, "we_ird_name_"},
		{`a/b\c`, "a_b_c"},
		{`<quotes|"pipes">`, "_quotes__pipes__"},
	}
	for _, tt := range tests {
		if got := sanitizeArchiveName(tt.in); got != tt.want {
			t.Errorf("sanitizeArchiveName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
