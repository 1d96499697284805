package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Exporter writes project trees to ZIP archives. Each export stages its
// archive in a uniquely named session directory so concurrent exports of
// the same project never collide.
type Exporter struct {
	workDir string
}

// NewExporter creates an Exporter staging archives under workDir.
func NewExporter(workDir string) *Exporter {
	return &Exporter{workDir: workDir}
}

// ExportTree writes the full contents of root as a ZIP archive to w.
// Entry names are relative to root with forward slashes. Symlinks and
// other irregular files are skipped.
func ExportTree(ctx context.Context, root string, w io.Writer) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("computing relative path: %w", err)
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			// Explicit directory entries keep empty folders in the archive.
			if _, err := zw.Create(name + "/"); err != nil {
				return fmt.Errorf("adding directory %s: %w", name, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("building header for %s: %w", name, err)
		}
		header.Name = name
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("adding file %s: %w", name, err)
		}
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", name, err)
		}
		f.Close()
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking project tree: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// ExportTreeToFile archives root into a ZIP file inside a fresh session
// directory under the exporter's work dir and returns the archive path.
// The caller owns cleanup of the session directory.
func (e *Exporter) ExportTreeToFile(ctx context.Context, root string) (string, error) {
	session := filepath.Join(e.workDir, uuid.New().String())
	if err := os.MkdirAll(session, 0755); err != nil {
		return "", fmt.Errorf("creating export session directory: %w", err)
	}

	base := filepath.Base(root)
	if base == "." || base == string(filepath.Separator) {
		base = "project"
	}
	dest := filepath.Join(session, sanitizeArchiveName(base)+".zip")

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	if err := ExportTree(ctx, root, f); err != nil {
		f.Close()
		os.RemoveAll(session)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.RemoveAll(session)
		return "", fmt.Errorf("closing archive file: %w", err)
	}
	return dest, nil
}

func sanitizeArchiveName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
