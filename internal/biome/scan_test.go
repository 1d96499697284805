package biome_test

import (
	"context"
	"errors"
	"testing"

	"biome/internal/biome"
)

func TestScanTree(t *testing.T) {
	ctx := context.Background()

	t.Run("empty root path is rejected", func(t *testing.T) {
		svc, _ := newFSService(t)
		if _, err := svc.ScanTree(ctx, ""); !errors.Is(err, biome.ErrNoProjectPath) {
			t.Fatalf("ScanTree(\"\") error = %v, want ErrNoProjectPath", err)
		}
	})

	t.Run("fresh structure scans valid and empty", func(t *testing.T) {
		svc, _ := newFSService(t)
		if err := svc.CreateStructure("/proj", biome.StructureOptions{ProjectName: "p"}); err != nil {
			t.Fatalf("CreateStructure() error = %v", err)
		}

		scan, err := svc.ScanTree(ctx, "/proj")
		if err != nil {
			t.Fatalf("ScanTree() error = %v", err)
		}
		if !scan.StructureValid {
			t.Errorf("StructureValid = false, want true (missing: %v)", scan.MissingFolders)
		}
		if scan.TotalFiles != 0 {
			t.Errorf("TotalFiles = %d, want 0 (description files must not count)", scan.TotalFiles)
		}
		if !scan.EffectivelyEmpty {
			t.Error("EffectivelyEmpty = false, want true")
		}
		if len(scan.MissingFolders) != 0 {
			t.Errorf("MissingFolders = %v, want none", scan.MissingFolders)
		}
	})

	t.Run("missing top-level folder reports folder and subfolders", func(t *testing.T) {
		svc, fsmgr := newFSService(t)
		if err := svc.CreateStructure("/proj", biome.StructureOptions{}); err != nil {
			t.Fatalf("CreateStructure() error = %v", err)
		}
		// Drop results/ entirely.
		for _, p := range []string{
			"/proj/results/analysis_results", "/proj/results/tutorials",
			"/proj/results/protocols", "/proj/results/examples",
		} {
			fsmgr.Remove(p + "/README.txt")
			fsmgr.Remove(p)
		}
		fsmgr.Remove("/proj/results/README.txt")
		fsmgr.Remove("/proj/results")

		scan, err := svc.ScanTree(ctx, "/proj")
		if err != nil {
			t.Fatalf("ScanTree() error = %v", err)
		}
		if scan.StructureValid {
			t.Error("StructureValid = true, want false")
		}
		want := []string{"results", "results/analysis_results", "results/tutorials", "results/protocols", "results/examples"}
		if len(scan.MissingFolders) != len(want) {
			t.Fatalf("MissingFolders = %v, want %v", scan.MissingFolders, want)
		}
		for i, m := range scan.MissingFolders {
			if m != want[i] {
				t.Errorf("MissingFolders[%d] = %q, want %q", i, m, want[i])
			}
		}
	})

	t.Run("counts files and sizes per folder", func(t *testing.T) {
		svc, fsmgr := newFSService(t)
		if err := svc.CreateStructure("/proj", biome.StructureOptions{}); err != nil {
			t.Fatalf("CreateStructure() error = %v", err)
		}
		fsmgr.AddFile("/proj/scripts/count.py", make([]byte, 100))
		fsmgr.AddFile("/proj/scripts/segment.py", make([]byte, 200))
		fsmgr.AddFile("/proj/sample_data/original/img_001.tif", make([]byte, 1000))

		scan, err := svc.ScanTree(ctx, "/proj")
		if err != nil {
			t.Fatalf("ScanTree() error = %v", err)
		}

		scripts := scan.Folder("scripts")
		if scripts == nil {
			t.Fatal("Folder(scripts) = nil")
		}
		if scripts.FileCount != 2 || scripts.TotalBytes != 300 {
			t.Errorf("scripts count/bytes = %d/%d, want 2/300", scripts.FileCount, scripts.TotalBytes)
		}
		if scripts.Files[0].Name != "count.py" || scripts.Files[1].Name != "segment.py" {
			t.Errorf("scripts files not sorted: %v", scripts.Files)
		}

		original := scan.Folder("sample_data/original")
		if original == nil || original.FileCount != 1 || original.TotalBytes != 1000 {
			t.Errorf("sample_data/original = %+v, want 1 file, 1000 bytes", original)
		}

		if scan.TotalFiles != 3 || scan.TotalBytes != 1300 {
			t.Errorf("totals = %d files %d bytes, want 3/1300", scan.TotalFiles, scan.TotalBytes)
		}
	})

	t.Run("reports extra folders without invalidating structure", func(t *testing.T) {
		svc, fsmgr := newFSService(t)
		if err := svc.CreateStructure("/proj", biome.StructureOptions{}); err != nil {
			t.Fatalf("CreateStructure() error = %v", err)
		}
		fsmgr.AddDirectory("/proj/archive")
		fsmgr.AddFile("/proj/archive/old.txt", []byte("x"))
		fsmgr.AddDirectory("/proj/scripts/helpers")

		scan, err := svc.ScanTree(ctx, "/proj")
		if err != nil {
			t.Fatalf("ScanTree() error = %v", err)
		}
		if !scan.StructureValid {
			t.Error("StructureValid = false, want true")
		}
		if len(scan.ExtraTopLevel) != 1 || scan.ExtraTopLevel[0] != "archive" {
			t.Errorf("ExtraTopLevel = %v, want [archive]", scan.ExtraTopLevel)
		}
		helpers := scan.Folder("scripts/helpers")
		if helpers == nil || helpers.Canonical {
			t.Errorf("scripts/helpers detail = %+v, want non-canonical entry", helpers)
		}
	})

	t.Run("canceled context aborts the walk", func(t *testing.T) {
		svc, _ := newFSService(t)
		if err := svc.CreateStructure("/proj", biome.StructureOptions{}); err != nil {
			t.Fatalf("CreateStructure() error = %v", err)
		}
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := svc.ScanTree(canceled, "/proj"); !errors.Is(err, context.Canceled) {
			t.Fatalf("ScanTree() error = %v, want context.Canceled", err)
		}
	})
}

func TestDefaultEmptinessPolicy(t *testing.T) {
	policy := biome.DefaultEmptinessPolicy(5, 3)

	tests := []struct {
		name    string
		files   int
		missing int
		want    bool
	}{
		{"no files at all", 0, 0, true},
		{"few files and many missing folders", 4, 4, true},
		{"few files but structure intact", 4, 0, false},
		{"many files", 10, 10, false},
		{"boundary file count is not empty", 5, 10, false},
		{"boundary missing count is not empty", 4, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy(tt.files, tt.missing); got != tt.want {
				t.Errorf("policy(%d, %d) = %v, want %v", tt.files, tt.missing, got, tt.want)
			}
		})
	}
}
