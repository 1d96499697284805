package biome_test

import (
	"context"
	"errors"
	"testing"

	"biome/internal/biome"
	"biome/internal/model"
	"biome/internal/testutil"
)

func TestUploadResources(t *testing.T) {
	ctx := context.Background()

	t.Run("stores allowed files and rejects the rest", func(t *testing.T) {
		svc, fsmgr, p := newProjectService(t)

		results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
			{OriginalName: "cells.png", MimeType: "image/png", Data: []byte("png-bytes")},
			{OriginalName: "malware.exe", MimeType: "application/x-msdownload", Data: []byte{0x4d, 0x5a}},
			{OriginalName: "notes.txt", MimeType: "text/plain", Data: []byte("notes")},
		})
		if err != nil {
			t.Fatalf("UploadResources() error = %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		if results[0].Err != nil || results[2].Err != nil {
			t.Errorf("allowed uploads failed: %v, %v", results[0].Err, results[2].Err)
		}
		if results[1].Err == nil {
			t.Error("disallowed MIME type accepted")
		}
		if !fsmgr.Exists("/proj/reference/cells.png") {
			t.Error("cells.png not written to reference/")
		}
		if fsmgr.Exists("/proj/reference/malware.exe") {
			t.Error("rejected file reached disk")
		}
		if results[0].Resource.Kind != "image" || results[2].Resource.Kind != "document" {
			t.Errorf("kinds = %q, %q", results[0].Resource.Kind, results[2].Resource.Kind)
		}
	})

	t.Run("suffixes colliding filenames", func(t *testing.T) {
		svc, fsmgr, p := newProjectService(t)

		up := biome.ResourceUpload{OriginalName: "scan.pdf", MimeType: "application/pdf", Data: []byte("%PDF")}
		for i := 0; i < 3; i++ {
			results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{up})
			if err != nil || results[0].Err != nil {
				t.Fatalf("upload %d failed: %v / %v", i, err, results[0].Err)
			}
		}
		for _, want := range []string{"/proj/reference/scan.pdf", "/proj/reference/scan (1).pdf", "/proj/reference/scan (2).pdf"} {
			if !fsmgr.Exists(want) {
				t.Errorf("missing %s", want)
			}
		}
	})

	t.Run("sanitizes hostile names", func(t *testing.T) {
		svc, _, p := newProjectService(t)

		results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
			{OriginalName: `we:ird*name?.txt`, MimeType: "text/plain", Data: []byte("x")},
		})
		if err != nil || results[0].Err != nil {
			t.Fatalf("upload failed: %v / %v", err, results[0].Err)
		}
		if got, want := results[0].Resource.Filename, "we_ird_name_.txt"; got != want {
			t.Errorf("Filename = %q, want %q", got, want)
		}
		if got := results[0].Resource.OriginalName; got != `we:ird*name?.txt` {
			t.Errorf("OriginalName = %q, want the unsanitized name", got)
		}
	})

	t.Run("project without path is rejected", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		svc := biome.NewService(testutil.NewTestStore(t), fsmgr, nil)
		p, err := svc.CreateProject(ctx, &model.Project{Name: "pathless"})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if _, err := svc.UploadResources(ctx, p.ID, nil); !errors.Is(err, biome.ErrNoProjectPath) {
			t.Fatalf("UploadResources() error = %v, want ErrNoProjectPath", err)
		}
	})
}

func TestValidateResources(t *testing.T) {
	ctx := context.Background()
	svc, fsmgr, p := newProjectService(t)

	uploads := []biome.ResourceUpload{
		{OriginalName: "a.png", MimeType: "image/png", Data: []byte("a")},
		{OriginalName: "b.pdf", MimeType: "application/pdf", Data: []byte("b")},
	}
	if _, err := svc.UploadResources(ctx, p.ID, uploads); err != nil {
		t.Fatalf("UploadResources() error = %v", err)
	}
	if err := fsmgr.Remove("/proj/reference/b.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	result, err := svc.ValidateResources(ctx, p.ID)
	if err != nil {
		t.Fatalf("ValidateResources() error = %v", err)
	}
	if len(result.Valid) != 1 || result.Valid[0].Resource.Filename != "a.png" {
		t.Errorf("Valid = %+v, want just a.png", result.Valid)
	}
	if len(result.Missing) != 1 || result.Missing[0].Resource.Filename != "b.pdf" {
		t.Errorf("Missing = %+v, want just b.pdf", result.Missing)
	}
}

func TestSearchResources(t *testing.T) {
	ctx := context.Background()

	t.Run("finds displaced files by stored then original name", func(t *testing.T) {
		svc, fsmgr, p := newProjectService(t)

		uploads := []biome.ResourceUpload{
			{OriginalName: "roi.png", MimeType: "image/png", Data: []byte("roi")},
			{OriginalName: "roi.png", MimeType: "image/png", Data: []byte("roi2")},
		}
		results, err := svc.UploadResources(ctx, p.ID, uploads)
		if err != nil {
			t.Fatalf("UploadResources() error = %v", err)
		}
		// Second copy is stored as "roi (1).png".
		if got := results[1].Resource.Filename; got != "roi (1).png" {
			t.Fatalf("second Filename = %q, want \"roi (1).png\"", got)
		}

		// Displace both: the first keeps its stored name inside the tree,
		// the second only survives under its original upload name.
		fsmgr.Remove("/proj/reference/roi.png")
		fsmgr.Remove("/proj/reference/roi (1).png")
		fsmgr.AddFile("/proj/results/analysis_results/roi.png", []byte("roi"))

		matches, err := svc.SearchResources(ctx, p.ID, "/proj")
		if err != nil {
			t.Fatalf("SearchResources() error = %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
		}
		byID := map[int64]biome.SearchMatch{}
		for _, m := range matches {
			byID[m.Resource.ID] = m
		}
		first := byID[results[0].Resource.ID]
		if first.Confidence != "high" || first.FoundPath != "/proj/results/analysis_results/roi.png" {
			t.Errorf("stored-name match = %+v, want high confidence at results/analysis_results", first)
		}
		second := byID[results[1].Resource.ID]
		if second.Confidence != "medium" {
			t.Errorf("original-name match = %+v, want medium confidence", second)
		}
	})

	t.Run("search depth is bounded", func(t *testing.T) {
		svc, fsmgr, p := newProjectService(t)

		results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
			{OriginalName: "deep.txt", MimeType: "text/plain", Data: []byte("x")},
		})
		if err != nil || results[0].Err != nil {
			t.Fatalf("upload failed: %v / %v", err, results[0].Err)
		}
		fsmgr.Remove("/proj/reference/deep.txt")
		fsmgr.AddFile("/proj/a/b/c/d/deep.txt", []byte("x"))

		matches, err := svc.SearchResources(ctx, p.ID, "/proj")
		if err != nil {
			t.Fatalf("SearchResources() error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("got matches %+v for a file four levels down, want none", matches)
		}
	})

	t.Run("searches a directory outside the project tree", func(t *testing.T) {
		svc, fsmgr, p := newProjectService(t)

		results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
			{OriginalName: "scan.png", MimeType: "image/png", Data: []byte("scan")},
		})
		if err != nil || results[0].Err != nil {
			t.Fatalf("upload failed: %v / %v", err, results[0].Err)
		}
		fsmgr.Remove("/proj/reference/scan.png")
		fsmgr.AddFile("/mnt/external/scan.png", []byte("scan"))

		matches, err := svc.SearchResources(ctx, p.ID, "/mnt/external")
		if err != nil {
			t.Fatalf("SearchResources() error = %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
		}
		if matches[0].FoundPath != "/mnt/external/scan.png" || matches[0].Confidence != "high" {
			t.Errorf("match = %+v, want high confidence at /mnt/external/scan.png", matches[0])
		}
	})

	t.Run("missing search path is rejected", func(t *testing.T) {
		svc, _, p := newProjectService(t)

		if _, err := svc.SearchResources(ctx, p.ID, "/no/such/dir"); err == nil {
			t.Error("SearchResources() with a missing directory succeeded")
		}
	})
}

func TestRelinkResources(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*biome.Service, *testutil.MockFilesystemManager, *model.Project, *model.Resource) {
		t.Helper()
		svc, fsmgr, p := newProjectService(t)
		results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
			{OriginalName: "fig1.png", MimeType: "image/png", Data: []byte("fig")},
		})
		if err != nil || results[0].Err != nil {
			t.Fatalf("upload failed: %v / %v", err, results[0].Err)
		}
		fsmgr.Remove("/proj/reference/fig1.png")
		fsmgr.AddFile("/proj/scripts/fig1.png", []byte("fig"))
		return svc, fsmgr, p, results[0].Resource
	}

	t.Run("copy leaves the found file in place", func(t *testing.T) {
		svc, fsmgr, p, r := setup(t)

		results, err := svc.RelinkResources(ctx, p.ID, []biome.RelinkRequest{
			{ResourceID: r.ID, FoundPath: "/proj/scripts/fig1.png"},
		})
		if err != nil {
			t.Fatalf("RelinkResources() error = %v", err)
		}
		if results[0].Err != nil {
			t.Fatalf("relink failed: %v", results[0].Err)
		}
		if !fsmgr.Exists("/proj/reference/fig1.png") {
			t.Error("file not restored to reference/")
		}
		if !fsmgr.Exists("/proj/scripts/fig1.png") {
			t.Error("copy removed the source")
		}
	})

	t.Run("move removes the found file", func(t *testing.T) {
		svc, fsmgr, p, r := setup(t)

		results, err := svc.RelinkResources(ctx, p.ID, []biome.RelinkRequest{
			{ResourceID: r.ID, FoundPath: "/proj/scripts/fig1.png", Move: true},
		})
		if err != nil {
			t.Fatalf("RelinkResources() error = %v", err)
		}
		if results[0].Err != nil {
			t.Fatalf("relink failed: %v", results[0].Err)
		}
		if !fsmgr.Exists("/proj/reference/fig1.png") {
			t.Error("file not restored to reference/")
		}
		if fsmgr.Exists("/proj/scripts/fig1.png") {
			t.Error("move left the source behind")
		}
	})

	t.Run("existing target fails that item without aborting the batch", func(t *testing.T) {
		svc, fsmgr, p, r := setup(t)
		fsmgr.AddFile("/proj/reference/fig1.png", []byte("already here"))

		results, err := svc.RelinkResources(ctx, p.ID, []biome.RelinkRequest{
			{ResourceID: r.ID, FoundPath: "/proj/scripts/fig1.png"},
			{ResourceID: 9999, FoundPath: "/proj/scripts/fig1.png"},
		})
		if err != nil {
			t.Fatalf("RelinkResources() error = %v", err)
		}
		if results[0].Err == nil {
			t.Error("relink onto an existing target succeeded")
		}
		if results[1].Err == nil {
			t.Error("relink of an unknown resource succeeded")
		}
		if got, want := string(mustRead(t, fsmgr, "/proj/reference/fig1.png")), "already here"; got != want {
			t.Errorf("target overwritten: %q", got)
		}
	})
}

func TestSetResourceCaption(t *testing.T) {
	ctx := context.Background()
	svc, _, p := newProjectService(t)

	results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
		{OriginalName: "gel.png", MimeType: "image/png", Data: []byte("gel")},
	})
	if err != nil || results[0].Err != nil {
		t.Fatalf("upload failed: %v / %v", err, results[0].Err)
	}
	id := results[0].Resource.ID

	if err := svc.SetResourceCaption(ctx, p.ID, id, "Western blot, lane 3"); err != nil {
		t.Fatalf("SetResourceCaption() error = %v", err)
	}
	list, err := svc.ListResources(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if list[0].Caption == nil || *list[0].Caption != "Western blot, lane 3" {
		t.Errorf("Caption = %v, want set", list[0].Caption)
	}

	if err := svc.SetResourceCaption(ctx, p.ID, id, ""); err != nil {
		t.Fatalf("SetResourceCaption(clear) error = %v", err)
	}
	list, _ = svc.ListResources(ctx, p.ID)
	if list[0].Caption != nil {
		t.Errorf("Caption = %q, want cleared", *list[0].Caption)
	}
}

func TestDeleteResource(t *testing.T) {
	ctx := context.Background()
	svc, fsmgr, p := newProjectService(t)

	results, err := svc.UploadResources(ctx, p.ID, []biome.ResourceUpload{
		{OriginalName: "old.pdf", MimeType: "application/pdf", Data: []byte("%PDF")},
	})
	if err != nil || results[0].Err != nil {
		t.Fatalf("upload failed: %v / %v", err, results[0].Err)
	}
	id := results[0].Resource.ID

	if err := svc.DeleteResource(ctx, p.ID, id); err != nil {
		t.Fatalf("DeleteResource() error = %v", err)
	}
	if fsmgr.Exists("/proj/reference/old.pdf") {
		t.Error("resource file left on disk")
	}
	list, err := svc.ListResources(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d resources after delete, want 0", len(list))
	}

	if err := svc.DeleteResource(ctx, p.ID, id); err == nil {
		t.Error("deleting a deleted resource succeeded")
	}
}

func mustRead(t *testing.T, fsmgr *testutil.MockFilesystemManager, path string) []byte {
	t.Helper()
	data, err := fsmgr.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}
