package biome_test

import (
	"strings"
	"testing"

	"biome/internal/biome"
)

func TestSplitMarkers(t *testing.T) {
	doc := "# My Project\n\nUser notes here.\n\n" +
		biome.ResourcesMarkerStart + "\nold listing\n" + biome.ResourcesMarkerEnd +
		"\n\nTrailing notes.\n"

	t.Run("splits around the marker pair", func(t *testing.T) {
		region, ok := biome.SplitMarkers(doc)
		if !ok {
			t.Fatal("SplitMarkers() ok = false, want true")
		}
		if !strings.HasPrefix(region.Prefix, "# My Project") {
			t.Errorf("Prefix = %q", region.Prefix)
		}
		if strings.TrimSpace(region.Interior) != "old listing" {
			t.Errorf("Interior = %q, want old listing", region.Interior)
		}
		if !strings.Contains(region.Suffix, "Trailing notes.") {
			t.Errorf("Suffix = %q", region.Suffix)
		}
	})

	t.Run("render replaces only the interior", func(t *testing.T) {
		region, ok := biome.SplitMarkers(doc)
		if !ok {
			t.Fatal("SplitMarkers() ok = false")
		}
		out := region.Render("new listing")

		if !strings.Contains(out, "new listing") {
			t.Error("rendered document missing new interior")
		}
		if strings.Contains(out, "old listing") {
			t.Error("rendered document still contains old interior")
		}
		if !strings.HasPrefix(out, "# My Project\n\nUser notes here.\n\n") {
			t.Errorf("prefix altered:\n%s", out)
		}
		if !strings.HasSuffix(out, "\n\nTrailing notes.\n") {
			t.Errorf("suffix altered:\n%s", out)
		}
	})

	t.Run("render is idempotent", func(t *testing.T) {
		region, _ := biome.SplitMarkers(doc)
		once := region.Render("listing")
		region2, ok := biome.SplitMarkers(once)
		if !ok {
			t.Fatal("SplitMarkers() on rendered doc failed")
		}
		twice := region2.Render("listing")
		if once != twice {
			t.Errorf("second render differs:\n%q\nvs\n%q", once, twice)
		}
	})

	t.Run("missing markers", func(t *testing.T) {
		if _, ok := biome.SplitMarkers("no markers here"); ok {
			t.Error("SplitMarkers() ok = true, want false")
		}
	})

	t.Run("end marker before start marker", func(t *testing.T) {
		malformed := biome.ResourcesMarkerEnd + "\nx\n" + biome.ResourcesMarkerStart
		if _, ok := biome.SplitMarkers(malformed); ok {
			t.Error("SplitMarkers() ok = true for reversed markers, want false")
		}
	})

	t.Run("start marker without end marker", func(t *testing.T) {
		if _, ok := biome.SplitMarkers(biome.ResourcesMarkerStart + "\ndangling"); ok {
			t.Error("SplitMarkers() ok = true without end marker, want false")
		}
	})
}
