package biome

import "strings"

// Marker lines delimiting the machine-owned resources region of a project
// document. These exact strings are a compatibility contract with
// existing project folders; never change them.
const (
	ResourcesMarkerStart = "=== RESOURCES (auto-generated) ==="
	ResourcesMarkerEnd   = "=== END RESOURCES ==="
)

// MarkerRegion is a document split around the resources marker pair.
// Prefix ends just before the start marker; Suffix begins right after the
// end marker. Interior is the text strictly between the two markers.
type MarkerRegion struct {
	Prefix   string
	Interior string
	Suffix   string
}

// SplitMarkers locates the resources marker pair in doc. It reports
// ok=false when the pair is missing or malformed (end before start),
// in which case callers fall back to appending at the end.
func SplitMarkers(doc string) (MarkerRegion, bool) {
	start := strings.Index(doc, ResourcesMarkerStart)
	end := strings.Index(doc, ResourcesMarkerEnd)
	if start == -1 || end == -1 || end <= start {
		return MarkerRegion{}, false
	}
	return MarkerRegion{
		Prefix:   doc[:start],
		Interior: doc[start+len(ResourcesMarkerStart) : end],
		Suffix:   doc[end+len(ResourcesMarkerEnd):],
	}, true
}

// Render reassembles the document with a new interior, preserving the
// prefix and suffix byte-for-byte. The interior is framed with single
// newlines inside the markers.
func (r MarkerRegion) Render(interior string) string {
	return r.Prefix + ResourcesMarkerStart + "\n" + strings.Trim(interior, "\n") + "\n" + ResourcesMarkerEnd + r.Suffix
}
