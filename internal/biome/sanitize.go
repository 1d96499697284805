package biome

import (
	"strings"
	"time"
)

// maxTokenLen bounds each sanitized name part so composite folder names
// stay under OS path-length limits.
const maxTokenLen = 20

// Placeholders substituted when a name sanitizes to nothing, so the
// resulting folder name is always well-formed.
const (
	PlaceholderGroup    = "Unknown-Group"
	PlaceholderUser     = "Unknown-User"
	PlaceholderSoftware = "Unknown-Software"
	PlaceholderProject  = "Untitled-Project"
)

// Token normalizes a user-supplied name into a filesystem-safe token:
// whitespace runs become single hyphens, anything outside [A-Za-z0-9_-]
// is stripped, hyphen runs collapse, leading/trailing hyphens and
// underscores are trimmed, and the result is truncated to 20 characters.
// Never fails; may return "" for input with no usable characters.
func Token(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			inSpace = true
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			if inSpace {
				b.WriteByte('-')
				inSpace = false
			}
			b.WriteRune(r)
		default:
			// stripped
		}
	}

	out := collapseRuns(b.String(), '-')
	out = strings.Trim(out, "-_")
	if len(out) > maxTokenLen {
		out = out[:maxTokenLen]
	}
	return out
}

// FolderName composes the canonical DATE_GROUP_USER_SOFTWARE folder name
// for a project created on the given date. Empty parts fall back to the
// fixed placeholders.
func FolderName(date time.Time, group, user, software string) string {
	parts := []string{
		date.Format("2006-01-02"),
		tokenOr(group, PlaceholderGroup),
		tokenOr(user, PlaceholderUser),
		tokenOr(software, PlaceholderSoftware),
	}
	return collapseRuns(strings.Join(parts, "_"), '_')
}

// WebFolderName composes the simpler DATE_slug(projectName) folder name
// used by the downloadable-structure flow, where every rune outside
// [A-Za-z0-9] becomes an underscore.
func WebFolderName(date time.Time, projectName string) string {
	slug := webSlug(projectName)
	if strings.Trim(slug, "_") == "" {
		slug = PlaceholderProject
	}
	return date.Format("2006-01-02") + "_" + slug
}

func tokenOr(s, placeholder string) string {
	if t := Token(s); t != "" {
		return t
	}
	return placeholder
}

func webSlug(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// collapseRuns replaces consecutive occurrences of c with a single one.
func collapseRuns(s string, c byte) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev byte
	for i := 0; i < len(s); i++ {
		if s[i] == c && prev == c {
			continue
		}
		b.WriteByte(s[i])
		prev = s[i]
	}
	return b.String()
}
