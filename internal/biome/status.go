package biome

// Project status values. Older databases may still hold the legacy
// aliases; NormalizeStatus maps them onto the current vocabulary.
const (
	StatusPreparing = "Preparing"
	StatusActive    = "Active"
	StatusReview    = "Review"
	StatusOnHold    = "On Hold"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

var legacyStatusAliases = map[string]string{
	"Intake":      StatusPreparing,
	"In Progress": StatusActive,
}

// Statuses returns the current status vocabulary in display order.
func Statuses() []string {
	return []string{
		StatusPreparing,
		StatusActive,
		StatusReview,
		StatusOnHold,
		StatusCompleted,
		StatusCancelled,
	}
}

// NormalizeStatus maps legacy aliases to current values and passes
// everything else through unchanged. Empty input defaults to Preparing.
func NormalizeStatus(s string) string {
	if s == "" {
		return StatusPreparing
	}
	if canonical, ok := legacyStatusAliases[s]; ok {
		return canonical
	}
	return s
}

// ValidStatus reports whether s is a current status value or a known
// legacy alias.
func ValidStatus(s string) bool {
	if _, ok := legacyStatusAliases[s]; ok {
		return true
	}
	for _, v := range Statuses() {
		if v == s {
			return true
		}
	}
	return false
}
