package biome

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"biome/internal/model"
)

// FieldChange records one side-by-side value pair inside an activity's
// changed-fields map. From is nil for creation activities.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// allowedProjectFields are the only columns a project update may touch.
// Requests carrying other keys have them ignored.
var allowedProjectFields = []string{
	"name",
	"description",
	"status",
	"software",
	"time_spent_minutes",
	"project_path",
	"folder_created",
	"readme_last_updated",
	"start_date",
	"user_id",
	"image_types",
	"sample_type",
	"objective_magnification",
	"analysis_goal",
	"output_type",
}

// DiffFields compares an update request against the current project and
// returns the minimal change set plus the column updates to apply. Keys
// outside the allowed field list are dropped. A field whose requested
// value equals the stored one contributes nothing, so an unchanged
// request produces an empty diff.
func DiffFields(current *model.Project, fields map[string]any) (map[string]FieldChange, map[string]any, error) {
	changes := make(map[string]FieldChange)
	updates := make(map[string]any)

	for _, name := range allowedProjectFields {
		newVal, ok := fields[name]
		if !ok {
			continue
		}
		oldVal := projectFieldValue(current, name)
		if fieldEqual(name, oldVal, newVal) {
			continue
		}
		changes[name] = FieldChange{From: oldVal, To: newVal}
		updates[name] = newVal
	}
	return changes, updates, nil
}

// projectFieldValue returns the current value for a named field, with
// nil pointers surfaced as untyped nil so the JSON encoding carries null.
func projectFieldValue(p *model.Project, name string) any {
	switch name {
	case "name":
		return p.Name
	case "description":
		return p.Description
	case "status":
		return p.Status
	case "software":
		return derefAny(p.Software)
	case "time_spent_minutes":
		return p.TimeSpentMinutes
	case "project_path":
		return derefAny(p.ProjectPath)
	case "folder_created":
		return p.FolderCreated
	case "readme_last_updated":
		if p.ReadmeLastUpdated == nil {
			return nil
		}
		return p.ReadmeLastUpdated.Format("2006-01-02 15:04:05")
	case "start_date":
		return p.StartDate
	case "user_id":
		if p.UserID == nil {
			return nil
		}
		return *p.UserID
	case "image_types":
		return derefAny(p.ImageTypes)
	case "sample_type":
		return derefAny(p.SampleType)
	case "objective_magnification":
		return derefAny(p.ObjectiveMagnification)
	case "analysis_goal":
		return derefAny(p.AnalysisGoal)
	case "output_type":
		return derefAny(p.OutputType)
	}
	return nil
}

// fieldEqual compares stored and requested values through their string
// forms, treating nil and empty string as distinct except for
// project_path, where absent and empty both mean "no path".
func fieldEqual(name string, oldVal, newVal any) bool {
	if name == "project_path" {
		return pathForm(oldVal) == pathForm(newVal)
	}
	if oldVal == nil && newVal == nil {
		return true
	}
	if (oldVal == nil) != (newVal == nil) {
		return false
	}
	return stringify(oldVal) == stringify(newVal)
}

func pathForm(v any) string {
	if v == nil {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func derefAny(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// creationChanges builds the changed-fields map for a create activity:
// every non-empty initial value with a nil from side.
func creationChanges(p *model.Project) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for _, name := range allowedProjectFields {
		v := projectFieldValue(p, name)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		changes[name] = FieldChange{From: nil, To: v}
	}
	return changes
}

func changedFieldNames(changes map[string]FieldChange) string {
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ListActivities returns one project's audit trail, newest first.
func (s *Service) ListActivities(ctx context.Context, projectID int64) ([]*model.Activity, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListActivities(ctx, projectID)
}

// ExportActivitiesCSV writes the full activity log as CSV. Every field
// is double-quoted with embedded quotes doubled, so spreadsheet imports
// survive commas and newlines in details.
func (s *Service) ExportActivitiesCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.store.ListActivityExportRows(ctx)
	if err != nil {
		return fmt.Errorf("loading activity export rows: %w", err)
	}

	header := []string{"Date", "Project", "User", "Group", "Type", "Details", "Changed Fields"}
	if _, err := io.WriteString(w, csvLine(header)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ActivityDate.Format("2006-01-02 15:04:05"),
			row.ProjectName,
			strPtr(row.UserName),
			strPtr(row.GroupName),
			row.ActivityType,
			row.Details,
			renderChangedFields(row.ChangedFields),
		}
		if _, err := io.WriteString(w, csvLine(record)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	return nil
}

// csvLine quotes every field unconditionally. encoding/csv only quotes
// when required, which breaks consumers expecting the fixed layout.
func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}

// renderChangedFields turns the stored JSON change map into a readable
// "Field: from → to" summary. Unparsable payloads are surfaced verbatim
// rather than hidden.
func renderChangedFields(raw *string) string {
	if raw == nil || *raw == "" {
		return ""
	}
	var changes map[string]FieldChange
	if err := json.Unmarshal([]byte(*raw), &changes); err != nil {
		return *raw
	}

	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		c := changes[name]
		if name == "time_spent_minutes" {
			parts = append(parts, fmt.Sprintf("Time: %s → %s", minutesForm(c.From), minutesForm(c.To)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s → %s", humanFieldName(name), valueForm(c.From), valueForm(c.To)))
	}
	return strings.Join(parts, "; ")
}

func minutesForm(v any) string {
	switch t := v.(type) {
	case nil:
		return "0h"
	case float64:
		return csvMinutes(int(t))
	case int:
		return csvMinutes(t)
	default:
		return stringify(v)
	}
}

// csvMinutes always spells out the minutes term for nonzero totals, so
// whole hours export as "2h 0m" rather than "2h".
func csvMinutes(minutes int) string {
	if minutes == 0 {
		return "0h"
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func valueForm(v any) string {
	if v == nil {
		return "(none)"
	}
	s := stringify(v)
	if s == "" {
		return "(none)"
	}
	return s
}

// humanFieldName turns a snake_case column name into a title-cased label.
func humanFieldName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
