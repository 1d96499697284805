package biome

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"biome/internal/model"
)

// Listing caps keep the structure block readable for large folders.
const (
	canonicalListCap = 200
	extraListCap     = 100
)

// ReadmeResult reports which README file a document operation wrote.
type ReadmeResult struct {
	File      string // basename, README.md or README.txt
	UpdatedAt time.Time
}

// RegenerateReadme rebuilds the complete project document from the
// metadata, structure, journal, and resources blocks and writes it to the
// project's README. This is the source-of-truth-wins mode: the whole
// document is replaced. Invoking it twice with unchanged state yields
// identical output except for the synchronization timestamp line.
func (s *Service) RegenerateReadme(ctx context.Context, projectID int64) (*ReadmeResult, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.ProjectPath == nil || *project.ProjectPath == "" {
		return nil, ErrNoProjectPath
	}
	root := *project.ProjectPath

	journal, err := s.store.ListJournalEntries(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading journal entries: %w", err)
	}
	resources, err := s.store.ListResources(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	scan, err := s.scanTree(ctx, root, readmeTaxonomy())
	if err != nil {
		return nil, fmt.Errorf("scanning project tree: %w", err)
	}

	now := s.clock.Now()
	content := s.buildReadme(project, scan, journal, resources, now)

	target := s.readmeTarget(root)
	if err := s.fsmgr.WriteFile(target, []byte(content)); err != nil {
		return nil, fmt.Errorf("writing README: %w", err)
	}

	if err := s.store.SetReadmeUpdated(ctx, projectID, now); err != nil {
		return nil, fmt.Errorf("recording README update: %w", err)
	}

	s.logger.Info("README regenerated", "project_id", projectID, "file", filepath.Base(target))
	return &ReadmeResult{File: filepath.Base(target), UpdatedAt: now}, nil
}

// UpdateReadmeResources refreshes only the marker-delimited resources
// region of an existing README, preserving all surrounding text
// byte-for-byte. When the marker pair is missing or malformed the
// section is appended at the end instead.
func (s *Service) UpdateReadmeResources(ctx context.Context, projectID int64) (*ReadmeResult, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.ProjectPath == nil || *project.ProjectPath == "" {
		return nil, ErrNoProjectPath
	}
	root := *project.ProjectPath

	target := s.readmeTarget(root)
	if !s.fsmgr.Exists(target) {
		return nil, fmt.Errorf("README not found at %s", target)
	}

	existing, err := s.fsmgr.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("reading README: %w", err)
	}

	resources, err := s.store.ListResources(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	interior := resourcesInterior(resources)
	doc := string(existing)
	if region, ok := SplitMarkers(doc); ok {
		doc = region.Render(interior)
	} else {
		section := ResourcesMarkerStart + "\n" + interior + "\n" + ResourcesMarkerEnd + "\n"
		doc = strings.TrimRight(doc, "\n") + "\n\n" + section
	}

	if err := s.fsmgr.WriteFile(target, []byte(doc)); err != nil {
		return nil, fmt.Errorf("writing README: %w", err)
	}

	if err := s.store.TouchProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("touching project: %w", err)
	}

	now := s.clock.Now()
	s.logger.Info("README resources updated", "project_id", projectID, "file", filepath.Base(target))
	return &ReadmeResult{File: filepath.Base(target), UpdatedAt: now}, nil
}

// readmeTarget resolves which README file to write. README.md wins when
// present or when neither exists; README.txt only when it alone exists.
// The choice is sticky: once a project has one form, updates keep it.
func (s *Service) readmeTarget(root string) string {
	md := filepath.Join(root, "README.md")
	txt := filepath.Join(root, "README.txt")
	if s.fsmgr.Exists(md) {
		return md
	}
	if s.fsmgr.Exists(txt) {
		return txt
	}
	return md
}

func (s *Service) buildReadme(p *model.Project, scan *ScanResult, journal []*model.JournalEntry, resources []*model.Resource, now time.Time) string {
	var b strings.Builder

	name := p.Name
	if name == "" {
		name = "Untitled Project"
	}
	description := p.Description
	if description == "" {
		description = "No description provided."
	}

	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "## Overview\n%s\n\n", description)

	b.WriteString("## Project Metadata\n")
	fmt.Fprintf(&b, "- Status: %s\n", NormalizeStatus(p.Status))
	fmt.Fprintf(&b, "- Software: %s\n", orDash(strPtr(p.Software)))
	fmt.Fprintf(&b, "- Output/Result Type: %s\n", orDash(strPtr(p.OutputType)))
	fmt.Fprintf(&b, "- Imaging Techniques: %s\n", orDash(parseArrayField(p.ImageTypes)))
	fmt.Fprintf(&b, "- Sample Type: %s\n", orDash(parseArrayField(p.SampleType)))
	fmt.Fprintf(&b, "- Objective Magnification: %s\n", orDash(strPtr(p.ObjectiveMagnification)))
	fmt.Fprintf(&b, "- Analysis Goal: %s\n", orDash(parseArrayField(p.AnalysisGoal)))
	fmt.Fprintf(&b, "- Project Path: %s\n", orDash(strPtr(p.ProjectPath)))
	fmt.Fprintf(&b, "- Time Spent: %s\n", formatMinutes(p.TimeSpentMinutes))
	fmt.Fprintf(&b, "- Last Updated in BIOME: %s\n\n", now.UTC().Format(time.RFC3339))

	b.WriteString("## Project Structure\n")
	b.WriteString(structureBlock(scan))
	b.WriteString("\n")

	b.WriteString("## Journal\n")
	b.WriteString(journalBlock(journal))
	b.WriteString("\n\n")

	b.WriteString("## Resources\n\n")
	b.WriteString(ResourcesMarkerStart + "\n")
	b.WriteString(resourcesInterior(resources))
	b.WriteString("\n" + ResourcesMarkerEnd + "\n")

	return b.String()
}

// structureBlock renders the per-folder listings. Missing top-level
// folders are omitted entirely; missing canonical subfolders are shown as
// "(not created)" so expected-but-absent structure stays visible.
func structureBlock(scan *ScanResult) string {
	var sections []string

	for _, top := range scan.Folders {
		if strings.Contains(top.Path, "/") || !top.Canonical || top.Missing {
			continue
		}
		var lines []string
		folderBytes := top.TotalBytes

		if len(top.Files) > 0 {
			lines = append(lines, "  Files:")
			lines = append(lines, fileLines(top.Files, canonicalListCap, "  - ", "  - ")...)
		}

		for _, sub := range scan.Folders {
			if filepath.Dir(sub.Path) != top.Path {
				continue
			}
			name := filepath.Base(sub.Path)
			if sub.Missing {
				lines = append(lines, fmt.Sprintf("  - %s/ (not created)", name))
				continue
			}
			folderBytes += sub.TotalBytes
			limit := canonicalListCap
			if !sub.Canonical {
				limit = extraListCap
			}
			lines = append(lines, fmt.Sprintf("  - %s/ (%d files, %s)", name, sub.FileCount, formatSize(sub.TotalBytes)))
			lines = append(lines, fileLines(sub.Files, limit, "    • ", "    • ")...)
		}

		title := fmt.Sprintf("- %s/ (%s)", top.Path, formatSize(folderBytes))
		sections = append(sections, strings.Join(append([]string{title}, lines...), "\n"))
	}

	for _, extra := range scan.ExtraTopLevel {
		detail := scan.Folder(extra)
		if detail == nil {
			continue
		}
		lines := []string{fmt.Sprintf("- %s/ (%d files, %s)", extra, detail.FileCount, formatSize(detail.TotalBytes))}
		lines = append(lines, fileLines(detail.Files, extraListCap, "  • ", "  • ")...)
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(sections) == 0 {
		return "No folders found yet.\n"
	}
	return strings.Join(sections, "\n") + "\n"
}

func fileLines(files []FileEntry, limit int, prefix, morePrefix string) []string {
	var lines []string
	for i, f := range files {
		if i >= limit {
			lines = append(lines, fmt.Sprintf("%s… %d more", morePrefix, len(files)-limit))
			break
		}
		lines = append(lines, fmt.Sprintf("%s%s (%s)", prefix, f.Name, formatSize(f.Size)))
	}
	return lines
}

func journalBlock(entries []*model.JournalEntry) string {
	if len(entries) == 0 {
		return "No journal entries yet."
	}
	var lines []string
	for _, e := range entries {
		edited := ""
		if e.EditedAt != nil {
			by := ""
			if e.EditedBy != nil && *e.EditedBy != "" {
				by = " by " + *e.EditedBy
			}
			edited = fmt.Sprintf("\n(edited%s on %s)", by, e.EditedAt.Format("2006-01-02 15:04:05"))
		}
		lines = append(lines, fmt.Sprintf("### %s\n%s%s\n", e.EntryDate.Format("2006-01-02 15:04:05"), e.EntryText, edited))
	}
	return strings.Join(lines, "\n")
}

// resourcesInterior renders the listing between the markers: images
// first, then documents, each as a relative reference/ path with an
// optional caption.
func resourcesInterior(resources []*model.Resource) string {
	var imgs, docs []*model.Resource
	for _, r := range resources {
		if r.Kind == "image" {
			imgs = append(imgs, r)
		} else {
			docs = append(docs, r)
		}
	}

	var lines []string
	appendGroup := func(title string, group []*model.Resource) {
		if len(group) == 0 {
			return
		}
		lines = append(lines, title)
		for _, r := range group {
			line := " - " + path.Join(ReferenceDir, r.Filename)
			if r.Caption != nil && *r.Caption != "" {
				line += " — " + *r.Caption
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}
	appendGroup("Images:", imgs)
	appendGroup("Documents:", docs)

	if len(lines) == 0 {
		return "No resources have been uploaded yet."
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// formatSize renders a byte count as bytes, KB, or MB with one decimal
// place above 1 KB.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// formatMinutes renders a minute count as "Xh" or "Xh Ym", omitting the
// minutes term when zero.
func formatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// parseArrayField decodes a JSON-encoded string array into a
// comma-joined list. Malformed values are surfaced verbatim: these are
// display-path failures, not structural ones.
func parseArrayField(raw *string) string {
	if raw == nil || *raw == "" {
		return ""
	}
	var arr []string
	if err := json.Unmarshal([]byte(*raw), &arr); err == nil {
		return strings.Join(arr, ", ")
	}
	return *raw
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
