package biome

import (
	"fmt"
	"path/filepath"
	"time"
)

// TaxonomyNode is one canonical top-level folder and its ordered
// canonical subfolders. Canonical folders are exactly two levels deep.
type TaxonomyNode struct {
	Folder     string
	Subfolders []string
}

// ReferenceDir is the directory holding uploaded resource files,
// <project_path>/reference/<filename>. Deliberately singular: the plural
// references/ is the canonical documentation folder and the two coexist
// on disk.
const ReferenceDir = "reference"

// Taxonomy returns the canonical folder set every project is expected to
// contain. Both the initializer and the scanner work from this table.
func Taxonomy() []TaxonomyNode {
	return []TaxonomyNode{
		{Folder: "request", Subfolders: []string{"documents", "images", "notes"}},
		{Folder: "sample_data", Subfolders: []string{"original", "test_subset"}},
		{Folder: "processed_data", Subfolders: []string{"converted", "preprocessed", "intermediate"}},
		{Folder: "references", Subfolders: []string{"articles", "protocols", "manuals"}},
		{Folder: "scripts", Subfolders: nil},
		{Folder: "results", Subfolders: []string{"analysis_results", "tutorials", "protocols", "examples"}},
	}
}

// readmeTaxonomy is the structure the README walks: the canonical set
// plus the singular reference/ folder where uploads land.
func readmeTaxonomy() []TaxonomyNode {
	tax := Taxonomy()
	out := make([]TaxonomyNode, 0, len(tax)+1)
	for _, node := range tax {
		out = append(out, node)
		if node.Folder == "references" {
			out = append(out, TaxonomyNode{Folder: ReferenceDir})
		}
	}
	return out
}

var folderDescriptions = map[string]string{
	"request":        "Contains the initial user request and supporting documentation",
	"sample_data":    "Contains the raw biological images provided for analysis",
	"processed_data": "Contains intermediate processing results",
	"references":     "Contains scientific and technical documentation",
	"scripts":        "Contains all analysis code and automation scripts. Place your analysis pipelines, custom functions, and batch processing code here.",
	"results":        "Contains final outputs and deliverables",
}

var subfolderDescriptions = map[string]string{
	"request/documents":           "Project specifications, requirements, and communication files",
	"request/images":              "Reference images from the initial request",
	"request/notes":               "Project planning and meeting notes",
	"sample_data/original":        "Original unmodified images from the biological sample",
	"sample_data/test_subset":     "Small subset of images for testing analysis pipelines",
	"processed_data/converted":    "Format-converted images (e.g., TIFF to other formats)",
	"processed_data/preprocessed": "Images after initial processing (denoising, calibration)",
	"processed_data/intermediate": "Temporary analysis files and intermediate results",
	"references/articles":         "Relevant scientific papers and literature",
	"references/protocols":        "Analysis protocols and methodology documentation",
	"references/manuals":          "Software manuals and technical guides",
	"results/analysis_results":    "Final quantitative results, measurements, and statistics",
	"results/tutorials":           "Step-by-step guides for reproducing the analysis",
	"results/protocols":           "Finalized analysis protocols for future use",
	"results/examples":            "Example outputs and sample results",
}

// FolderDescription returns the human-readable description written into a
// canonical folder or subfolder ("folder" or "folder/sub").
func FolderDescription(rel string) string {
	if d, ok := folderDescriptions[rel]; ok {
		return d
	}
	if d, ok := subfolderDescriptions[rel]; ok {
		return d
	}
	dir := filepath.Base(rel)
	if rel == dir {
		return fmt.Sprintf("Directory for %s", dir)
	}
	return fmt.Sprintf("Files for %s", dir)
}

// StructureOptions hold the seed content for a new project tree.
type StructureOptions struct {
	ProjectName string
	Description string
}

// CreateStructure creates the canonical folder tree under root, writing a
// description file into every folder and subfolder, plus a top-level
// README.txt and a journal.md seed. Parent directories are created as
// needed. Re-creating an existing directory is a no-op, but description
// files are overwritten on re-run. Any I/O error aborts the whole
// operation; the caller must not record folder_created on failure.
func (s *Service) CreateStructure(root string, opts StructureOptions) error {
	for _, node := range Taxonomy() {
		folderPath := filepath.Join(root, node.Folder)
		if err := s.fsmgr.MkdirAll(folderPath); err != nil {
			return fmt.Errorf("creating folder %s: %w", node.Folder, err)
		}
		desc := FolderDescription(node.Folder)
		if err := s.fsmgr.WriteFile(filepath.Join(folderPath, "README.txt"), []byte(desc)); err != nil {
			return fmt.Errorf("writing description for %s: %w", node.Folder, err)
		}

		for _, sub := range node.Subfolders {
			subPath := filepath.Join(folderPath, sub)
			if err := s.fsmgr.MkdirAll(subPath); err != nil {
				return fmt.Errorf("creating subfolder %s/%s: %w", node.Folder, sub, err)
			}
			subDesc := FolderDescription(node.Folder + "/" + sub)
			if err := s.fsmgr.WriteFile(filepath.Join(subPath, "README.txt"), []byte(subDesc)); err != nil {
				return fmt.Errorf("writing description for %s/%s: %w", node.Folder, sub, err)
			}
		}
	}

	now := s.clock.Now()
	readme := initialReadme(opts.ProjectName, opts.Description, now)
	if err := s.fsmgr.WriteFile(filepath.Join(root, "README.txt"), []byte(readme)); err != nil {
		return fmt.Errorf("writing project README: %w", err)
	}

	journal := initialJournal(opts.ProjectName, opts.Description, now)
	if err := s.fsmgr.WriteFile(filepath.Join(root, "journal.md"), []byte(journal)); err != nil {
		return fmt.Errorf("writing journal seed: %w", err)
	}

	s.logger.Info("project structure created", "root", root)
	return nil
}

func initialReadme(name, description string, now time.Time) string {
	if name == "" {
		name = "Untitled Project"
	}
	if description == "" {
		description = "No description provided"
	}
	return fmt.Sprintf(`PROJECT: %s
DATE: %s
DESCRIPTION: %s

This bioimage analysis project folder structure was generated by BIOME (Bio Imaging Organization and Management Environment).

PROJECT STRUCTURE:

request/
Contains the initial user request and supporting documentation
- documents/: Project specifications, requirements, and communication
- images/: Reference images from the initial request
- notes/: Project planning and meeting notes

sample_data/
Contains the raw biological images provided for analysis
- original/: Original unmodified images from the biological sample
- test_subset/: Small subset of images for testing analysis pipelines

processed_data/
Contains intermediate processing results
- converted/: Format-converted images (e.g., TIFF to other formats)
- preprocessed/: Images after initial processing (denoising, calibration)
- intermediate/: Temporary analysis files and intermediate results

references/
Contains scientific and technical documentation
- articles/: Relevant scientific papers and literature
- protocols/: Analysis protocols and methodology documentation
- manuals/: Software manuals and technical guides

scripts/
Contains all analysis code and automation scripts
- Analysis pipelines and image processing scripts
- Custom functions and utilities
- Batch processing and automation code

results/
Contains final outputs and deliverables
- analysis_results/: Final quantitative results, measurements, and statistics
- tutorials/: Step-by-step guides for reproducing the analysis
- protocols/: Finalized analysis protocols for future use
- examples/: Example outputs and sample results

USAGE NOTES:
1. Place your raw images in sample_data/original/
2. Use sample_data/test_subset/ for pipeline development
3. Save intermediate processing steps in processed_data/
4. Document your methodology in references/protocols/
5. Place final results and reports in results/analysis_results/
`, name, now.Format("2006-01-02"), description)
}

func initialJournal(name, description string, now time.Time) string {
	if name == "" {
		name = "Untitled Project"
	}
	if description == "" {
		description = "No description provided"
	}
	return fmt.Sprintf(`# Project Journal: %s

## Overview
%s

## Journal Entries

### %s - Project Created
Initial project structure created.
`, name, description, now.Format("2006-01-02"))
}
