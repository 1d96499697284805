package biome

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// descriptionFile is the machine-owned description file the initializer
// writes into every canonical folder. Scans skip it so a freshly created
// structure reads as empty.
const descriptionFile = "README.txt"

// FileEntry is one regular file discovered during a scan.
type FileEntry struct {
	Name string
	Size int64
}

// FolderDetail is the scan summary for one folder, keyed by its path
// relative to the project root ("request" or "request/documents").
type FolderDetail struct {
	Path       string
	Canonical  bool
	Missing    bool
	FileCount  int
	TotalBytes int64
	Files      []FileEntry
}

// ScanResult is the transient outcome of walking a project tree against
// the canonical taxonomy. It is recomputed on every scan, never persisted.
type ScanResult struct {
	Root           string
	Folders        []*FolderDetail
	ExtraTopLevel  []string
	MissingFolders []string
	TotalFiles     int
	TotalBytes     int64
	StructureValid bool
	EffectivelyEmpty bool
}

// Folder returns the detail for a relative path, or nil.
func (r *ScanResult) Folder(rel string) *FolderDetail {
	for _, f := range r.Folders {
		if f.Path == rel {
			return f
		}
	}
	return nil
}

// EmptinessPolicy decides whether a tree counts as effectively empty,
// i.e. whether structure creation may proceed without a
// destructive-overwrite confirmation.
type EmptinessPolicy func(totalFiles, missingCount int) bool

// DefaultEmptinessPolicy returns the stock heuristic: empty when the tree
// holds no files at all, or when it holds fewer than fileThreshold files
// while more than missingThreshold canonical folders are absent.
func DefaultEmptinessPolicy(fileThreshold, missingThreshold int) EmptinessPolicy {
	return func(totalFiles, missingCount int) bool {
		return totalFiles == 0 || (totalFiles < fileThreshold && missingCount > missingThreshold)
	}
}

// ScanTree walks the project root against the canonical taxonomy and
// returns a structured summary. The walk is bounded at two levels for
// canonical folders and one level for extras. I/O errors on individual
// folders degrade that folder to zero counts; they never abort the scan.
// The context is checked between directory reads.
func (s *Service) ScanTree(ctx context.Context, root string) (*ScanResult, error) {
	return s.scanTree(ctx, root, Taxonomy())
}

func (s *Service) scanTree(ctx context.Context, root string, tax []TaxonomyNode) (*ScanResult, error) {
	if root == "" {
		return nil, ErrNoProjectPath
	}

	result := &ScanResult{Root: root}

	// Top-level listing drives extras detection. If the root itself is
	// unreadable there is nothing meaningful to report.
	topDirs, err := s.listDirs(root)
	if err != nil {
		return nil, fmt.Errorf("reading project root: %w", err)
	}
	remaining := make(map[string]bool, len(topDirs))
	for _, d := range topDirs {
		remaining[d] = true
	}

	structureValid := true
	for _, node := range tax {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		delete(remaining, node.Folder)

		folderPath := filepath.Join(root, node.Folder)
		if !s.fsmgr.Exists(folderPath) {
			structureValid = false
			result.MissingFolders = append(result.MissingFolders, node.Folder)
			result.Folders = append(result.Folders, &FolderDetail{Path: node.Folder, Canonical: true, Missing: true})
			for _, sub := range node.Subfolders {
				result.MissingFolders = append(result.MissingFolders, node.Folder+"/"+sub)
				result.Folders = append(result.Folders, &FolderDetail{Path: node.Folder + "/" + sub, Canonical: true, Missing: true})
			}
			continue
		}

		detail := s.scanFolder(node.Folder, folderPath, true)
		result.Folders = append(result.Folders, detail)

		existingSubs := map[string]bool{}
		for _, d := range s.listDirsQuiet(folderPath) {
			existingSubs[d] = true
		}

		for _, sub := range node.Subfolders {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rel := node.Folder + "/" + sub
			subPath := filepath.Join(folderPath, sub)
			if !existingSubs[sub] {
				result.MissingFolders = append(result.MissingFolders, rel)
				result.Folders = append(result.Folders, &FolderDetail{Path: rel, Canonical: true, Missing: true})
				continue
			}
			delete(existingSubs, sub)
			result.Folders = append(result.Folders, s.scanFolder(rel, subPath, true))
		}

		// User-added subfolders are reported, not silently dropped.
		extraSubs := make([]string, 0, len(existingSubs))
		for name := range existingSubs {
			extraSubs = append(extraSubs, name)
		}
		sort.Strings(extraSubs)
		for _, sub := range extraSubs {
			rel := node.Folder + "/" + sub
			result.Folders = append(result.Folders, s.scanFolder(rel, filepath.Join(folderPath, sub), false))
		}
	}

	extras := make([]string, 0, len(remaining))
	for name := range remaining {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.ExtraTopLevel = append(result.ExtraTopLevel, name)
		result.Folders = append(result.Folders, s.scanFolder(name, filepath.Join(root, name), false))
	}

	for _, f := range result.Folders {
		result.TotalFiles += f.FileCount
		result.TotalBytes += f.TotalBytes
	}
	result.StructureValid = structureValid
	result.EffectivelyEmpty = s.emptiness(result.TotalFiles, len(result.MissingFolders))

	return result, nil
}

// scanFolder summarizes the regular files directly inside one folder.
// Errors degrade to a zero-count entry so one unreadable folder never
// aborts a scan.
func (s *Service) scanFolder(rel, path string, canonical bool) *FolderDetail {
	detail := &FolderDetail{Path: rel, Canonical: canonical}
	files, err := s.listFiles(path)
	if err != nil {
		s.logger.Warn("skipping unreadable folder", "path", path, "error", err)
		return detail
	}
	detail.Files = files
	detail.FileCount = len(files)
	for _, f := range files {
		detail.TotalBytes += f.Size
	}
	return detail
}

func (s *Service) listFiles(path string) ([]FileEntry, error) {
	entries, err := s.fsmgr.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []FileEntry
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		if entry.Name() == descriptionFile {
			continue
		}
		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		files = append(files, FileEntry{Name: entry.Name(), Size: size})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *Service) listDirs(path string) ([]string, error) {
	entries, err := s.fsmgr.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

func (s *Service) listDirsQuiet(path string) []string {
	dirs, err := s.listDirs(path)
	if err != nil {
		s.logger.Warn("skipping unreadable folder", "path", path, "error", err)
		return nil
	}
	return dirs
}
