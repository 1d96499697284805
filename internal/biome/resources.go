package biome

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"biome/internal/model"
)

// allowedMimeTypes is the upload allow-list. Anything else is rejected
// before touching disk.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
	"text/plain":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// searchMaxDepth bounds how deep a resource search descends below the
// chosen search root.
const searchMaxDepth = 3

// ResourceUpload is one incoming file for UploadResources.
type ResourceUpload struct {
	OriginalName string
	MimeType     string
	Data         []byte
	Caption      *string
}

// UploadResult reports the outcome of one upload in a batch.
type UploadResult struct {
	OriginalName string
	Resource     *model.Resource
	Err          error
}

// ResourceStatus pairs a resource with its resolved on-disk location.
type ResourceStatus struct {
	Resource *model.Resource
	Path     string
}

// ValidationResult partitions a project's resources into those whose
// files are present under reference/ and those that are missing.
type ValidationResult struct {
	Valid   []ResourceStatus
	Missing []ResourceStatus
}

// SearchMatch is one candidate location for a missing resource file.
type SearchMatch struct {
	Resource   *model.Resource
	FoundPath  string
	Confidence string // "high" when the stored filename matched, "medium" for the original name
}

// RelinkRequest asks to restore one missing resource from a found file.
type RelinkRequest struct {
	ResourceID int64
	FoundPath  string
	Move       bool
}

// RelinkResult reports the outcome of one relink in a batch.
type RelinkResult struct {
	ResourceID int64
	Path       string
	Err        error
}

// ListResources returns a project's resources, newest first.
func (s *Service) ListResources(ctx context.Context, projectID int64) ([]*model.Resource, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListResources(ctx, projectID)
}

// UploadResources stores a batch of files under the project's reference/
// directory and registers them. A rejected or failed file does not abort
// the batch; its error is carried in the per-file result.
func (s *Service) UploadResources(ctx context.Context, projectID int64, uploads []ResourceUpload) ([]UploadResult, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ProjectPath == nil || *project.ProjectPath == "" {
		return nil, ErrNoProjectPath
	}
	refDir := filepath.Join(*project.ProjectPath, ReferenceDir)
	if err := s.fsmgr.MkdirAll(refDir); err != nil {
		return nil, fmt.Errorf("creating reference directory: %w", err)
	}

	results := make([]UploadResult, 0, len(uploads))
	stored := 0
	for _, up := range uploads {
		res, err := s.storeUpload(ctx, projectID, refDir, up)
		if err != nil {
			s.logger.Warn("resource upload failed", "project_id", projectID, "file", up.OriginalName, "error", err)
		} else {
			stored++
		}
		results = append(results, UploadResult{OriginalName: up.OriginalName, Resource: res, Err: err})
	}

	if stored > 0 {
		if err := s.store.TouchProject(ctx, projectID); err != nil {
			return results, fmt.Errorf("touching project: %w", err)
		}
	}
	s.logger.Info("resources uploaded", "project_id", projectID, "stored", stored, "rejected", len(uploads)-stored)
	return results, nil
}

func (s *Service) storeUpload(ctx context.Context, projectID int64, refDir string, up ResourceUpload) (*model.Resource, error) {
	if !allowedMimeTypes[up.MimeType] {
		return nil, fmt.Errorf("unsupported file type %q", up.MimeType)
	}

	base := sanitizeFilename(filepath.Base(up.OriginalName))
	if base == "" || base == "." {
		return nil, fmt.Errorf("unusable file name %q", up.OriginalName)
	}

	filename := s.collisionFreeName(refDir, base)
	dest := filepath.Join(refDir, filename)
	if err := s.fsmgr.WriteFile(dest, up.Data); err != nil {
		return nil, fmt.Errorf("writing resource file: %w", err)
	}

	r := &model.Resource{
		ProjectID:    projectID,
		Filename:     filename,
		OriginalName: up.OriginalName,
		MimeType:     up.MimeType,
		Kind:         resourceKind(up.MimeType),
		Size:         int64(len(up.Data)),
		Caption:      up.Caption,
		CreatedAt:    s.clock.Now(),
	}
	id, err := s.store.CreateResource(ctx, r)
	if err != nil {
		// Keep disk and database consistent when the insert fails.
		if rmErr := s.fsmgr.Remove(dest); rmErr != nil {
			s.logger.Warn("orphaned resource file left behind", "path", dest, "error", rmErr)
		}
		return nil, fmt.Errorf("registering resource: %w", err)
	}
	r.ID = id
	return r, nil
}

// collisionFreeName returns base unchanged when free, otherwise the
// first "name (N).ext" variant that does not exist yet.
func (s *Service) collisionFreeName(dir, base string) string {
	if !s.fsmgr.Exists(filepath.Join(dir, base)) {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !s.fsmgr.Exists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

// sanitizeFilename replaces path and shell metacharacters that are
// unsafe in stored names.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func resourceKind(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return "image"
	}
	return "document"
}

// ValidateResources checks every registered resource against the
// reference/ directory and partitions them into present and missing.
func (s *Service) ValidateResources(ctx context.Context, projectID int64) (*ValidationResult, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ProjectPath == nil || *project.ProjectPath == "" {
		return nil, ErrNoProjectPath
	}
	refDir := filepath.Join(*project.ProjectPath, ReferenceDir)

	resources, err := s.store.ListResources(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	result := &ValidationResult{}
	for _, r := range resources {
		status := ResourceStatus{Resource: r, Path: filepath.Join(refDir, r.Filename)}
		if s.fsmgr.Exists(status.Path) {
			result.Valid = append(result.Valid, status)
		} else {
			result.Missing = append(result.Missing, status)
		}
	}
	return result, nil
}

// SearchResources tries to locate each missing resource below a
// caller-chosen directory, typically where a project tree was moved to.
// The stored filename matches with high confidence, the original upload
// name with medium; the first hit per resource wins.
func (s *Service) SearchResources(ctx context.Context, projectID int64, searchPath string) ([]SearchMatch, error) {
	if searchPath == "" {
		return nil, errors.New("search path is required")
	}
	if !s.fsmgr.Exists(searchPath) {
		return nil, fmt.Errorf("search path %s does not exist", searchPath)
	}

	validation, err := s.ValidateResources(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var matches []SearchMatch
	for _, missing := range validation.Missing {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := missing.Resource
		if p := s.findFile(ctx, searchPath, r.Filename, 0); p != "" {
			matches = append(matches, SearchMatch{Resource: r, FoundPath: p, Confidence: "high"})
			continue
		}
		if r.OriginalName != "" && r.OriginalName != r.Filename {
			if p := s.findFile(ctx, searchPath, r.OriginalName, 0); p != "" {
				matches = append(matches, SearchMatch{Resource: r, FoundPath: p, Confidence: "medium"})
			}
		}
	}
	return matches, nil
}

// findFile walks breadth-limited below dir looking for an exact name
// match. Unreadable directories are skipped.
func (s *Service) findFile(ctx context.Context, dir, name string, depth int) string {
	if depth > searchMaxDepth || ctx.Err() != nil {
		return ""
	}
	entries, err := s.fsmgr.ReadDir(dir)
	if err != nil {
		return ""
	}
	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e.Name())
			continue
		}
		if e.Name() == name {
			return filepath.Join(dir, name)
		}
	}
	for _, sub := range subdirs {
		if p := s.findFile(ctx, filepath.Join(dir, sub), name, depth+1); p != "" {
			return p
		}
	}
	return ""
}

// RelinkResources restores missing resources from found files, copying
// or moving each into reference/ under its registered filename. A
// failed item does not abort the batch.
func (s *Service) RelinkResources(ctx context.Context, projectID int64, requests []RelinkRequest) ([]RelinkResult, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ProjectPath == nil || *project.ProjectPath == "" {
		return nil, ErrNoProjectPath
	}
	refDir := filepath.Join(*project.ProjectPath, ReferenceDir)
	if err := s.fsmgr.MkdirAll(refDir); err != nil {
		return nil, fmt.Errorf("creating reference directory: %w", err)
	}

	results := make([]RelinkResult, 0, len(requests))
	for _, req := range requests {
		path, err := s.relinkOne(ctx, projectID, refDir, req)
		if err != nil {
			s.logger.Warn("resource relink failed", "project_id", projectID, "resource_id", req.ResourceID, "error", err)
		}
		results = append(results, RelinkResult{ResourceID: req.ResourceID, Path: path, Err: err})
	}
	return results, nil
}

func (s *Service) relinkOne(ctx context.Context, projectID int64, refDir string, req RelinkRequest) (string, error) {
	r, err := s.store.GetResource(ctx, req.ResourceID)
	if err != nil {
		return "", fmt.Errorf("loading resource: %w", err)
	}
	if r == nil || r.ProjectID != projectID {
		return "", errors.New("resource not found")
	}
	if !s.fsmgr.Exists(req.FoundPath) {
		return "", fmt.Errorf("source file %s no longer exists", req.FoundPath)
	}

	target := filepath.Join(refDir, r.Filename)
	if s.fsmgr.Exists(target) {
		return "", fmt.Errorf("target %s already exists", target)
	}

	if req.Move {
		if err := s.fsmgr.Rename(req.FoundPath, target); err != nil {
			return "", fmt.Errorf("moving file: %w", err)
		}
	} else {
		if err := s.fsmgr.CopyFile(req.FoundPath, target); err != nil {
			return "", fmt.Errorf("copying file: %w", err)
		}
	}
	return target, nil
}

// SetResourceCaption updates a resource's caption. An empty caption
// clears it.
func (s *Service) SetResourceCaption(ctx context.Context, projectID, resourceID int64, caption string) error {
	r, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("loading resource: %w", err)
	}
	if r == nil || r.ProjectID != projectID {
		return errors.New("resource not found")
	}
	var ptr *string
	if caption != "" {
		ptr = &caption
	}
	if err := s.store.UpdateResourceCaption(ctx, resourceID, ptr); err != nil {
		return fmt.Errorf("updating caption: %w", err)
	}
	return s.store.TouchProject(ctx, projectID)
}

// DeleteResource removes the registration and then the file. A failed
// file removal is logged but not fatal: the registration is already
// gone and validation will simply never miss it.
func (s *Service) DeleteResource(ctx context.Context, projectID, resourceID int64) error {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	r, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("loading resource: %w", err)
	}
	if r == nil || r.ProjectID != projectID {
		return errors.New("resource not found")
	}

	if err := s.store.DeleteResource(ctx, resourceID); err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}

	if project.ProjectPath != nil && *project.ProjectPath != "" {
		path := filepath.Join(*project.ProjectPath, ReferenceDir, r.Filename)
		if s.fsmgr.Exists(path) {
			if err := s.fsmgr.Remove(path); err != nil {
				s.logger.Warn("resource file removal failed", "path", path, "error", err)
			}
		}
	}
	return s.store.TouchProject(ctx, projectID)
}
