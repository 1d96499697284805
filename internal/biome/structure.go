package biome

import (
	"context"
	"fmt"
	"time"
)

// SuggestFolderName composes the canonical folder name for a project
// from its start date, group, user, and software. Falls back to the
// clock's current date when the project has no start date.
func (s *Service) SuggestFolderName(ctx context.Context, projectID int64) (string, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}

	date := s.clock.Now()
	if p.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", p.StartDate); err == nil {
			date = parsed
		}
	}
	return FolderName(date, strPtr(p.GroupName), strPtr(p.UserName), strPtr(p.Software)), nil
}

// InitializeProjectFolder creates the canonical structure at root and
// records root as the project's path. An existing tree at root that is
// not effectively empty is refused unless force is set: re-running the
// initializer overwrites description files, and that must not happen
// silently on a tree holding real data.
func (s *Service) InitializeProjectFolder(ctx context.Context, projectID int64, root string, force bool) error {
	unlock := s.lockProject(projectID)
	defer unlock()

	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	if s.fsmgr.Exists(root) && !force {
		scan, err := s.scanTree(ctx, root, Taxonomy())
		if err != nil {
			return fmt.Errorf("inspecting existing tree: %w", err)
		}
		if !scan.EffectivelyEmpty {
			return fmt.Errorf("directory %s already holds project data; pass force to overwrite descriptions", root)
		}
	}

	if err := s.CreateStructure(root, StructureOptions{ProjectName: p.Name, Description: p.Description}); err != nil {
		return err
	}

	updates := map[string]any{
		"project_path":   root,
		"folder_created": true,
	}
	if _, err := s.UpdateProject(ctx, projectID, updates); err != nil {
		return fmt.Errorf("recording project path: %w", err)
	}
	return nil
}

// ScanProject scans a project's recorded tree against the canonical
// taxonomy. ErrNoProjectPath when the project has no path.
func (s *Service) ScanProject(ctx context.Context, projectID int64) (*ScanResult, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.ProjectPath == nil || *p.ProjectPath == "" {
		return nil, ErrNoProjectPath
	}
	return s.ScanTree(ctx, *p.ProjectPath)
}

// ProjectRoot returns the project's recorded path or ErrNoProjectPath.
func (s *Service) ProjectRoot(ctx context.Context, projectID int64) (string, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if p.ProjectPath == nil || *p.ProjectPath == "" {
		return "", ErrNoProjectPath
	}
	return *p.ProjectPath, nil
}
