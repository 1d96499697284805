package biome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"biome/internal/model"
)

var (
	// ErrProjectNotFound is returned when an operation references a
	// project id that does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNoProjectPath is returned by filesystem-facing operations when
	// the project has no project_path recorded.
	ErrNoProjectPath = errors.New("project has no project path")

	// ErrInvalidStatus is returned when a project update carries a
	// status outside the known set.
	ErrInvalidStatus = errors.New("invalid project status")
)

// journalDetailLimit bounds the journal text echoed into activity
// details; longer entries are truncated with an ellipsis.
const journalDetailLimit = 100

// Service implements the synchronization engine on top of injected
// storage, filesystem, logging, and clock dependencies.
type Service struct {
	store     Store
	fsmgr     FilesystemManager
	logger    Logger
	clock     Clock
	emptiness EmptinessPolicy

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithEmptinessPolicy overrides the heuristic used to classify a scanned
// tree as effectively empty.
func WithEmptinessPolicy(p EmptinessPolicy) Option {
	return func(s *Service) { s.emptiness = p }
}

// WithClock overrides the time source, primarily for tests.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func NewService(store Store, fsmgr FilesystemManager, logger Logger, opts ...Option) *Service {
	if logger == nil {
		logger = &NopLogger{}
	}
	s := &Service{
		store:     store,
		fsmgr:     fsmgr,
		logger:    logger,
		clock:     &RealClock{},
		emptiness: DefaultEmptinessPolicy(5, 3),
		locks:     make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockProject serializes README and resource mutations per project so
// concurrent partial updates cannot interleave writes to the same file.
func (s *Service) lockProject(projectID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[projectID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// GetProject returns one project or ErrProjectNotFound.
func (s *Service) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *Service) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return s.store.ListProjects(ctx)
}

// CreateProject inserts a project and records a creation activity whose
// changed-fields map carries every initial value with a nil "from" side.
func (s *Service) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	if p.Name == "" {
		return nil, errors.New("project name is required")
	}
	if p.Status == "" {
		p.Status = StatusPreparing
	}
	p.Status = NormalizeStatus(p.Status)
	if !ValidStatus(p.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}

	id, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	changes := creationChanges(p)
	if err := s.recordActivity(ctx, id, "create", fmt.Sprintf("Project %q created", p.Name), changes); err != nil {
		return nil, err
	}

	created, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading project: %w", err)
	}
	s.logger.Info("project created", "project_id", id, "name", p.Name)
	return created, nil
}

// UpdateProject applies the requested field values, records an update
// activity carrying only the fields that actually changed, and returns
// the refreshed project. A request whose diff is empty is a no-op: no
// write, no activity.
func (s *Service) UpdateProject(ctx context.Context, id int64, fields map[string]any) (*model.Project, error) {
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, ok := fields["status"]; ok {
		status, _ := raw.(string)
		status = NormalizeStatus(status)
		if !ValidStatus(status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		fields["status"] = status
	}

	changes, updates, err := DiffFields(current, fields)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		s.logger.Debug("project update skipped, no changes", "project_id", id)
		return current, nil
	}

	if err := s.store.UpdateProjectFields(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	if err := s.recordActivity(ctx, id, "update", fmt.Sprintf("Project %q updated", current.Name), changes); err != nil {
		return nil, err
	}

	updated, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading project: %w", err)
	}
	s.logger.Info("project updated", "project_id", id, "fields", changedFieldNames(changes))
	return updated, nil
}

// AssignUsers replaces the project's user set and records an
// update_users activity.
func (s *Service) AssignUsers(ctx context.Context, projectID int64, userIDs []int64) error {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}
	if err := s.store.ReplaceProjectUsers(ctx, projectID, userIDs); err != nil {
		return fmt.Errorf("assigning users: %w", err)
	}
	details := fmt.Sprintf("Assigned %d user(s)", len(userIDs))
	if err := s.recordActivity(ctx, projectID, "update_users", details, nil); err != nil {
		return err
	}
	s.logger.Info("project users replaced", "project_id", projectID, "count", len(userIDs))
	return nil
}

// AddJournalEntry appends a journal entry and records a journal_entry
// activity echoing the (truncated) text.
func (s *Service) AddJournalEntry(ctx context.Context, projectID int64, text string) (*model.JournalEntry, error) {
	if text == "" {
		return nil, errors.New("journal entry text is required")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	entry, err := s.store.AddJournalEntry(ctx, projectID, text)
	if err != nil {
		return nil, fmt.Errorf("adding journal entry: %w", err)
	}
	if err := s.recordActivity(ctx, projectID, "journal_entry", truncateDetail(text), nil); err != nil {
		return nil, err
	}
	if err := s.store.TouchProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("touching project: %w", err)
	}
	return entry, nil
}

// EditJournalEntry rewrites an entry's text, stamps the edit attribution,
// and records a journal_entry_edited activity.
func (s *Service) EditJournalEntry(ctx context.Context, projectID, entryID int64, text string, editedBy *string) error {
	if text == "" {
		return errors.New("journal entry text is required")
	}
	entry, err := s.store.GetJournalEntry(ctx, projectID, entryID)
	if err != nil {
		return fmt.Errorf("loading journal entry: %w", err)
	}
	if entry == nil {
		return errors.New("journal entry not found")
	}
	if err := s.store.UpdateJournalEntry(ctx, entryID, text, editedBy); err != nil {
		return fmt.Errorf("updating journal entry: %w", err)
	}
	changes := map[string]FieldChange{
		"journal_entry": {From: truncateDetail(entry.EntryText), To: truncateDetail(text)},
	}
	if err := s.recordActivity(ctx, projectID, "journal_entry_edited", truncateDetail(text), changes); err != nil {
		return err
	}
	return s.store.TouchProject(ctx, projectID)
}

// DeleteJournalEntry removes an entry and records a
// journal_entry_deleted activity echoing the removed text.
func (s *Service) DeleteJournalEntry(ctx context.Context, projectID, entryID int64) error {
	entry, err := s.store.GetJournalEntry(ctx, projectID, entryID)
	if err != nil {
		return fmt.Errorf("loading journal entry: %w", err)
	}
	if entry == nil {
		return errors.New("journal entry not found")
	}
	if err := s.store.DeleteJournalEntry(ctx, entryID); err != nil {
		return fmt.Errorf("deleting journal entry: %w", err)
	}
	if err := s.recordActivity(ctx, projectID, "journal_entry_deleted", truncateDetail(entry.EntryText), nil); err != nil {
		return err
	}
	return s.store.TouchProject(ctx, projectID)
}

// ListAssignedUsers returns the project's assigned user set.
func (s *Service) ListAssignedUsers(ctx context.Context, projectID int64) ([]*model.User, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListProjectUsers(ctx, projectID)
}

// CreateGroup registers a research group.
func (s *Service) CreateGroup(ctx context.Context, g *model.Group) (*model.Group, error) {
	if g.Name == "" {
		return nil, errors.New("group name is required")
	}
	id, err := s.store.CreateGroup(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}
	return s.store.GetGroup(ctx, id)
}

// ListGroups returns all groups, by name.
func (s *Service) ListGroups(ctx context.Context) ([]*model.Group, error) {
	return s.store.ListGroups(ctx)
}

// CreateUser registers a user, optionally attached to a group.
func (s *Service) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u.Name == "" {
		return nil, errors.New("user name is required")
	}
	if u.GroupID != nil {
		g, err := s.store.GetGroup(ctx, *u.GroupID)
		if err != nil {
			return nil, fmt.Errorf("loading group: %w", err)
		}
		if g == nil {
			return nil, fmt.Errorf("group %d not found", *u.GroupID)
		}
	}
	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return s.store.GetUser(ctx, id)
}

// ListUsers returns all users, by name.
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx)
}

// ListJournalEntries returns a project's journal, newest first.
func (s *Service) ListJournalEntries(ctx context.Context, projectID int64) ([]*model.JournalEntry, error) {
	return s.store.ListJournalEntries(ctx, projectID)
}

func (s *Service) recordActivity(ctx context.Context, projectID int64, activityType, details string, changes map[string]FieldChange) error {
	a := &model.Activity{
		ProjectID:    projectID,
		ActivityType: activityType,
		Details:      details,
		ActivityDate: s.clock.Now(),
	}
	if len(changes) > 0 {
		raw, err := json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("encoding changed fields: %w", err)
		}
		enc := string(raw)
		a.ChangedFields = &enc
	}
	if err := s.store.RecordActivity(ctx, a); err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

func truncateDetail(text string) string {
	runes := []rune(text)
	if len(runes) <= journalDetailLimit {
		return text
	}
	return string(runes[:journalDetailLimit]) + "..."
}
