package biome

import (
	"context"
	"time"

	"biome/internal/model"
)

// Store provides an interface for metadata storage operations.
// Find-style methods return (nil, nil) when the row does not exist.
// The engine never issues schema DDL through this interface.
type Store interface {
	// Project operations

	// GetProject returns a project with its user/group names joined.
	GetProject(ctx context.Context, id int64) (*model.Project, error)

	// ListProjects returns all projects ordered by last update.
	ListProjects(ctx context.Context) ([]*model.Project, error)

	// CreateProject inserts a new project and returns its id.
	CreateProject(ctx context.Context, p *model.Project) (int64, error)

	// UpdateProjectFields applies the given column→value updates and
	// touches last_updated. Callers are responsible for restricting the
	// keys to mutable columns.
	UpdateProjectFields(ctx context.Context, id int64, fields map[string]any) error

	// SetFolderCreated writes back the folder_created flag.
	SetFolderCreated(ctx context.Context, id int64, created bool) error

	// SetReadmeUpdated writes back readme_last_updated and touches last_updated.
	SetReadmeUpdated(ctx context.Context, id int64, at time.Time) error

	// TouchProject updates last_updated only.
	TouchProject(ctx context.Context, id int64) error

	// ReplaceProjectUsers replaces the project's assigned user set.
	ReplaceProjectUsers(ctx context.Context, projectID int64, userIDs []int64) error

	// ListProjectUsers returns the assigned user set, by name.
	ListProjectUsers(ctx context.Context, projectID int64) ([]*model.User, error)

	// Journal operations

	GetJournalEntry(ctx context.Context, projectID, entryID int64) (*model.JournalEntry, error)
	ListJournalEntries(ctx context.Context, projectID int64) ([]*model.JournalEntry, error)
	AddJournalEntry(ctx context.Context, projectID int64, text string) (*model.JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, entryID int64, text string, editedBy *string) error
	DeleteJournalEntry(ctx context.Context, entryID int64) error

	// Resource operations

	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	ListResources(ctx context.Context, projectID int64) ([]*model.Resource, error)
	CreateResource(ctx context.Context, r *model.Resource) (int64, error)
	UpdateResourceCaption(ctx context.Context, id int64, caption *string) error
	DeleteResource(ctx context.Context, id int64) error

	// Activity operations

	// RecordActivity appends an audit record. Activities are never
	// updated or deleted.
	RecordActivity(ctx context.Context, a *model.Activity) error

	// ListActivities returns activities for one project, newest first.
	ListActivities(ctx context.Context, projectID int64) ([]*model.Activity, error)

	// ListActivityExportRows returns all activities joined with project,
	// user, and group names, newest first.
	ListActivityExportRows(ctx context.Context) ([]*model.ActivityExportRow, error)

	// User and group operations

	CreateUser(ctx context.Context, u *model.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateGroup(ctx context.Context, g *model.Group) (int64, error)
	GetGroup(ctx context.Context, id int64) (*model.Group, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)

	// Close closes the underlying connection.
	Close() error
}
