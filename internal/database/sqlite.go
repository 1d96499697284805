package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"biome/internal/biome"
	"biome/internal/database/migrations"
	"biome/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection. The caller
// is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with the
// appropriate PRAGMAs. Exported for tools and tests that need a properly
// configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty
	// database, so pin the pool to a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Foreign key constraints are OFF by default in SQLite.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

const projectColumns = `p.id, p.name, p.description, p.status, p.software,
	p.time_spent_minutes, p.project_path, p.folder_created, p.readme_last_updated,
	p.start_date, p.user_id, p.creation_date, p.last_updated, p.image_types,
	p.sample_type, p.objective_magnification, p.analysis_goal, p.output_type,
	u.name, g.name`

const projectJoins = `FROM projects p
	LEFT JOIN users u ON u.id = p.user_id
	LEFT JOIN groups g ON g.id = u.group_id`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	var software, projectPath, startDate sql.NullString
	var imageTypes, sampleType, objectiveMag, analysisGoal, outputType sql.NullString
	var userName, groupName sql.NullString
	var readmeUpdated sql.NullTime
	var userID sql.NullInt64
	var folderCreated int64

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &software,
		&p.TimeSpentMinutes, &projectPath, &folderCreated, &readmeUpdated,
		&startDate, &userID, &p.CreationDate, &p.LastUpdated, &imageTypes,
		&sampleType, &objectiveMag, &analysisGoal, &outputType,
		&userName, &groupName,
	)
	if err != nil {
		return nil, err
	}

	p.Software = nullStr(software)
	p.ProjectPath = nullStr(projectPath)
	p.FolderCreated = folderCreated != 0
	if readmeUpdated.Valid {
		t := readmeUpdated.Time
		p.ReadmeLastUpdated = &t
	}
	p.StartDate = startDate.String
	if userID.Valid {
		id := userID.Int64
		p.UserID = &id
	}
	p.ImageTypes = nullStr(imageTypes)
	p.SampleType = nullStr(sampleType)
	p.ObjectiveMagnification = nullStr(objectiveMag)
	p.AnalysisGoal = nullStr(analysisGoal)
	p.OutputType = nullStr(outputType)
	p.UserName = nullStr(userName)
	p.GroupName = nullStr(groupName)
	return &p, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	query := "SELECT " + projectColumns + " " + projectJoins + " WHERE p.id = ?"
	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	query := "SELECT " + projectColumns + " " + projectJoins + " ORDER BY p.last_updated DESC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p *model.Project) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (
			name, description, status, software, time_spent_minutes,
			project_path, folder_created, start_date, user_id,
			image_types, sample_type, objective_magnification,
			analysis_goal, output_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Status, p.Software, p.TimeSpentMinutes,
		p.ProjectPath, boolInt(p.FolderCreated), p.StartDate, p.UserID,
		p.ImageTypes, p.SampleType, p.ObjectiveMagnification,
		p.AnalysisGoal, p.OutputType,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// projectColumnSet is the set of columns UpdateProjectFields may touch.
var projectColumnSet = map[string]bool{
	"name": true, "description": true, "status": true, "software": true,
	"time_spent_minutes": true, "project_path": true, "folder_created": true,
	"readme_last_updated": true, "start_date": true, "user_id": true,
	"image_types": true, "sample_type": true, "objective_magnification": true,
	"analysis_goal": true, "output_type": true,
}

func (s *SQLiteStore) UpdateProjectFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if !projectColumnSet[name] {
			return fmt.Errorf("column %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, fields[name])
	}
	sets = append(sets, "last_updated = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := "UPDATE projects SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating project fields: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetFolderCreated(ctx context.Context, id int64, created bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE projects SET folder_created = ?, last_updated = CURRENT_TIMESTAMP WHERE id = ?",
		boolInt(created), id)
	if err != nil {
		return fmt.Errorf("setting folder_created: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetReadmeUpdated(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE projects SET readme_last_updated = ?, last_updated = CURRENT_TIMESTAMP WHERE id = ?",
		at, id)
	if err != nil {
		return fmt.Errorf("setting readme_last_updated: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TouchProject(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE projects SET last_updated = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("touching project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ReplaceProjectUsers(ctx context.Context, projectID int64, userIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_users WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("clearing project users: %w", err)
	}
	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO project_users (project_id, user_id) VALUES (?, ?)",
			projectID, userID); err != nil {
			return fmt.Errorf("inserting project user %d: %w", userID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE projects SET last_updated = CURRENT_TIMESTAMP WHERE id = ?", projectID); err != nil {
		return fmt.Errorf("touching project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListProjectUsers(ctx context.Context, projectID int64) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.group_id
		FROM project_users pu
		JOIN users u ON u.id = pu.user_id
		WHERE pu.project_id = ?
		ORDER BY u.name ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		var email sql.NullString
		var groupID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Name, &email, &groupID); err != nil {
			return nil, fmt.Errorf("scanning project user: %w", err)
		}
		u.Email = nullStr(email)
		if groupID.Valid {
			id := groupID.Int64
			u.GroupID = &id
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project users: %w", err)
	}
	return users, nil
}

// Journal operations

func scanJournalEntry(row interface{ Scan(...any) error }) (*model.JournalEntry, error) {
	var e model.JournalEntry
	var editedAt sql.NullTime
	var editedBy sql.NullString
	err := row.Scan(&e.ID, &e.ProjectID, &e.EntryText, &e.EntryDate, &editedAt, &editedBy)
	if err != nil {
		return nil, err
	}
	if editedAt.Valid {
		t := editedAt.Time
		e.EditedAt = &t
	}
	e.EditedBy = nullStr(editedBy)
	return &e, nil
}

func (s *SQLiteStore) GetJournalEntry(ctx context.Context, projectID, entryID int64) (*model.JournalEntry, error) {
	e, err := scanJournalEntry(s.db.QueryRowContext(ctx, `
		SELECT id, project_id, entry_text, entry_date, edited_at, edited_by
		FROM journal_entries WHERE id = ? AND project_id = ?`, entryID, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding journal entry: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) ListJournalEntries(ctx context.Context, projectID int64) ([]*model.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, entry_text, entry_date, edited_at, edited_by
		FROM journal_entries WHERE project_id = ? ORDER BY entry_date DESC, id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) AddJournalEntry(ctx context.Context, projectID int64, text string) (*model.JournalEntry, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO journal_entries (project_id, entry_text) VALUES (?, ?)",
		projectID, text)
	if err != nil {
		return nil, fmt.Errorf("inserting journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}
	return s.GetJournalEntry(ctx, projectID, id)
}

func (s *SQLiteStore) UpdateJournalEntry(ctx context.Context, entryID int64, text string, editedBy *string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE journal_entries SET entry_text = ?, edited_at = CURRENT_TIMESTAMP, edited_by = ? WHERE id = ?",
		text, editedBy, entryID)
	if err != nil {
		return fmt.Errorf("updating journal entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteJournalEntry(ctx context.Context, entryID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = ?", entryID); err != nil {
		return fmt.Errorf("deleting journal entry: %w", err)
	}
	return nil
}

// Resource operations

func scanResource(row interface{ Scan(...any) error }) (*model.Resource, error) {
	var r model.Resource
	var caption sql.NullString
	err := row.Scan(&r.ID, &r.ProjectID, &r.Filename, &r.OriginalName,
		&r.MimeType, &r.Kind, &r.Size, &caption, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Caption = nullStr(caption)
	return &r, nil
}

func (s *SQLiteStore) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	r, err := scanResource(s.db.QueryRowContext(ctx, `
		SELECT id, project_id, filename, original_name, mime_type, kind, size, caption, created_at
		FROM project_resources WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding resource: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListResources(ctx context.Context, projectID int64) ([]*model.Resource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, filename, original_name, mime_type, kind, size, caption, created_at
		FROM project_resources WHERE project_id = ? ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var resources []*model.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	return resources, nil
}

func (s *SQLiteStore) CreateResource(ctx context.Context, r *model.Resource) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO project_resources (project_id, filename, original_name, mime_type, kind, size, caption, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ProjectID, r.Filename, r.OriginalName, r.MimeType, r.Kind, r.Size, r.Caption, r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting resource: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateResourceCaption(ctx context.Context, id int64, caption *string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE project_resources SET caption = ? WHERE id = ?", caption, id); err != nil {
		return fmt.Errorf("updating resource caption: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteResource(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM project_resources WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return nil
}

// Activity operations

func (s *SQLiteStore) RecordActivity(ctx context.Context, a *model.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_activities (project_id, activity_type, details, changed_fields, activity_date)
		VALUES (?, ?, ?, ?, ?)`,
		a.ProjectID, a.ActivityType, a.Details, a.ChangedFields, a.ActivityDate)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListActivities(ctx context.Context, projectID int64) ([]*model.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, activity_type, details, changed_fields, activity_date
		FROM project_activities WHERE project_id = ? ORDER BY activity_date DESC, id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []*model.Activity
	for rows.Next() {
		var a model.Activity
		var changed sql.NullString
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.ActivityType, &a.Details, &changed, &a.ActivityDate); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.ChangedFields = nullStr(changed)
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

func (s *SQLiteStore) ListActivityExportRows(ctx context.Context) ([]*model.ActivityExportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.project_id, a.activity_type, a.details, a.changed_fields, a.activity_date,
			p.name, u.name, g.name
		FROM project_activities a
		JOIN projects p ON p.id = a.project_id
		LEFT JOIN users u ON u.id = p.user_id
		LEFT JOIN groups g ON g.id = u.group_id
		ORDER BY a.activity_date DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing activity export rows: %w", err)
	}
	defer rows.Close()

	var result []*model.ActivityExportRow
	for rows.Next() {
		var row model.ActivityExportRow
		var changed, userName, groupName sql.NullString
		if err := rows.Scan(&row.ID, &row.ProjectID, &row.ActivityType, &row.Details,
			&changed, &row.ActivityDate, &row.ProjectName, &userName, &groupName); err != nil {
			return nil, fmt.Errorf("scanning activity export row: %w", err)
		}
		row.ChangedFields = nullStr(changed)
		row.UserName = nullStr(userName)
		row.GroupName = nullStr(groupName)
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity export rows: %w", err)
	}
	return result, nil
}

// User and group operations

func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, group_id) VALUES (?, ?, ?)",
		u.Name, u.Email, u.GroupID)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	var email sql.NullString
	var groupID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, group_id FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Name, &email, &groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	u.Email = nullStr(email)
	if groupID.Valid {
		id := groupID.Int64
		u.GroupID = &id
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, group_id FROM users ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		var email sql.NullString
		var groupID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Name, &email, &groupID); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Email = nullStr(email)
		if groupID.Valid {
			id := groupID.Int64
			u.GroupID = &id
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) CreateGroup(ctx context.Context, g *model.Group) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (name, description) VALUES (?, ?)",
		g.Name, g.Description)
	if err != nil {
		return 0, fmt.Errorf("inserting group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetGroup(ctx context.Context, id int64) (*model.Group, error) {
	var g model.Group
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description FROM groups WHERE id = ?", id).
		Scan(&g.ID, &g.Name, &description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding group: %w", err)
	}
	g.Description = nullStr(description)
	return &g, nil
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*model.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM groups ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		var g model.Group
		var description sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &description); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		g.Description = nullStr(description)
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}
	return groups, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies any pending schema migrations.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Compile-time check that SQLiteStore implements the biome.Store interface
var _ biome.Store = (*SQLiteStore)(nil)
