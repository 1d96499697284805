package model

import "time"

// Project is the metadata record for a bioimage-analysis project.
// The categorical fields (ImageTypes, SampleType, AnalysisGoal) hold
// JSON-encoded string arrays as stored by the UI; they are decoded only
// for display and surfaced verbatim when malformed.
type Project struct {
	ID                int64
	Name              string
	Description       string
	Status            string
	Software          *string
	TimeSpentMinutes  int
	ProjectPath       *string // absolute path; nil until a folder is linked
	FolderCreated     bool
	ReadmeLastUpdated *time.Time
	StartDate         string // YYYY-MM-DD
	UserID            *int64
	CreationDate      time.Time
	LastUpdated       time.Time

	ImageTypes             *string
	SampleType             *string
	ObjectiveMagnification *string
	AnalysisGoal           *string
	OutputType             *string

	// Joined display fields, populated by list/get queries.
	UserName  *string
	GroupName *string
}

// Resource is a reference file uploaded for a project. The backing file
// lives at <project_path>/reference/<Filename>; Filename is unique within
// that directory at creation time.
type Resource struct {
	ID           int64
	ProjectID    int64
	Filename     string // stored name, possibly suffixed "name (1).ext"
	OriginalName string // name as uploaded
	MimeType     string
	Kind         string // "image" or "document"
	Size         int64
	Caption      *string
	CreatedAt    time.Time
}

// JournalEntry is a dated free-text note attached to a project.
type JournalEntry struct {
	ID        int64
	ProjectID int64
	EntryText string
	EntryDate time.Time
	EditedAt  *time.Time
	EditedBy  *string
}

// Activity is an append-only audit record for a single project mutation.
// ChangedFields holds the JSON-encoded field→{from,to} map, nil when the
// mutation carried no field-level diff.
type Activity struct {
	ID            int64
	ProjectID     int64
	ActivityType  string
	Details       string
	ChangedFields *string
	ActivityDate  time.Time
}

// ActivityExportRow is an activity joined with the names needed for the
// CSV export.
type ActivityExportRow struct {
	Activity
	ProjectName string
	UserName    *string
	GroupName   *string
}

// Group is a research group that users belong to.
type Group struct {
	ID          int64
	Name        string
	Description *string
}

// User is a person who can own projects.
type User struct {
	ID      int64
	Name    string
	Email   *string
	GroupID *int64
}
