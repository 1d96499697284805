package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{
		"groups", "users", "projects", "project_users",
		"journal_entries", "project_activities", "project_resources",
		"schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	// Error should mention needing migration
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Journal entries require an existing project
	_, err := db.Exec(`
		INSERT INTO journal_entries (project_id, entry_text, entry_date)
		VALUES (9999, 'orphan entry', datetime('now'))
	`)

	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_GroupNameUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Insert first group
	_, err := db.Exec("INSERT INTO groups (name) VALUES ('Imaging Core')")
	if err != nil {
		t.Fatalf("Failed to insert first group: %v", err)
	}

	// Duplicate name should fail due to UNIQUE constraint
	_, err = db.Exec("INSERT INTO groups (name) VALUES ('Imaging Core')")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate group name, but insert succeeded")
	}
}

func TestSchema_ProjectUserAssignmentCascades(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO projects (name, status) VALUES ('Mito Count', 'Preparing')"); err != nil {
		t.Fatalf("Failed to insert project: %v", err)
	}
	if _, err := db.Exec("INSERT INTO users (name) VALUES ('Dana')"); err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	if _, err := db.Exec("INSERT INTO project_users (project_id, user_id) VALUES (1, 1)"); err != nil {
		t.Fatalf("Failed to insert assignment: %v", err)
	}

	// Deleting the project should remove its assignments
	if _, err := db.Exec("DELETE FROM projects WHERE id = 1"); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM project_users").Scan(&count); err != nil {
		t.Fatalf("Failed to count assignments: %v", err)
	}
	if count != 0 {
		t.Errorf("project_users count after project delete = %d, want 0", count)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pooled connection to ":memory:" gets its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
