package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lherron/mdnotes/internal/db"
)

// Note is a row inserted into a fixture source database.
type Note struct {
	ID     int64
	UserID int64
	Text   string
}

// TempSourceDB creates a temporary SQLite source database holding notes
// and returns its path. The database is closed before returning so the
// code under test opens it the way the migrator does.
func TempSourceDB(t *testing.T, notes ...Note) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "source.db")

	database, err := db.Create(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	defer database.Close()

	for _, n := range notes {
		_, err := database.Exec("INSERT INTO notes_note (id, user_id, text) VALUES (?, ?, ?)", n.ID, n.UserID, n.Text)
		if err != nil {
			t.Fatalf("Failed to insert note %d: %v", n.ID, err)
		}
	}

	return dbPath
}

// WriteFile writes content to a file in a temporary directory
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertEqual asserts that two values are equal
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
}

// AssertStringContains asserts that a string contains a substring
func AssertStringContains(t *testing.T, str, substr string) {
	t.Helper()
	if !strings.Contains(str, substr) {
		t.Fatalf("Expected string to contain %q, got %q", substr, str)
	}
}
