package database

import (
	"path/filepath"
	"testing"
)

// NewTestDB creates a file-backed database in a temporary directory and
// closes it when the test ends. Exported so other packages can use it.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"), true)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}
