// Package testutil provides shared test helpers for setting up caches and
// export directories.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/muninn/internal/cache"
	"github.com/starford/muninn/internal/export"
)

// TestCache creates a temporary SQLite meeting cache that is automatically
// cleaned up.
func TestCache(t *testing.T) *cache.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "muninn-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := cache.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestExportDir creates an export directory under a test temp dir.
func TestExportDir(t *testing.T) *export.Dir {
	t.Helper()
	d, err := export.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return d
}
