// Package dbtest provides migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"signage/internal/db"
)

// New opens a private in-memory SQLite database with the full schema.
// It is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}
