// Package testutil opens throwaway databases and stores for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/agrimarket/backend/internal/apps"
	"github.com/agrimarket/backend/internal/database"
	"github.com/agrimarket/backend/internal/storage"
	"gorm.io/gorm"
)

// DB opens a migrated SQLite database in the test's temp dir.
func DB(t *testing.T, modules ...apps.Module) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := database.MigrateShared(db); err != nil {
		t.Fatalf("migrate shared: %v", err)
	}
	for _, m := range modules {
		if err := database.MigrateModels(db, m.Models()); err != nil {
			t.Fatalf("migrate %s: %v", m.ID(), err)
		}
		if im, ok := m.(apps.IndexMigrator); ok {
			if err := im.MigrateIndexes(db); err != nil {
				t.Fatalf("migrate %s indexes: %v", m.ID(), err)
			}
		}
	}
	return db
}

// Store returns a local media store rooted in the test's temp dir.
func Store(t *testing.T) *storage.LocalStore {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}
