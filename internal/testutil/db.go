// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"therapy-admin-server/internal/models"
)

// NewDB returns a migrated SQLite database living in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := models.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateProfile inserts a profile with the given role and status.
func CreateProfile(t *testing.T, db *gorm.DB, name string, role models.Role, status models.ProfileStatus) *models.Profile {
	t.Helper()
	p := &models.Profile{FullName: name, Email: name + "@example.com", Role: role, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}
