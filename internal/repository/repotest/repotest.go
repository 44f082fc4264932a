// Package repotest opens throwaway databases for tests.
package repotest

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-tracker/internal/config"
	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

// OpenMemory returns a migrated in-memory SQLite database private to t.
func OpenMemory(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}
	db, err := repository.NewDB(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedStatus inserts a status and returns it.
func SeedStatus(t testing.TB, db *gorm.DB, name string) model.Status {
	t.Helper()
	status := model.Status{Name: name}
	if err := db.Create(&status).Error; err != nil {
		t.Fatalf("seed status: %v", err)
	}
	return status
}

// SeedUser inserts an active user and returns it.
func SeedUser(t testing.TB, db *gorm.DB, username string) model.User {
	t.Helper()
	user := model.User{Username: username, Password: "secret", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// CountLogs returns the number of audit rows for the given task and action.
func CountLogs(t testing.TB, db *gorm.DB, taskID uint, action model.LogAction) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.Log{}).
		Where("entity = ? AND entity_id = ? AND action = ?", model.EntityTask, taskID, action).
		Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}

// TaskLogs returns the audit rows for the given task in insertion order.
func TaskLogs(t testing.TB, db *gorm.DB, taskID uint) []model.Log {
	t.Helper()
	var entries []model.Log
	if err := db.Where("entity = ? AND entity_id = ?", model.EntityTask, taskID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		t.Fatalf("list logs: %v", err)
	}
	return entries
}
