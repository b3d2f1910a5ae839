package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reminders/internal/model"
)

const defaultDBFile = "reminders.db"

// NewDB opens the reminders SQLite file, creating its directory, and
// migrates the entries table.
func NewDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = defaultDBFile
	}
	if dir, ok := sqliteDir(path); ok {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir %q: %w", dir, err)
		}
	}

	// log.Writer, not stdout: the mcp and tui modes own stdout.
	db, err := gorm.Open(sqlite.Open(withBusyTimeout(path)), &gorm.Config{
		Logger: logger.New(log.New(log.Writer(), "[db] ", log.LstdFlags), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}

	// One writer at a time; the whole collection is a single row.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&model.Entry{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

// sqliteDir returns the directory that must exist for path, or false for
// in-memory databases and bare file names.
func sqliteDir(path string) (string, bool) {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return "", false
	}
	file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	dir := filepath.Dir(file)
	if dir == "." || dir == "" {
		return "", false
	}
	return dir, true
}

func withBusyTimeout(path string) string {
	if strings.Contains(path, "_busy_timeout") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000"
}
