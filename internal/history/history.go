// Package history stores the lines typed at the prompt so they can be
// recalled across sessions. It never stores model responses.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type HistoryManager struct {
	db *gorm.DB
}

type HistoryEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Line  string
	Model string
}

func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	if err := os.MkdirAll(filepath.Dir(dbFilePath), 0755); err != nil {
		return nil, fmt.Errorf("error creating history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}

	if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
		return nil, fmt.Errorf("error auto-migrating history schema: %w", err)
	}

	return &HistoryManager{
		db: db,
	}, nil
}

// Record stores a line typed while model was active.
func (historyManager *HistoryManager) Record(line string, model string) (*HistoryEntry, error) {
	entry := HistoryEntry{
		Line:  line,
		Model: model,
	}

	result := historyManager.db.Create(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// Recent returns up to limit entries, oldest first.
func (historyManager *HistoryManager) Recent(limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	result := historyManager.db.Order("created_at desc, id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(entries)
	return entries, nil
}

// Lines returns the text of the most recent entries, oldest first.
func (historyManager *HistoryManager) Lines(limit int) ([]string, error) {
	entries, err := historyManager.Recent(limit)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.Line
	}
	return lines, nil
}

func (historyManager *HistoryManager) ResetHistory() error {
	result := historyManager.db.Exec("DELETE FROM history_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (historyManager *HistoryManager) Close() error {
	sqlDB, err := historyManager.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
