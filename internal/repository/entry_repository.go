package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reminders/internal/model"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("entry not found")

// EntryRepository is a key/value store over the entries table.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Get(ctx context.Context, key string) (string, error) {
	var entry model.Entry
	err := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	switch {
	case err == nil:
		return entry.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("find entry: %w", err)
	}
}

// Put creates or replaces the value stored under key.
func (r *EntryRepository) Put(ctx context.Context, key, value string) error {
	entry := model.Entry{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (r *EntryRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&model.Entry{}).Error; err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}
