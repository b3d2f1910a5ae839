package model

import "time"

// Entry is one key/value row of the local store.
type Entry struct {
	Key       string `gorm:"primaryKey;column:entry_key"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
