package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"reminders/internal/model"
)

// DefaultReminderKey is the storage key holding the reminder collection.
const DefaultReminderKey = "reminders"

// KeyValueStore is the storage the reminder repository writes through.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ReminderRepository persists the whole reminder collection as one JSON
// array under a single key.
type ReminderRepository struct {
	kv  KeyValueStore
	key string
}

func NewReminderRepository(kv KeyValueStore, key string) *ReminderRepository {
	if key == "" {
		key = DefaultReminderKey
	}
	return &ReminderRepository{kv: kv, key: key}
}

// Load returns the stored collection. A missing or unreadable blob yields an
// empty collection; only storage failures are returned as errors.
func (r *ReminderRepository) Load(ctx context.Context) ([]model.Reminder, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return []model.Reminder{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}

	reminders, err := DecodeReminders([]byte(raw))
	if err != nil {
		log.Printf("decode stored reminders, starting empty: %v", err)
		return []model.Reminder{}, nil
	}
	return reminders, nil
}

// Save replaces the stored collection. An empty collection drops the row;
// Load reads a missing row as empty.
func (r *ReminderRepository) Save(ctx context.Context, reminders []model.Reminder) error {
	if len(reminders) == 0 {
		if err := r.kv.Delete(ctx, r.key); err != nil {
			return fmt.Errorf("save reminders: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	if err := r.kv.Put(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("save reminders: %w", err)
	}
	return nil
}

// storedReminder mirrors model.Reminder with every field optional so older
// or partial records can be repaired.
type storedReminder struct {
	ID                  *string          `json:"id"`
	Title               string           `json:"title"`
	ReminderTime        time.Time        `json:"reminderTime"`
	Repeat              *model.Repeat    `json:"repeat"`
	CustomRepeatMinutes *int             `json:"customRepeatMinutes"`
	NoteType            *model.NoteType  `json:"noteType"`
	Notes               string           `json:"notes"`
	TodoItems           []model.TodoItem `json:"todoItems"`
	NotificationID      string           `json:"notificationId"`
	Completed           bool             `json:"completed"`
}

// DecodeReminders parses a stored blob and repairs legacy records.
func DecodeReminders(data []byte) ([]model.Reminder, error) {
	var stored []storedReminder
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse reminders: %w", err)
	}
	reminders := make([]model.Reminder, 0, len(stored))
	for _, s := range stored {
		reminders = append(reminders, repair(s))
	}
	return reminders, nil
}

func repair(s storedReminder) model.Reminder {
	r := model.Reminder{
		Title:          s.Title,
		ReminderTime:   s.ReminderTime,
		Repeat:         model.RepeatOnce,
		NoteType:       model.NoteText,
		Notes:          s.Notes,
		TodoItems:      s.TodoItems,
		NotificationID: s.NotificationID,
		Completed:      s.Completed,
	}
	if s.ID != nil && *s.ID != "" {
		r.ID = *s.ID
	} else {
		r.ID = model.NewReminderID()
	}
	if s.Repeat != nil && s.Repeat.Valid() {
		r.Repeat = *s.Repeat
	}
	if s.NoteType != nil && s.NoteType.Valid() {
		r.NoteType = *s.NoteType
	}

	if r.Repeat == model.RepeatCustom {
		minutes := 0
		if s.CustomRepeatMinutes != nil {
			minutes = *s.CustomRepeatMinutes
		}
		if minutes < model.MinCustomRepeatMinutes {
			minutes = model.MinCustomRepeatMinutes
		}
		r.CustomRepeatMinutes = &minutes
	}

	switch r.NoteType {
	case model.NoteTodo:
		if len(r.TodoItems) == 0 && r.Notes != "" {
			r.TodoItems = model.TodoItemsFromLines(r.Notes)
		}
		for i := range r.TodoItems {
			if r.TodoItems[i].ID == "" {
				r.TodoItems[i].ID = model.NewTodoID()
			}
		}
		r.Notes = ""
	default:
		r.TodoItems = nil
	}
	return r
}
