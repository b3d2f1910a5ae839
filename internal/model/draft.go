package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyChecklist  = errors.New("checklist needs at least one item")
	ErrInvalidRepeat   = errors.New("unknown repeat policy")
	ErrInvalidNoteType = errors.New("unknown note type")
)

// TimeOfDay is a wall-clock hour and minute picked in a composer.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", raw)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeOfDayOf extracts the wall-clock time of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Draft holds in-progress composer values before they are committed into a
// Reminder.
type Draft struct {
	Title               string
	Time                TimeOfDay
	Repeat              Repeat
	CustomRepeatMinutes int
	NoteType            NoteType
	Notes               string
	TodoItems           []TodoItem
}

// DraftFrom seeds a draft for editing an existing reminder.
func DraftFrom(r Reminder) Draft {
	return Draft{
		Title:               r.Title,
		Time:                TimeOfDayOf(r.ReminderTime),
		Repeat:              r.Repeat,
		CustomRepeatMinutes: r.IntervalMinutes(),
		NoteType:            r.NoteType,
		Notes:               r.Notes,
		TodoItems:           append([]TodoItem(nil), r.TodoItems...),
	}
}

// Normalize trims the draft, fills defaults and clears the inactive note
// field. Checklist items without an id get one; blank items are dropped.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	if d.Repeat == "" {
		d.Repeat = RepeatOnce
	}
	if d.NoteType == "" {
		d.NoteType = NoteText
	}
	if d.Repeat != RepeatCustom {
		d.CustomRepeatMinutes = 0
	}

	switch d.NoteType {
	case NoteTodo:
		d.Notes = ""
		items := make([]TodoItem, 0, len(d.TodoItems))
		for _, item := range d.TodoItems {
			item.Text = strings.TrimSpace(item.Text)
			if item.Text == "" {
				continue
			}
			if item.ID == "" {
				item.ID = NewTodoID()
			}
			items = append(items, item)
		}
		d.TodoItems = items
	default:
		d.Notes = strings.TrimSpace(d.Notes)
		d.TodoItems = nil
	}
	return d
}

// Validate checks a normalized draft.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if !d.Repeat.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, d.Repeat)
	}
	if !d.NoteType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidNoteType, d.NoteType)
	}
	if d.NoteType == NoteTodo && len(d.TodoItems) == 0 {
		return ErrEmptyChecklist
	}
	return nil
}

// TodoItemsFromLines turns free text into checklist items, one per line.
func TodoItemsFromLines(text string) []TodoItem {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var items []TodoItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, TodoItem{ID: NewTodoID(), Text: line})
	}
	return items
}

// NewReminderID returns a fresh reminder id.
func NewReminderID() string {
	return uuid.NewString()
}

// NewTodoID returns a short checklist id; short enough to fit two ids in a
// chat callback payload.
func NewTodoID() string {
	return uuid.New().String()[:8]
}
