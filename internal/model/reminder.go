package model

import "time"

// Repeat controls how often a reminder fires.
type Repeat string

const (
	RepeatOnce   Repeat = "once"
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
	RepeatCustom Repeat = "custom"
)

// Valid reports whether r is one of the known repeat policies.
func (r Repeat) Valid() bool {
	switch r {
	case RepeatOnce, RepeatDaily, RepeatWeekly, RepeatCustom:
		return true
	}
	return false
}

// NoteType selects which of Notes / TodoItems is active on a reminder.
type NoteType string

const (
	NoteText NoteType = "text"
	NoteTodo NoteType = "todo"
)

func (n NoteType) Valid() bool {
	return n == NoteText || n == NoteTodo
}

// MinCustomRepeatMinutes is the shortest interval a custom repeat may use.
const MinCustomRepeatMinutes = 30

// CustomRepeatPresets are the intervals offered by the composers.
var CustomRepeatPresets = []int{30, 60, 120, 180, 360, 720}

// TodoItem is a single checklist line owned by a reminder.
type TodoItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Reminder is the persisted unit: a title, a schedule, optional notes or
// checklist and completion state.
type Reminder struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	ReminderTime        time.Time  `json:"reminderTime"`
	Repeat              Repeat     `json:"repeat"`
	CustomRepeatMinutes *int       `json:"customRepeatMinutes,omitempty"`
	NoteType            NoteType   `json:"noteType"`
	Notes               string     `json:"notes,omitempty"`
	TodoItems           []TodoItem `json:"todoItems,omitempty"`
	NotificationID      string     `json:"notificationId,omitempty"`
	Completed           bool       `json:"completed"`
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Reminder) Clone() Reminder {
	out := r
	if r.CustomRepeatMinutes != nil {
		m := *r.CustomRepeatMinutes
		out.CustomRepeatMinutes = &m
	}
	if r.TodoItems != nil {
		out.TodoItems = append([]TodoItem(nil), r.TodoItems...)
	}
	return out
}

// IntervalMinutes returns the custom interval, or 0 when the reminder does
// not use a custom repeat.
func (r Reminder) IntervalMinutes() int {
	if r.Repeat != RepeatCustom || r.CustomRepeatMinutes == nil {
		return 0
	}
	return *r.CustomRepeatMinutes
}

// OpenTodoCount counts checklist items that are not done yet.
func (r Reminder) OpenTodoCount() int {
	n := 0
	for _, item := range r.TodoItems {
		if !item.Done {
			n++
		}
	}
	return n
}
