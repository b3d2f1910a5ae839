package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"reminders/internal/model"
	"reminders/internal/trigger"
)

// ErrNotLoaded is returned by Create and Update before Load has completed.
var ErrNotLoaded = errors.New("reminders are still loading")

// Persistence loads and saves the whole reminder collection.
type Persistence interface {
	Load(ctx context.Context) ([]model.Reminder, error)
	Save(ctx context.Context, reminders []model.Reminder) error
}

// NotificationScheduler arms and cancels device-level alerts.
type NotificationScheduler interface {
	Schedule(ctx context.Context, n Notification) (string, error)
	Restore(ctx context.Context, id string, n Notification) error
	Cancel(ctx context.Context, id string) error
}

// nextRunner is implemented by schedulers that can report when a
// notification fires next.
type nextRunner interface {
	NextRun(id string) time.Time
}

// Saved is the result of a create or update. IntervalRaised is set when a
// custom interval was below the minimum and got raised.
type Saved struct {
	Reminder       model.Reminder
	IntervalRaised bool
}

// StoreOption customises a ReminderStore.
type StoreOption func(*ReminderStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *ReminderStore) { s.now = now }
}

// ReminderStore is the authoritative in-process reminder collection. Every
// mutation goes through it and, once Load has completed, is written through
// to persistence.
type ReminderStore struct {
	persistence Persistence
	scheduler   NotificationScheduler
	now         func() time.Time

	mu          sync.Mutex
	reminders   []model.Reminder
	loaded      bool
	pendingOpen string
	onOpen      func(model.Reminder)
}

func NewReminderStore(persistence Persistence, scheduler NotificationScheduler, opts ...StoreOption) *ReminderStore {
	s := &ReminderStore{
		persistence: persistence,
		scheduler:   scheduler,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection, re-arms stored notifications and
// resolves a pending open request. Load failures start an empty collection.
func (s *ReminderStore) Load(ctx context.Context) error {
	reminders, err := s.persistence.Load(ctx)
	if err != nil {
		log.Printf("load reminders, starting empty: %v", err)
		reminders = nil
	}

	s.mu.Lock()
	s.reminders = reminders
	s.loaded = true
	now := s.now()
	for _, r := range s.reminders {
		if r.NotificationID == "" {
			continue
		}
		if err := s.scheduler.Restore(ctx, r.NotificationID, notificationFor(r, now)); err != nil && !errors.Is(err, ErrNotificationsDisabled) {
			log.Printf("restore notification %s for reminder %s: %v", r.NotificationID, r.ID, err)
		}
	}
	opened, ok := s.takePendingLocked()
	handler := s.onOpen
	count := len(s.reminders)
	s.mu.Unlock()

	log.Printf("[info] reminders loaded count=%d", count)
	if ok && handler != nil {
		handler(opened)
	}
	return nil
}

// Loaded reports whether the initial load has completed.
func (s *ReminderStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// List returns copies of all reminders in insertion order.
func (s *ReminderStore) List() []model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, r.Clone())
	}
	return out
}

func (s *ReminderStore) Get(id string) (model.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Reminder{}, false
	}
	return s.reminders[i].Clone(), true
}

// NextAlert returns when the reminder's notification fires next, if the
// scheduler knows.
func (s *ReminderStore) NextAlert(id string) (time.Time, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	var nid string
	if i >= 0 {
		nid = s.reminders[i].NotificationID
	}
	s.mu.Unlock()

	nr, ok := s.scheduler.(nextRunner)
	if nid == "" || !ok {
		return time.Time{}, false
	}
	next := nr.NextRun(nid)
	return next, !next.IsZero()
}

// Create validates the draft, schedules its notification and appends it.
// Nothing is scheduled before Load.
func (s *ReminderStore) Create(ctx context.Context, draft model.Draft) (Saved, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return Saved{}, err
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return Saved{}, ErrNotLoaded
	}
	r, raised := s.build(draft, model.NewReminderID())
	r.NotificationID = s.schedule(ctx, r)
	s.reminders = append(s.reminders, r)
	s.persistLocked(ctx)
	opened, ok := s.takePendingLocked()
	handler := s.onOpen
	s.mu.Unlock()

	log.Printf("[info] reminder created id=%s repeat=%s note=%s", r.ID, r.Repeat, r.NoteType)
	if ok && handler != nil {
		handler(opened)
	}
	return Saved{Reminder: r.Clone(), IntervalRaised: raised}, nil
}

// Update replaces the reminder with the given id. An unknown id is a silent
// no-op reported through ok.
func (s *ReminderStore) Update(ctx context.Context, id string, draft model.Draft) (saved Saved, ok bool, err error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return Saved{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Saved{}, false, ErrNotLoaded
	}
	i := s.indexLocked(id)
	if i < 0 {
		return Saved{}, false, nil
	}
	prev := s.reminders[i]
	if prev.NotificationID != "" {
		s.cancel(ctx, prev.NotificationID)
	}

	r, raised := s.build(draft, prev.ID)
	r.Completed = prev.Completed
	r.NotificationID = s.schedule(ctx, r)
	s.reminders[i] = r
	s.persistLocked(ctx)

	log.Printf("[info] reminder updated id=%s repeat=%s", r.ID, r.Repeat)
	return Saved{Reminder: r.Clone(), IntervalRaised: raised}, true, nil
}

// ToggleCompleted flips the completion flag. Notifications are untouched.
func (s *ReminderStore) ToggleCompleted(ctx context.Context, id string) (model.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Reminder{}, false
	}
	s.reminders[i].Completed = !s.reminders[i].Completed
	s.persistLocked(ctx)
	return s.reminders[i].Clone(), true
}

// ToggleTodoItem flips one checklist item.
func (s *ReminderStore) ToggleTodoItem(ctx context.Context, id, todoID string) (model.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Reminder{}, false
	}
	items := s.reminders[i].TodoItems
	for j := range items {
		if items[j].ID == todoID {
			items[j].Done = !items[j].Done
			s.persistLocked(ctx)
			return s.reminders[i].Clone(), true
		}
	}
	return model.Reminder{}, false
}

// Remove cancels the reminder's notification and drops it.
func (s *ReminderStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	if nid := s.reminders[i].NotificationID; nid != "" {
		s.cancel(ctx, nid)
	}
	s.reminders = append(s.reminders[:i:i], s.reminders[i+1:]...)
	s.persistLocked(ctx)

	log.Printf("[info] reminder deleted id=%s", id)
	return true
}

// SetOpenHandler registers the callback that shows a reminder opened from a
// notification.
func (s *ReminderStore) SetOpenHandler(fn func(model.Reminder)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = fn
}

// RequestOpen asks the front-end to open a reminder. If the collection is
// loaded and holds the reminder the handler runs right away; otherwise the
// request is kept, replacing any older one, until the reminder is present.
// It reports whether the request was resolved immediately.
func (s *ReminderStore) RequestOpen(id string) bool {
	s.mu.Lock()
	s.pendingOpen = id
	opened, ok := s.takePendingLocked()
	handler := s.onOpen
	s.mu.Unlock()

	if ok && handler != nil {
		handler(opened)
	}
	return ok
}

// PendingOpen returns the id of an unresolved open request.
func (s *ReminderStore) PendingOpen() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingOpen, s.pendingOpen != ""
}

func (s *ReminderStore) takePendingLocked() (model.Reminder, bool) {
	if s.pendingOpen == "" || !s.loaded {
		return model.Reminder{}, false
	}
	i := s.indexLocked(s.pendingOpen)
	if i < 0 {
		return model.Reminder{}, false
	}
	s.pendingOpen = ""
	return s.reminders[i].Clone(), true
}

func (s *ReminderStore) indexLocked(id string) int {
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ReminderStore) build(d model.Draft, id string) (model.Reminder, bool) {
	now := s.now()
	at := trigger.NextInstant(d.Time, now)
	r := model.Reminder{
		ID:           id,
		Title:        d.Title,
		ReminderTime: at,
		Repeat:       d.Repeat,
		NoteType:     d.NoteType,
		Notes:        d.Notes,
		TodoItems:    append([]model.TodoItem(nil), d.TodoItems...),
	}
	var raised bool
	if d.Repeat == model.RepeatCustom {
		var minutes int
		minutes, raised = trigger.ClampCustomMinutes(d.CustomRepeatMinutes)
		r.CustomRepeatMinutes = &minutes
	}
	if raised {
		log.Printf("[info] custom interval %dm raised to %dm", d.CustomRepeatMinutes, model.MinCustomRepeatMinutes)
	}
	return r, raised
}

func (s *ReminderStore) schedule(ctx context.Context, r model.Reminder) string {
	id, err := s.scheduler.Schedule(ctx, notificationFor(r, s.now()))
	if err != nil {
		if !errors.Is(err, ErrNotificationsDisabled) {
			log.Printf("schedule notification for %s: %v", r.ID, err)
		}
		return ""
	}
	return id
}

func (s *ReminderStore) cancel(ctx context.Context, notificationID string) {
	if err := s.scheduler.Cancel(ctx, notificationID); err != nil {
		log.Printf("cancel notification %s: %v", notificationID, err)
	}
}

func (s *ReminderStore) persistLocked(ctx context.Context) {
	if !s.loaded {
		return
	}
	snapshot := make([]model.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		snapshot = append(snapshot, r.Clone())
	}
	if err := s.persistence.Save(ctx, snapshot); err != nil {
		log.Printf("save reminders: %v", err)
	}
}

func notificationFor(r model.Reminder, now time.Time) Notification {
	return Notification{
		ReminderID: r.ID,
		Title:      r.Title,
		Body:       NotificationBody(r),
		Trigger:    trigger.ForReminder(r, now),
	}
}

// NotificationBody renders the text shown under a notification title.
func NotificationBody(r model.Reminder) string {
	if r.NoteType == model.NoteTodo {
		var sb strings.Builder
		for _, item := range r.TodoItems {
			if item.Done {
				continue
			}
			sb.WriteString(fmt.Sprintf("• %s\n", item.Text))
		}
		if body := strings.TrimSpace(sb.String()); body != "" {
			return body
		}
	} else if notes := strings.TrimSpace(r.Notes); notes != "" {
		return notes
	}
	return "⏰ " + r.ReminderTime.Format("15:04")
}
