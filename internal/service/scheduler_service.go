package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"reminders/internal/model"
	"reminders/internal/trigger"
)

// ErrNotificationsDisabled is returned by Schedule when delivery is switched
// off; reminders are still stored, just without an alarm.
var ErrNotificationsDisabled = errors.New("notifications are disabled")

// Notification is one scheduled alert. ReminderID travels with every
// delivery so the front-end can route back to the reminder.
type Notification struct {
	ReminderID string
	Title      string
	Body       string
	Trigger    trigger.Trigger
}

// Deliverer shows a fired notification to the user.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// DeliverFunc adapts a function to Deliverer.
type DeliverFunc func(ctx context.Context, n Notification) error

func (f DeliverFunc) Deliver(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogDeliverer writes fired notifications to the std logger.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, n Notification) error {
	log.Printf("[info] reminder due id=%s title=%q", n.ReminderID, n.Title)
	return nil
}

// SchedulerService wraps cron-based jobs: reminder notifications keyed by an
// opaque id, plus plain periodic jobs.
type SchedulerService struct {
	cron    *cron.Cron
	enabled bool
	now     func() time.Time

	mu        sync.Mutex
	deliverer Deliverer
	entries   map[string]cron.EntryID
}

// SchedulerOption customises a SchedulerService.
type SchedulerOption func(*SchedulerService)

// WithSchedulerClock sets the time source Restore checks expiry against.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *SchedulerService) { s.now = now }
}

func NewSchedulerService(loc *time.Location, enabled bool, opts ...SchedulerOption) *SchedulerService {
	s := &SchedulerService{
		cron:      cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		enabled:   enabled,
		now:       time.Now,
		deliverer: LogDeliverer{},
		entries:   make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDeliverer replaces the sink fired notifications are sent to.
func (s *SchedulerService) SetDeliverer(d Deliverer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		d = LogDeliverer{}
	}
	s.deliverer = d
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Schedule registers n and returns its notification id.
func (s *SchedulerService) Schedule(ctx context.Context, n Notification) (string, error) {
	id := uuid.NewString()
	if err := s.register(id, n); err != nil {
		return "", err
	}
	return id, nil
}

// Restore re-arms a notification persisted under id, e.g. after a restart.
// One-shot triggers already in the past are skipped.
func (s *SchedulerService) Restore(ctx context.Context, id string, n Notification) error {
	if id == "" {
		return fmt.Errorf("restore notification: empty id")
	}
	if n.Trigger.Expired(s.now()) {
		return nil
	}
	if err := s.Cancel(ctx, id); err != nil {
		return err
	}
	return s.register(id, n)
}

// Cancel removes a notification. Unknown or already cancelled ids are not an
// error.
func (s *SchedulerService) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	entryID, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if ok {
		s.cron.Remove(entryID)
	}
	return nil
}

// Scheduled reports whether id is still armed.
func (s *SchedulerService) Scheduled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// NextRun returns the next fire time of id, or the zero time.
func (s *SchedulerService) NextRun(id string) time.Time {
	s.mu.Lock()
	entryID, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}

func (s *SchedulerService) register(id string, n Notification) error {
	if !s.enabled {
		return ErrNotificationsDisabled
	}

	entryID := s.cron.Schedule(n.Trigger, cron.FuncJob(func() {
		s.fire(id, n)
	}))

	s.mu.Lock()
	s.entries[id] = entryID
	s.mu.Unlock()

	log.Printf("[info] notification scheduled id=%s reminder=%s spec=%q", id, n.ReminderID, n.Trigger.Spec())
	return nil
}

func (s *SchedulerService) fire(id string, n Notification) {
	s.mu.Lock()
	deliverer := s.deliverer
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := deliverer.Deliver(ctx, n); err != nil {
		log.Printf("deliver notification %s: %v", id, err)
	}

	if n.Trigger.Kind == trigger.KindOnce {
		s.mu.Lock()
		entryID, ok := s.entries[id]
		delete(s.entries, id)
		s.mu.Unlock()
		if ok {
			s.cron.Remove(entryID)
		}
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	// Convert to cron spec: every N seconds.
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

func buildDailySpec(timeStr string) (string, error) {
	tod, err := model.ParseTimeOfDay(timeStr)
	if err != nil {
		return "", err
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", tod.Minute, tod.Hour), nil
}
