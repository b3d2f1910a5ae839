package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminders/internal/trigger"
)

type recordingDeliverer struct {
	mu   sync.Mutex
	seen []Notification
}

func (d *recordingDeliverer) Deliver(_ context.Context, n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, n)
	return nil
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

func TestSchedulerService_ScheduleAndCancelIdempotent(t *testing.T) {
	s := NewSchedulerService(time.UTC, true)
	ctx := context.Background()

	id, err := s.Schedule(ctx, Notification{
		ReminderID: "r1",
		Trigger:    trigger.Trigger{Kind: trigger.KindCalendar, At: time.Now().Add(time.Hour), Days: 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, s.Scheduled(id))

	assert.NoError(t, s.Cancel(ctx, id))
	assert.False(t, s.Scheduled(id))
	assert.NoError(t, s.Cancel(ctx, id))
	assert.NoError(t, s.Cancel(ctx, "never-existed"))
}

func TestSchedulerService_Disabled(t *testing.T) {
	s := NewSchedulerService(time.UTC, false)

	_, err := s.Schedule(context.Background(), Notification{ReminderID: "r1"})
	assert.ErrorIs(t, err, ErrNotificationsDisabled)
}

func TestSchedulerService_RestoreKeepsIDAndSkipsExpired(t *testing.T) {
	s := NewSchedulerService(time.UTC, true)
	ctx := context.Background()

	future := Notification{ReminderID: "r1", Trigger: trigger.Trigger{Kind: trigger.KindOnce, At: time.Now().Add(time.Hour)}}
	require.NoError(t, s.Restore(ctx, "persisted-id", future))
	assert.True(t, s.Scheduled("persisted-id"))

	// Restoring twice keeps a single entry.
	require.NoError(t, s.Restore(ctx, "persisted-id", future))
	assert.True(t, s.Scheduled("persisted-id"))
	require.NoError(t, s.Cancel(ctx, "persisted-id"))
	assert.False(t, s.Scheduled("persisted-id"))

	past := Notification{ReminderID: "r2", Trigger: trigger.Trigger{Kind: trigger.KindOnce, At: time.Now().Add(-time.Hour)}}
	require.NoError(t, s.Restore(ctx, "old-id", past))
	assert.False(t, s.Scheduled("old-id"))

	assert.Error(t, s.Restore(ctx, "", future))
}

func TestSchedulerService_RestoreUsesClock(t *testing.T) {
	clock := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSchedulerService(time.UTC, true, WithSchedulerClock(func() time.Time { return clock }))
	ctx := context.Background()

	// Both instants are in the real future; only the clock decides.
	expired := Notification{ReminderID: "r1", Trigger: trigger.Trigger{Kind: trigger.KindOnce, At: clock.Add(-time.Minute)}}
	require.NoError(t, s.Restore(ctx, "expired", expired))
	assert.False(t, s.Scheduled("expired"))

	upcoming := Notification{ReminderID: "r2", Trigger: trigger.Trigger{Kind: trigger.KindOnce, At: clock.Add(time.Minute)}}
	require.NoError(t, s.Restore(ctx, "upcoming", upcoming))
	assert.True(t, s.Scheduled("upcoming"))
}

func TestSchedulerService_OnceFiresAndDisarms(t *testing.T) {
	s := NewSchedulerService(time.UTC, true)
	d := &recordingDeliverer{}
	s.SetDeliverer(d)
	s.Start()
	defer s.Stop()

	id, err := s.Schedule(context.Background(), Notification{
		ReminderID: "r1",
		Title:      "now-ish",
		Trigger:    trigger.Trigger{Kind: trigger.KindOnce, At: time.Now().Add(1500 * time.Millisecond)},
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return d.count() == 1 }, 5*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool { return !s.Scheduled(id) }, 2*time.Second, 50*time.Millisecond)
	assert.Equal(t, "r1", d.seen[0].ReminderID)
}

func TestSchedulerService_NextRun(t *testing.T) {
	s := NewSchedulerService(time.UTC, true)
	at := time.Now().Add(2 * time.Hour).Truncate(time.Minute)

	id, err := s.Schedule(context.Background(), Notification{
		ReminderID: "r1",
		Trigger:    trigger.Trigger{Kind: trigger.KindOnce, At: at},
	})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return !s.NextRun(id).IsZero() }, 2*time.Second, 20*time.Millisecond)
	assert.True(t, s.NextRun(id).Equal(at))
	assert.True(t, s.NextRun("unknown").IsZero())
}

func TestSchedulerService_ScheduleDailyRejectsBadTime(t *testing.T) {
	s := NewSchedulerService(time.UTC, true)

	_, err := s.ScheduleDaily("25:00", func() {})
	assert.Error(t, err)
	_, err = s.ScheduleDaily("08:15", func() {})
	assert.NoError(t, err)
	_, err = s.ScheduleInterval(0, func() {})
	assert.Error(t, err)
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("07:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 7 * * *", spec)
}
