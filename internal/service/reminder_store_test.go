package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminders/internal/model"
	"reminders/internal/trigger"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type memoryPersistence struct {
	stored  []model.Reminder
	saves   int
	loadErr error
	saveErr error
}

func (p *memoryPersistence) Load(context.Context) ([]model.Reminder, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	out := make([]model.Reminder, 0, len(p.stored))
	for _, r := range p.stored {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (p *memoryPersistence) Save(_ context.Context, reminders []model.Reminder) error {
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.stored = reminders
	return nil
}

type fakeScheduler struct {
	next        int
	live        map[string]Notification
	scheduled   []Notification
	cancelled   map[string]int
	restored    []string
	scheduleErr error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{live: map[string]Notification{}, cancelled: map[string]int{}}
}

func (f *fakeScheduler) Schedule(_ context.Context, n Notification) (string, error) {
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.next++
	id := fmt.Sprintf("n%d", f.next)
	f.live[id] = n
	f.scheduled = append(f.scheduled, n)
	return id, nil
}

func (f *fakeScheduler) Restore(_ context.Context, id string, n Notification) error {
	f.live[id] = n
	f.restored = append(f.restored, id)
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.cancelled[id]++
	delete(f.live, id)
	return nil
}

func (f *fakeScheduler) liveFor(reminderID string) int {
	n := 0
	for _, notification := range f.live {
		if notification.ReminderID == reminderID {
			n++
		}
	}
	return n
}

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newStoreForTests(t *testing.T) (*ReminderStore, *memoryPersistence, *fakeScheduler) {
	t.Helper()
	p := &memoryPersistence{}
	sched := newFakeScheduler()
	store := NewReminderStore(p, sched, WithClock(func() time.Time { return testNow }))
	require.NoError(t, store.Load(context.Background()))
	return store, p, sched
}

func textDraft(title string) model.Draft {
	return model.Draft{Title: title, Time: model.TimeOfDay{Hour: 18, Minute: 30}, Repeat: model.RepeatOnce}
}

func TestReminderStore_CreateComputesTriggerAndSchedules(t *testing.T) {
	store, p, sched := newStoreForTests(t)
	ctx := context.Background()

	saved, err := store.Create(ctx, textDraft("water plants"))
	require.NoError(t, err)
	r := saved.Reminder

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC), r.ReminderTime)
	assert.Equal(t, "n1", r.NotificationID)
	require.Len(t, sched.scheduled, 1)
	assert.Equal(t, r.ID, sched.scheduled[0].ReminderID)
	assert.Equal(t, trigger.KindOnce, sched.scheduled[0].Trigger.Kind)

	assert.Equal(t, 1, p.saves)
	assert.Equal(t, []model.Reminder{r}, p.stored)
}

func TestReminderStore_CreateEarlierTimeRollsToTomorrow(t *testing.T) {
	store, _, _ := newStoreForTests(t)

	d := textDraft("early")
	d.Time = model.TimeOfDay{Hour: 8, Minute: 0}
	saved, err := store.Create(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC), saved.Reminder.ReminderTime)
}

func TestReminderStore_CreateRejectsEmptyChecklist(t *testing.T) {
	store, p, sched := newStoreForTests(t)
	ctx := context.Background()
	_, err := store.Create(ctx, textDraft("keep"))
	require.NoError(t, err)
	before := store.List()

	d := textDraft("groceries")
	d.NoteType = model.NoteTodo
	d.TodoItems = []model.TodoItem{{Text: "  "}}
	_, err = store.Create(ctx, d)

	assert.ErrorIs(t, err, model.ErrEmptyChecklist)
	assert.Equal(t, before, store.List())
	assert.Equal(t, 1, p.saves)
	assert.Len(t, sched.scheduled, 1)
}

func TestReminderStore_CreateRejectsEmptyTitle(t *testing.T) {
	store, p, _ := newStoreForTests(t)

	_, err := store.Create(context.Background(), textDraft("   "))
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
	assert.Empty(t, store.List())
	assert.Zero(t, p.saves)
}

func TestReminderStore_CustomIntervalClamped(t *testing.T) {
	store, p, sched := newStoreForTests(t)

	for _, minutes := range []int{0, 10, 29, 30, 45, 5000} {
		d := textDraft(fmt.Sprintf("every %d", minutes))
		d.Repeat = model.RepeatCustom
		d.CustomRepeatMinutes = minutes
		saved, err := store.Create(context.Background(), d)
		require.NoError(t, err)

		require.NotNil(t, saved.Reminder.CustomRepeatMinutes)
		assert.GreaterOrEqual(t, *saved.Reminder.CustomRepeatMinutes, 30)
		assert.Equal(t, minutes < 30, saved.IntervalRaised)
	}
	for _, r := range p.stored {
		assert.GreaterOrEqual(t, *r.CustomRepeatMinutes, 30)
	}
	last := sched.scheduled[len(sched.scheduled)-1].Trigger
	assert.Equal(t, trigger.KindInterval, last.Kind)
	assert.Equal(t, 5000*time.Minute, last.Every)
	assert.Equal(t, testNow, last.At)
}

func TestReminderStore_UpdateReplacesNotificationExactlyOnce(t *testing.T) {
	store, p, sched := newStoreForTests(t)
	ctx := context.Background()

	saved, err := store.Create(ctx, textDraft("stretch"))
	require.NoError(t, err)
	_, ok := store.ToggleCompleted(ctx, saved.Reminder.ID)
	require.True(t, ok)
	oldID := saved.Reminder.NotificationID

	d := model.DraftFrom(saved.Reminder)
	d.Title = "stretch more"
	d.Repeat = model.RepeatDaily
	updated, ok, err := store.Update(ctx, saved.Reminder.ID, d)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 1, sched.cancelled[oldID])
	assert.NotEqual(t, oldID, updated.Reminder.NotificationID)
	assert.Equal(t, 1, sched.liveFor(saved.Reminder.ID))
	assert.Equal(t, saved.Reminder.ID, updated.Reminder.ID)
	assert.Equal(t, "stretch more", updated.Reminder.Title)
	assert.True(t, updated.Reminder.Completed)
	assert.Equal(t, updated.Reminder, p.stored[0])
}

func TestReminderStore_UpdatePreservesOrder(t *testing.T) {
	store, _, _ := newStoreForTests(t)
	ctx := context.Background()
	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		saved, err := store.Create(ctx, textDraft(title))
		require.NoError(t, err)
		ids = append(ids, saved.Reminder.ID)
	}

	_, ok, err := store.Update(ctx, ids[1], textDraft("b2"))
	require.NoError(t, err)
	require.True(t, ok)

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b2", "c"}, []string{list[0].Title, list[1].Title, list[2].Title})
}

func TestReminderStore_UpdateUnknownIsNoop(t *testing.T) {
	store, p, sched := newStoreForTests(t)

	_, ok, err := store.Update(context.Background(), "missing", textDraft("x"))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, p.saves)
	assert.Empty(t, sched.scheduled)
}

func TestReminderStore_RemoveCancelsOnce(t *testing.T) {
	store, p, sched := newStoreForTests(t)
	ctx := context.Background()
	saved, err := store.Create(ctx, textDraft("bin day"))
	require.NoError(t, err)

	assert.True(t, store.Remove(ctx, saved.Reminder.ID))
	assert.False(t, store.Remove(ctx, saved.Reminder.ID))

	assert.Equal(t, 1, sched.cancelled[saved.Reminder.NotificationID])
	assert.Empty(t, store.List())
	assert.Empty(t, p.stored)

	reloaded := NewReminderStore(p, newFakeScheduler())
	require.NoError(t, reloaded.Load(ctx))
	assert.Empty(t, reloaded.List())
}

func TestReminderStore_ToggleTodoItem(t *testing.T) {
	store, p, sched := newStoreForTests(t)
	ctx := context.Background()
	d := textDraft("errands")
	d.NoteType = model.NoteTodo
	d.TodoItems = model.TodoItemsFromLines("milk\nbread")
	saved, err := store.Create(ctx, d)
	require.NoError(t, err)
	savesBefore := p.saves

	todoID := saved.Reminder.TodoItems[1].ID
	r, ok := store.ToggleTodoItem(ctx, saved.Reminder.ID, todoID)
	require.True(t, ok)
	assert.False(t, r.TodoItems[0].Done)
	assert.True(t, r.TodoItems[1].Done)
	assert.Equal(t, savesBefore+1, p.saves)
	assert.Len(t, sched.scheduled, 1)

	_, ok = store.ToggleTodoItem(ctx, saved.Reminder.ID, "nope")
	assert.False(t, ok)
	_, ok = store.ToggleCompleted(ctx, "nope")
	assert.False(t, ok)
}

func TestReminderStore_ListReturnsCopies(t *testing.T) {
	store, _, _ := newStoreForTests(t)
	d := textDraft("copy")
	d.NoteType = model.NoteTodo
	d.TodoItems = model.TodoItemsFromLines("one")
	_, err := store.Create(context.Background(), d)
	require.NoError(t, err)

	list := store.List()
	list[0].TodoItems[0].Done = true
	list[0].Title = "mutated"
	assert.False(t, store.List()[0].TodoItems[0].Done)
	assert.Equal(t, "copy", store.List()[0].Title)
}

func TestReminderStore_NoWritesBeforeLoad(t *testing.T) {
	p := &memoryPersistence{stored: []model.Reminder{{ID: "existing", Title: "keep me", Repeat: model.RepeatOnce, NoteType: model.NoteText}}}
	sched := newFakeScheduler()
	store := NewReminderStore(p, sched, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	_, err := store.Create(ctx, textDraft("early bird"))
	require.ErrorIs(t, err, ErrNotLoaded)
	_, ok, err := store.Update(ctx, "existing", textDraft("renamed"))
	require.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, ok)
	assert.False(t, store.Remove(ctx, "existing"))

	assert.Zero(t, p.saves)
	assert.Empty(t, sched.scheduled)
	assert.Empty(t, sched.live)
	assert.False(t, store.Loaded())

	require.NoError(t, store.Load(ctx))
	assert.True(t, store.Loaded())
	require.Len(t, store.List(), 1)
	assert.Equal(t, "keep me", store.List()[0].Title)

	saved, err := store.Create(ctx, textDraft("after load"))
	require.NoError(t, err)
	assert.Equal(t, 1, sched.liveFor(saved.Reminder.ID))
}

func TestReminderStore_LoadRestoresNotifications(t *testing.T) {
	p := &memoryPersistence{stored: []model.Reminder{
		{ID: "a", Title: "armed", Repeat: model.RepeatDaily, NoteType: model.NoteText, NotificationID: "n-a"},
		{ID: "b", Title: "silent", Repeat: model.RepeatOnce, NoteType: model.NoteText},
	}}
	sched := newFakeScheduler()
	store := NewReminderStore(p, sched)

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, []string{"n-a"}, sched.restored)
	assert.Equal(t, "a", sched.live["n-a"].ReminderID)
}

func TestReminderStore_LoadFailureStartsEmpty(t *testing.T) {
	p := &memoryPersistence{loadErr: errors.New("disk gone")}
	store := NewReminderStore(p, newFakeScheduler())

	require.NoError(t, store.Load(context.Background()))
	assert.True(t, store.Loaded())
	assert.Empty(t, store.List())
}

func TestReminderStore_SchedulingAndSaveErrorsAreSuppressed(t *testing.T) {
	store, p, sched := newStoreForTests(t)
	sched.scheduleErr = ErrNotificationsDisabled
	p.saveErr = errors.New("read-only")

	saved, err := store.Create(context.Background(), textDraft("no alarm"))
	require.NoError(t, err)
	assert.Empty(t, saved.Reminder.NotificationID)
	assert.Len(t, store.List(), 1)
}

func TestReminderStore_EachMutationWritesOnce(t *testing.T) {
	store, p, _ := newStoreForTests(t)
	ctx := context.Background()

	saved, err := store.Create(ctx, textDraft("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, p.saves)
	_, _, err = store.Update(ctx, saved.Reminder.ID, textDraft("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, p.saves)
	store.ToggleCompleted(ctx, saved.Reminder.ID)
	assert.Equal(t, 3, p.saves)
	store.Remove(ctx, saved.Reminder.ID)
	assert.Equal(t, 4, p.saves)
}

func TestReminderStore_PendingOpenConsumedOnceAfterLoad(t *testing.T) {
	p := &memoryPersistence{stored: []model.Reminder{{ID: "r1", Title: "tap me", Repeat: model.RepeatOnce, NoteType: model.NoteText}}}
	store := NewReminderStore(p, newFakeScheduler())
	var opened []string
	store.SetOpenHandler(func(r model.Reminder) { opened = append(opened, r.ID) })

	assert.False(t, store.RequestOpen("r1"))
	pending, ok := store.PendingOpen()
	assert.True(t, ok)
	assert.Equal(t, "r1", pending)
	assert.Empty(t, opened)

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, []string{"r1"}, opened)
	_, ok = store.PendingOpen()
	assert.False(t, ok)

	// A second load must not replay the request.
	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, []string{"r1"}, opened)
}

func TestReminderStore_RequestOpenImmediateWhenPresent(t *testing.T) {
	store, _, _ := newStoreForTests(t)
	saved, err := store.Create(context.Background(), textDraft("here"))
	require.NoError(t, err)

	var opened []string
	store.SetOpenHandler(func(r model.Reminder) { opened = append(opened, r.ID) })

	assert.True(t, store.RequestOpen(saved.Reminder.ID))
	assert.Equal(t, []string{saved.Reminder.ID}, opened)
}

func TestReminderStore_RequestOpenMissingStaysPending(t *testing.T) {
	store, _, _ := newStoreForTests(t)
	var opened int
	store.SetOpenHandler(func(model.Reminder) { opened++ })

	assert.False(t, store.RequestOpen("ghost"))
	_, err := store.Create(context.Background(), textDraft("other"))
	require.NoError(t, err)

	pending, ok := store.PendingOpen()
	assert.True(t, ok)
	assert.Equal(t, "ghost", pending)
	assert.Zero(t, opened)
}

type nextRunScheduler struct {
	*fakeScheduler
	next time.Time
}

func (s nextRunScheduler) NextRun(id string) time.Time {
	if _, ok := s.live[id]; !ok {
		return time.Time{}
	}
	return s.next
}

func TestReminderStore_NextAlert(t *testing.T) {
	next := testNow.Add(9*time.Hour + 30*time.Minute)
	sched := nextRunScheduler{fakeScheduler: newFakeScheduler(), next: next}
	store := NewReminderStore(&memoryPersistence{}, sched, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	saved, err := store.Create(ctx, textDraft("call mum"))
	require.NoError(t, err)

	got, ok := store.NextAlert(saved.Reminder.ID)
	assert.True(t, ok)
	assert.Equal(t, next, got)

	_, ok = store.NextAlert("missing")
	assert.False(t, ok)

	// Schedulers without NextRun report nothing.
	plain, _, _ := newStoreForTests(t)
	saved, err = plain.Create(ctx, textDraft("call dad"))
	require.NoError(t, err)
	_, ok = plain.NextAlert(saved.Reminder.ID)
	assert.False(t, ok)
}

func TestNotificationBody(t *testing.T) {
	at := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "feed the cat", NotificationBody(model.Reminder{NoteType: model.NoteText, Notes: " feed the cat ", ReminderTime: at}))
	assert.Equal(t, "⏰ 18:30", NotificationBody(model.Reminder{NoteType: model.NoteText, ReminderTime: at}))
	assert.Equal(t, "• milk", NotificationBody(model.Reminder{
		NoteType:  model.NoteTodo,
		TodoItems: []model.TodoItem{{Text: "milk"}, {Text: "bread", Done: true}},
	}))
}
