package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminders/internal/model"
)

func newRepoForTests(t *testing.T) (*ReminderRepository, *EntryRepository) {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "data", "reminders.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	entries := NewEntryRepository(db)
	return NewReminderRepository(entries, ""), entries
}

func TestReminderRepository_LoadEmpty(t *testing.T) {
	repo, _ := newRepoForTests(t)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestReminderRepository_RoundTrip(t *testing.T) {
	repo, _ := newRepoForTests(t)
	ctx := context.Background()
	minutes := 90

	want := []model.Reminder{
		{
			ID:             "r1",
			Title:          "water plants",
			ReminderTime:   time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC),
			Repeat:         model.RepeatDaily,
			NoteType:       model.NoteText,
			Notes:          "balcony first",
			NotificationID: "n1",
		},
		{
			ID:                  "r2",
			Title:               "stretch",
			ReminderTime:        time.Date(2026, 10, 20, 7, 30, 0, 0, time.UTC),
			Repeat:              model.RepeatCustom,
			CustomRepeatMinutes: &minutes,
			NoteType:            model.NoteTodo,
			TodoItems: []model.TodoItem{
				{ID: "t1", Text: "neck", Done: true},
				{ID: "t2", Text: "back"},
			},
			Completed: true,
		},
	}

	require.NoError(t, repo.Save(ctx, want))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Saving again replaces the blob instead of appending.
	require.NoError(t, repo.Save(ctx, want[:1]))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[:1], got)
}

func TestReminderRepository_SaveEmptyDropsRow(t *testing.T) {
	repo, entries := newRepoForTests(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []model.Reminder{{ID: "r1", Title: "gone soon", Repeat: model.RepeatOnce, NoteType: model.NoteText}}))
	_, err := entries.Get(ctx, DefaultReminderKey)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, nil))
	_, err = entries.Get(ctx, DefaultReminderKey)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Dropping an absent row is fine.
	require.NoError(t, repo.Save(ctx, []model.Reminder{}))
}

func TestReminderRepository_CorruptBlobLoadsEmpty(t *testing.T) {
	repo, entries := newRepoForTests(t)
	ctx := context.Background()
	require.NoError(t, entries.Put(ctx, DefaultReminderKey, "{not json"))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeReminders_LegacyTodoNotesMigrate(t *testing.T) {
	blob := `[{"id":"r1","title":"errands","reminderTime":"2026-10-19T09:00:00Z","repeat":"once","noteType":"todo","notes":"buy milk\nwalk dog"}]`

	got, err := DecodeReminders([]byte(blob))
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Empty(t, r.Notes)
	require.Len(t, r.TodoItems, 2)
	assert.Equal(t, "buy milk", r.TodoItems[0].Text)
	assert.Equal(t, "walk dog", r.TodoItems[1].Text)
	assert.False(t, r.TodoItems[0].Done)
	assert.False(t, r.TodoItems[1].Done)
	assert.NotEqual(t, r.TodoItems[0].ID, r.TodoItems[1].ID)
}

func TestDecodeReminders_Defaults(t *testing.T) {
	blob := `[
		{"title":"no id, no repeat, no type","reminderTime":"2026-10-19T09:00:00Z","notes":"hello"},
		{"id":"c","title":"custom without minutes","repeat":"custom"},
		{"id":"d","title":"custom too small","repeat":"custom","customRepeatMinutes":5},
		{"id":"e","title":"daily with stray minutes","repeat":"daily","customRepeatMinutes":60,"todoItems":[{"id":"x","text":"stray"}]}
	]`

	got, err := DecodeReminders([]byte(blob))
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, model.RepeatOnce, got[0].Repeat)
	assert.Equal(t, model.NoteText, got[0].NoteType)
	assert.Equal(t, "hello", got[0].Notes)

	require.NotNil(t, got[1].CustomRepeatMinutes)
	assert.Equal(t, 30, *got[1].CustomRepeatMinutes)
	require.NotNil(t, got[2].CustomRepeatMinutes)
	assert.Equal(t, 30, *got[2].CustomRepeatMinutes)

	assert.Nil(t, got[3].CustomRepeatMinutes)
	assert.Nil(t, got[3].TodoItems)
}

func TestEntryRepository_PutOverwrites(t *testing.T) {
	_, entries := newRepoForTests(t)
	ctx := context.Background()

	_, err := entries.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, entries.Put(ctx, "k", "one"))
	require.NoError(t, entries.Put(ctx, "k", "two"))
	v, err := entries.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, entries.Delete(ctx, "k"))
	_, err = entries.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSqliteDir(t *testing.T) {
	tests := []struct {
		path string
		dir  string
		ok   bool
	}{
		{"reminders.db", "", false},
		{":memory:", "", false},
		{"file:x.db?mode=memory", "", false},
		{"/var/lib/r/reminders.db", "/var/lib/r", true},
		{"file:/tmp/a/b.db?_fk=1", "/tmp/a", true},
	}
	for _, tt := range tests {
		dir, ok := sqliteDir(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.dir, dir, tt.path)
	}

	assert.Equal(t, "a.db?_busy_timeout=5000", withBusyTimeout("a.db"))
	assert.Equal(t, "a.db?_fk=1&_busy_timeout=5000", withBusyTimeout("a.db?_fk=1"))
}
