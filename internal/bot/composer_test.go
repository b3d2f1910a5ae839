package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminders/internal/model"
)

func applyAll(t *testing.T, c *composer, inputs ...string) {
	t.Helper()
	for _, in := range inputs {
		require.NoError(t, c.Apply(in), "input %q", in)
	}
}

func TestComposer_TextReminder(t *testing.T) {
	c := newComposer()
	applyAll(t, c, "water plants", btnYes, btnNoteText, "the big ones", "07:30", btnRepeatDaily)

	require.True(t, c.Done())
	assert.Equal(t, "water plants", c.draft.Title)
	assert.Equal(t, model.NoteText, c.draft.NoteType)
	assert.Equal(t, "the big ones", c.draft.Notes)
	assert.Equal(t, model.TimeOfDay{Hour: 7, Minute: 30}, c.draft.Time)
	assert.Equal(t, model.RepeatDaily, c.draft.Repeat)
}

func TestComposer_ChecklistNeedsItems(t *testing.T) {
	c := newComposer()
	applyAll(t, c, "groceries", btnYes, btnNoteChecklist)

	err := c.Apply(btnChecklistDone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errRetry))
	assert.Equal(t, stageTodoItems, c.stage)

	applyAll(t, c, "milk\neggs", "bread", "done")
	assert.Equal(t, stageTime, c.stage)
	require.Len(t, c.draft.TodoItems, 3)
	assert.Equal(t, "bread", c.draft.TodoItems[2].Text)
}

func TestComposer_CustomInterval(t *testing.T) {
	c := newComposer()
	applyAll(t, c, "stretch", btnNo, "09:00", btnRepeatCustom)
	assert.Equal(t, stageCustomRepeat, c.stage)

	applyAll(t, c, "2 h")
	assert.True(t, c.Done())
	assert.Equal(t, 120, c.draft.CustomRepeatMinutes)
}

func TestComposer_RetriesBadInput(t *testing.T) {
	c := newComposer()
	assert.ErrorIs(t, c.Apply("  "), errRetry)
	applyAll(t, c, "call mom")
	assert.ErrorIs(t, c.Apply("maybe"), errRetry)
	applyAll(t, c, "n")
	assert.ErrorIs(t, c.Apply("25:99"), errRetry)
	assert.Equal(t, stageTime, c.stage)
	applyAll(t, c, "18:05")
	assert.ErrorIs(t, c.Apply("hourly"), errRetry)
	assert.Equal(t, stageRepeat, c.stage)
}

func TestComposer_EditKeepsValues(t *testing.T) {
	custom := 45
	r := model.Reminder{
		ID:                  "r1",
		Title:               "standup",
		Repeat:              model.RepeatCustom,
		CustomRepeatMinutes: &custom,
		NoteType:            model.NoteTodo,
		TodoItems:           []model.TodoItem{{ID: "a", Text: "notes"}},
	}
	c := editComposer(r)
	require.True(t, c.editing())

	applyAll(t, c, btnSkip, btnSkip, btnSkip, btnSkip, btnSkip)
	assert.True(t, c.Done())
	assert.Equal(t, "standup", c.draft.Title)
	assert.Equal(t, model.RepeatCustom, c.draft.Repeat)
	assert.Equal(t, 45, c.draft.CustomRepeatMinutes)
	assert.Len(t, c.draft.TodoItems, 1)
}

func TestComposer_Rewind(t *testing.T) {
	c := newComposer()
	c.stage = stageDone
	c.rewind(model.ErrEmptyChecklist)
	assert.Equal(t, stageTodoItems, c.stage)
	assert.Equal(t, model.NoteTodo, c.draft.NoteType)

	c.stage = stageDone
	c.rewind(model.ErrEmptyTitle)
	assert.Equal(t, stageTitle, c.stage)
}

func TestParseIntervalLabel(t *testing.T) {
	cases := map[string]int{
		"30 min": 30,
		"1 h":    60,
		"12 h":   720,
		"45":     45,
		"90m":    90,
		"15 min": 15,
	}
	for in, want := range cases {
		got, err := parseIntervalLabel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseIntervalLabel("soon")
	assert.Error(t, err)
	_, err = parseIntervalLabel("0")
	assert.Error(t, err)
}

func TestParseTodoCallback(t *testing.T) {
	rid, tid, ok := parseTodoCallback("todo:3f2a-11:ab12cd34")
	require.True(t, ok)
	assert.Equal(t, "3f2a-11", rid)
	assert.Equal(t, "ab12cd34", tid)

	_, _, ok = parseTodoCallback("todo:onlyone")
	assert.False(t, ok)
	_, _, ok = parseTodoCallback("done:x")
	assert.False(t, ok)
}
