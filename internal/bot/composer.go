package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"reminders/internal/model"
)

type composerStage int

const (
	stageTitle composerStage = iota
	stageNotesToggle
	stageNoteType
	stageNotes
	stageTodoItems
	stageTime
	stageRepeat
	stageCustomRepeat
	stageDone
)

const (
	btnSkip          = "⏭️ Keep current"
	btnYes           = "Yes"
	btnNo            = "No"
	btnNoteText      = "📝 Text"
	btnNoteChecklist = "☑️ Checklist"
	btnChecklistDone = "✅ Done"
	btnRepeatOnce    = "Once"
	btnRepeatDaily   = "Daily"
	btnRepeatWeekly  = "Weekly"
	btnRepeatCustom  = "Custom"
	btnCancelDialog  = "⏪ Cancel"
)

// errRetry marks input that keeps the composer on the same stage.
var errRetry = errors.New("retry")

// composer walks the user through a reminder draft one message at a time.
type composer struct {
	stage     composerStage
	editingID string
	draft     model.Draft
}

func newComposer() *composer {
	return &composer{stage: stageTitle, draft: model.Draft{Repeat: model.RepeatOnce, NoteType: model.NoteText}}
}

func editComposer(r model.Reminder) *composer {
	return &composer{stage: stageTitle, editingID: r.ID, draft: model.DraftFrom(r)}
}

func (c *composer) editing() bool {
	return c.editingID != ""
}

// Apply consumes one reply. A returned error carries the message to show
// before re-prompting the same stage.
func (c *composer) Apply(text string) error {
	text = strings.TrimSpace(text)
	keep := c.editing() && isSkipInput(text)

	switch c.stage {
	case stageTitle:
		if !keep {
			if text == "" {
				return retryf("The title can't be empty. How should I call the reminder?")
			}
			c.draft.Title = text
		}
		c.stage = stageNotesToggle
	case stageNotesToggle:
		switch {
		case keep:
			c.stage = stageTime
		case isYes(text):
			c.stage = stageNoteType
		case isNo(text):
			c.draft.NoteType = model.NoteText
			c.draft.Notes = ""
			c.draft.TodoItems = nil
			c.stage = stageTime
		default:
			return retryf("Tap «%s» or «%s».", btnYes, btnNo)
		}
	case stageNoteType:
		switch strings.ToLower(text) {
		case strings.ToLower(btnNoteText), "text", "note", "notes":
			c.draft.NoteType = model.NoteText
			c.stage = stageNotes
		case strings.ToLower(btnNoteChecklist), "checklist", "todo", "list":
			c.draft.NoteType = model.NoteTodo
			c.stage = stageTodoItems
		default:
			return retryf("Pick «%s» or «%s».", btnNoteText, btnNoteChecklist)
		}
	case stageNotes:
		if !keep {
			c.draft.Notes = text
		}
		c.stage = stageTime
	case stageTodoItems:
		if isChecklistDone(text) || keep {
			if len(c.draft.TodoItems) == 0 {
				return retryf("A checklist needs at least one item. Send one item per line.")
			}
			c.stage = stageTime
			return nil
		}
		items := model.TodoItemsFromLines(text)
		if len(items) == 0 {
			return retryf("Send one item per line, then tap «%s».", btnChecklistDone)
		}
		c.draft.TodoItems = append(c.draft.TodoItems, items...)
	case stageTime:
		if !keep {
			tod, err := model.ParseTimeOfDay(text)
			if err != nil {
				return retryf("I can't read that time. Use <code>HH:MM</code>, e.g. <code>18:30</code>.")
			}
			c.draft.Time = tod
		}
		c.stage = stageRepeat
	case stageRepeat:
		switch {
		case keep:
			if c.draft.Repeat == model.RepeatCustom {
				c.stage = stageCustomRepeat
			} else {
				c.stage = stageDone
			}
		case strings.EqualFold(text, btnRepeatOnce):
			c.draft.Repeat = model.RepeatOnce
			c.stage = stageDone
		case strings.EqualFold(text, btnRepeatDaily):
			c.draft.Repeat = model.RepeatDaily
			c.stage = stageDone
		case strings.EqualFold(text, btnRepeatWeekly):
			c.draft.Repeat = model.RepeatWeekly
			c.stage = stageDone
		case strings.EqualFold(text, btnRepeatCustom):
			c.draft.Repeat = model.RepeatCustom
			c.stage = stageCustomRepeat
		default:
			return retryf("Pick how often to repeat.")
		}
	case stageCustomRepeat:
		if !keep || c.draft.CustomRepeatMinutes == 0 {
			minutes, err := parseIntervalLabel(text)
			if err != nil {
				return retryf("Pick an interval or send the number of minutes.")
			}
			c.draft.CustomRepeatMinutes = minutes
		}
		c.stage = stageDone
	}
	return nil
}

// rewind moves back to the stage that owns a validation error.
func (c *composer) rewind(err error) {
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		c.stage = stageTitle
	case errors.Is(err, model.ErrEmptyChecklist):
		c.draft.NoteType = model.NoteTodo
		c.stage = stageTodoItems
	}
}

func (c *composer) Done() bool {
	return c.stage == stageDone
}

type retryError struct {
	msg string
}

func (e retryError) Error() string { return e.msg }
func (e retryError) Unwrap() error { return errRetry }

func retryf(format string, args ...interface{}) error {
	return retryError{msg: fmt.Sprintf(format, args...)}
}

func intervalLabel(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return fmt.Sprintf("%d min", minutes)
}

func parseIntervalLabel(text string) (int, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, preset := range model.CustomRepeatPresets {
		if text == intervalLabel(preset) {
			return preset, nil
		}
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(text, "min"), "m"))
	minutes, err := strconv.Atoi(text)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("invalid interval %q", text)
	}
	return minutes, nil
}

func isSkipInput(text string) bool {
	lower := strings.ToLower(text)
	return text == btnSkip || lower == "skip" || lower == "-"
}

func isYes(text string) bool {
	lower := strings.ToLower(text)
	return lower == "yes" || lower == "y"
}

func isNo(text string) bool {
	lower := strings.ToLower(text)
	return lower == "no" || lower == "n"
}

func isChecklistDone(text string) bool {
	lower := strings.ToLower(text)
	return text == btnChecklistDone || lower == "done"
}

func isCancelDialogInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return text == btnCancelDialog || lower == "cancel"
}
