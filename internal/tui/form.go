package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"reminders/internal/model"
)

type field int

const (
	fieldTitle field = iota
	fieldTime
	fieldRepeat
	fieldInterval
	fieldNoteType
	fieldBody
	fieldCount
)

var repeatChoices = []model.Repeat{model.RepeatOnce, model.RepeatDaily, model.RepeatWeekly, model.RepeatCustom}

// form edits one reminder draft.
type form struct {
	editingID string
	existing  []model.TodoItem

	title    textinput.Model
	at       textinput.Model
	interval textinput.Model
	body     textarea.Model
	repeat   model.Repeat
	noteType model.NoteType
	focus    field
}

func newForm(now time.Time) form {
	f := form{repeat: model.RepeatOnce, noteType: model.NoteText}

	f.title = textinput.New()
	f.title.Placeholder = "What should I remind you about?"
	f.title.Width = 40

	f.at = textinput.New()
	f.at.Placeholder = "HH:MM"
	f.at.CharLimit = 5
	f.at.Width = 6
	f.at.SetValue(model.TimeOfDayOf(now.Add(time.Hour)).String())

	f.interval = textinput.New()
	f.interval.Placeholder = "minutes"
	f.interval.CharLimit = 5
	f.interval.Width = 6
	f.interval.SetValue(strconv.Itoa(model.CustomRepeatPresets[1]))

	f.body = textarea.New()
	f.body.Placeholder = "Notes, or one checklist item per line"
	f.body.ShowLineNumbers = false
	f.body.SetWidth(40)
	f.body.SetHeight(4)

	f.setFocus(fieldTitle)
	return f
}

func editForm(r model.Reminder, now time.Time) form {
	f := newForm(now)
	d := model.DraftFrom(r)
	f.editingID = r.ID
	f.title.SetValue(d.Title)
	f.at.SetValue(d.Time.String())
	f.repeat = d.Repeat
	if d.Repeat == model.RepeatCustom {
		f.interval.SetValue(strconv.Itoa(d.CustomRepeatMinutes))
	}
	f.noteType = d.NoteType
	if d.NoteType == model.NoteTodo {
		f.existing = d.TodoItems
		lines := make([]string, 0, len(d.TodoItems))
		for _, item := range d.TodoItems {
			lines = append(lines, item.Text)
		}
		f.body.SetValue(strings.Join(lines, "\n"))
	} else {
		f.body.SetValue(d.Notes)
	}
	f.setFocus(fieldTitle)
	return f
}

func (f form) editing() bool {
	return f.editingID != ""
}

// draft turns the form into a draft. Checklist lines that match an existing
// item keep its id and done state.
func (f form) draft() (model.Draft, error) {
	tod, err := model.ParseTimeOfDay(f.at.Value())
	if err != nil {
		return model.Draft{}, errors.New("time must be HH:MM")
	}
	d := model.Draft{
		Title:    f.title.Value(),
		Time:     tod,
		Repeat:   f.repeat,
		NoteType: f.noteType,
	}
	if f.repeat == model.RepeatCustom {
		minutes, err := strconv.Atoi(strings.TrimSpace(f.interval.Value()))
		if err != nil || minutes <= 0 {
			return model.Draft{}, errors.New("interval must be a number of minutes")
		}
		d.CustomRepeatMinutes = minutes
	}
	if f.noteType == model.NoteTodo {
		d.TodoItems = f.mergeItems(model.TodoItemsFromLines(f.body.Value()))
	} else {
		d.Notes = f.body.Value()
	}
	return d, nil
}

func (f form) mergeItems(items []model.TodoItem) []model.TodoItem {
	used := make(map[string]bool, len(f.existing))
	for i := range items {
		for _, old := range f.existing {
			if !used[old.ID] && old.Text == items[i].Text {
				items[i].ID = old.ID
				items[i].Done = old.Done
				used[old.ID] = true
				break
			}
		}
	}
	return items
}

func (f *form) visible(fl field) bool {
	return fl != fieldInterval || f.repeat == model.RepeatCustom
}

func (f *form) move(delta int) tea.Cmd {
	next := f.focus
	for {
		next = field((int(next) + delta + int(fieldCount)) % int(fieldCount))
		if f.visible(next) {
			break
		}
	}
	return f.setFocus(next)
}

func (f *form) setFocus(fl field) tea.Cmd {
	f.focus = fl
	f.title.Blur()
	f.at.Blur()
	f.interval.Blur()
	f.body.Blur()
	switch fl {
	case fieldTitle:
		return f.title.Focus()
	case fieldTime:
		return f.at.Focus()
	case fieldInterval:
		return f.interval.Focus()
	case fieldBody:
		return f.body.Focus()
	}
	return nil
}

// cycle changes the choice fields; it reports whether the focused field is one.
func (f *form) cycle(delta int) bool {
	switch f.focus {
	case fieldRepeat:
		i := 0
		for j, r := range repeatChoices {
			if r == f.repeat {
				i = j
			}
		}
		f.repeat = repeatChoices[(i+delta+len(repeatChoices))%len(repeatChoices)]
		return true
	case fieldNoteType:
		if f.noteType == model.NoteTodo {
			f.noteType = model.NoteText
		} else {
			f.noteType = model.NoteTodo
		}
		return true
	}
	return false
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldTime:
		f.at, cmd = f.at.Update(msg)
	case fieldInterval:
		f.interval, cmd = f.interval.Update(msg)
	case fieldBody:
		f.body, cmd = f.body.Update(msg)
	}
	return f, cmd
}
