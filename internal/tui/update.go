package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"reminders/internal/model"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case notificationMsg:
		n := msg.notification
		m.banner = &n
		m.refresh()
		return m, m.events.wait()

	case openedMsg:
		m.banner = nil
		m.refresh()
		m.showDetail(msg.reminder.ID)
		return m, m.events.wait()

	case tea.KeyMsg:
		switch m.mode {
		case FormMode:
			return m.updateForm(msg)
		case DetailMode:
			return m.updateDetail(msg)
		case DeleteConfirmMode:
			return m.updateDelete(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == FormMode {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if r, ok := m.selected(); ok {
			m.showDetail(r.ID)
		}
	case key.Matches(msg, m.keys.New):
		return m, m.startForm(newForm(m.now()), ListMode)
	case key.Matches(msg, m.keys.Edit):
		if r, ok := m.selected(); ok {
			return m, m.startForm(editForm(r, m.now()), ListMode)
		}
	case key.Matches(msg, m.keys.Complete):
		if r, ok := m.selected(); ok {
			m.store.ToggleCompleted(m.ctx, r.ID)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			m.detailID = r.ID
			m.returnTo = ListMode
			m.mode = DeleteConfirmMode
		}
	case key.Matches(msg, m.keys.Open):
		m.openBanner()
	}
	return m, nil
}

// openBanner routes the shown notification through the store's open request.
func (m *Model) openBanner() {
	if m.banner == nil {
		return
	}
	id := m.banner.ReminderID
	if !m.store.RequestOpen(id) {
		m.status = "reminder is no longer available"
	}
	m.banner = nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r, ok := m.detail()
	if !ok {
		m.mode = ListMode
		m.refresh()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ListMode
		m.refresh()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.detailCursor > 0 {
			m.detailCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.detailCursor < len(r.TodoItems)-1 {
			m.detailCursor++
		}
	case key.Matches(msg, m.keys.ToggleItem):
		if r.NoteType == model.NoteTodo && m.detailCursor < len(r.TodoItems) {
			m.store.ToggleTodoItem(m.ctx, r.ID, r.TodoItems[m.detailCursor].ID)
		}
	case key.Matches(msg, m.keys.Complete):
		m.store.ToggleCompleted(m.ctx, r.ID)
	case key.Matches(msg, m.keys.Edit):
		return m, m.startForm(editForm(r, m.now()), DetailMode)
	case key.Matches(msg, m.keys.Delete):
		m.returnTo = DetailMode
		m.mode = DeleteConfirmMode
	case key.Matches(msg, m.keys.Open):
		m.openBanner()
	}
	return m, nil
}

func (m Model) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if m.store.Remove(m.ctx, m.detailID) {
			m.status = "reminder deleted"
		}
		m.detailID = ""
		m.mode = ListMode
		m.refresh()
	case key.Matches(msg, m.keys.Deny):
		m.mode = m.returnTo
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = m.returnTo
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m.saveForm()
	case key.Matches(msg, m.keys.Next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.form.move(-1)
	case key.Matches(msg, m.keys.Left):
		if m.form.cycle(-1) {
			return m, nil
		}
	case key.Matches(msg, m.keys.Right):
		if m.form.cycle(1) {
			return m, nil
		}
	case msg.Type == tea.KeyEnter && m.form.focus != fieldBody:
		return m, m.form.move(1)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	d, err := m.form.draft()
	if err != nil {
		m.err = err
		return m, nil
	}

	var (
		id     string
		raised bool
	)
	if m.form.editing() {
		saved, ok, err := m.store.Update(m.ctx, m.form.editingID, d)
		if err != nil {
			return m.formError(err)
		}
		if !ok {
			m.err = errors.New("reminder no longer exists")
			m.mode = ListMode
			m.refresh()
			return m, nil
		}
		id, raised = saved.Reminder.ID, saved.IntervalRaised
	} else {
		saved, err := m.store.Create(m.ctx, d)
		if err != nil {
			return m.formError(err)
		}
		id, raised = saved.Reminder.ID, saved.IntervalRaised
	}

	m.err = nil
	m.status = "reminder saved"
	if raised {
		m.status = fmt.Sprintf("reminder saved; interval raised to %d min", model.MinCustomRepeatMinutes)
	}
	m.refresh()
	m.showDetail(id)
	return m, nil
}

func (m Model) formError(err error) (tea.Model, tea.Cmd) {
	m.err = err
	var cmd tea.Cmd
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		cmd = m.form.setFocus(fieldTitle)
	case errors.Is(err, model.ErrEmptyChecklist):
		cmd = m.form.setFocus(fieldBody)
	}
	return m, cmd
}
