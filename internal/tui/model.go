package tui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"reminders/internal/model"
	"reminders/internal/service"
)

// Mode is the screen currently shown.
type Mode int

const (
	ListMode Mode = iota
	FormMode
	DetailMode
	DeleteConfirmMode
)

// Model is the terminal front-end over a reminder store.
type Model struct {
	store  *service.ReminderStore
	events *Events
	now    func() time.Time
	ctx    context.Context

	keys   keyMap
	styles styles
	help   help.Model

	mode   Mode
	items  []model.Reminder
	cursor int

	detailID     string
	detailCursor int
	form         form
	returnTo     Mode

	banner *service.Notification
	status string
	err    error

	width, height int
}

// New builds the model and routes opened reminders through events.
func New(store *service.ReminderStore, events *Events) Model {
	store.SetOpenHandler(func(r model.Reminder) {
		if err := events.post(openedMsg{reminder: r}); err != nil {
			log.Printf("open reminder %s: %v", r.ID, err)
		}
	})

	m := Model{
		store:  store,
		events: events,
		now:    time.Now,
		ctx:    context.Background(),
		keys:   defaultKeyMap(),
		styles: defaultStyles(),
		help:   help.New(),
		mode:   ListMode,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.events.wait()
}

// Mode reports the current screen.
func (m Model) Mode() Mode {
	return m.mode
}

func (m *Model) refresh() {
	m.items = m.store.List()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (model.Reminder, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return model.Reminder{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) detail() (model.Reminder, bool) {
	return m.store.Get(m.detailID)
}

func (m *Model) showDetail(id string) {
	m.mode = DetailMode
	m.detailID = id
	m.detailCursor = 0
}

func (m *Model) startForm(f form, from Mode) tea.Cmd {
	m.form = f
	m.returnTo = from
	m.mode = FormMode
	m.err = nil
	return m.form.setFocus(fieldTitle)
}
