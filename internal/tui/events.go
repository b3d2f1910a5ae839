package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"reminders/internal/model"
	"reminders/internal/service"
)

var errEventsFull = errors.New("terminal event queue is full")

// notificationMsg is a fired reminder shown as a banner.
type notificationMsg struct {
	notification service.Notification
}

// openedMsg asks the UI to show a reminder's detail view.
type openedMsg struct {
	reminder model.Reminder
}

// Events carries messages from the scheduler and store goroutines into the
// running program.
type Events struct {
	ch chan tea.Msg
}

func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, 16)}
}

// Deliver implements service.Deliverer.
func (e *Events) Deliver(_ context.Context, n service.Notification) error {
	return e.post(notificationMsg{notification: n})
}

func (e *Events) post(msg tea.Msg) error {
	select {
	case e.ch <- msg:
		return nil
	default:
		return errEventsFull
	}
}

func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}
