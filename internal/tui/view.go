package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"reminders/internal/model"
	"reminders/internal/service"
	"reminders/internal/trigger"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.title.Render(" Reminders "))
	sb.WriteString("\n\n")

	if m.banner != nil {
		sb.WriteString(m.renderBanner())
		sb.WriteString("\n\n")
	}

	var keys help.KeyMap
	switch m.mode {
	case FormMode:
		sb.WriteString(m.renderForm())
		keys = formKeys(m.keys)
	case DetailMode:
		sb.WriteString(m.renderDetail())
		keys = detailKeys(m.keys)
	case DeleteConfirmMode:
		sb.WriteString(m.renderDeletePrompt())
	default:
		sb.WriteString(m.renderList())
		keys = listKeys(m.keys)
	}
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(m.styles.err.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(m.styles.status.Render(m.status))
		sb.WriteString("\n")
	}
	if keys != nil {
		sb.WriteString("\n")
		sb.WriteString(m.help.View(keys))
	}
	return sb.String()
}

func (m Model) renderBanner() string {
	n := m.banner
	text := fmt.Sprintf("🔔 %s", n.Title)
	if body := strings.TrimSpace(n.Body); body != "" {
		text += " · " + strings.ReplaceAll(body, "\n", " ")
	}
	return m.styles.banner.Render(text) + m.styles.muted.Render("  o to open")
}

func (m Model) renderList() string {
	if !m.store.Loaded() {
		return m.styles.muted.Render("Loading…")
	}
	if len(m.items) == 0 {
		return m.styles.muted.Render("No reminders yet. Press n to add one.")
	}

	now := m.now()
	var sb strings.Builder
	for i, r := range m.items {
		line := fmt.Sprintf("%s %-28s %s", service.StatusIcon(r, now), truncate(r.Title, 28), trigger.Describe(r))
		if r.NoteType == model.NoteTodo && len(r.TodoItems) > 0 {
			line += fmt.Sprintf("  [%d/%d]", len(r.TodoItems)-r.OpenTodoCount(), len(r.TodoItems))
		}
		if i == m.cursor {
			sb.WriteString(m.styles.selected.Render(line))
		} else {
			sb.WriteString(m.styles.item.Render(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderDetail() string {
	r, ok := m.detail()
	if !ok {
		return m.styles.muted.Render("Reminder not found.")
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(r.Title))
	sb.WriteString("\n")
	sb.WriteString(m.styles.muted.Render(trigger.Describe(r)))
	sb.WriteString("\n")
	if r.Completed {
		sb.WriteString("✅ completed\n")
	}
	if r.NotificationID == "" {
		sb.WriteString(m.styles.muted.Render("no alarm scheduled"))
		sb.WriteString("\n")
	}

	switch r.NoteType {
	case model.NoteTodo:
		sb.WriteString("\n")
		for i, item := range r.TodoItems {
			mark := "[ ]"
			if item.Done {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s", mark, item.Text)
			if i == m.detailCursor {
				line = m.styles.selected.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	default:
		if notes := strings.TrimSpace(r.Notes); notes != "" {
			sb.WriteString("\n")
			sb.WriteString(notes)
			sb.WriteString("\n")
		}
	}
	return m.styles.dialog.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderDeletePrompt() string {
	title := m.detailID
	if r, ok := m.store.Get(m.detailID); ok {
		title = r.Title
	}
	return m.styles.dialog.Render(fmt.Sprintf("Delete %q?\n\ny to confirm, n to keep", title))
}

func (m Model) renderForm() string {
	f := m.form
	heading := "New reminder"
	if f.editing() {
		heading = "Edit reminder"
	}

	row := func(fl field, label, value string) string {
		style := m.styles.label
		if f.focus == fl {
			style = m.styles.focused
		}
		return style.Render(label) + value + "\n"
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(heading))
	sb.WriteString("\n\n")
	sb.WriteString(row(fieldTitle, "Title", f.title.View()))
	sb.WriteString(row(fieldTime, "Time", f.at.View()))
	sb.WriteString(row(fieldRepeat, "Repeat", choice(string(f.repeat))))
	if f.visible(fieldInterval) {
		sb.WriteString(row(fieldInterval, "Every (min)", f.interval.View()))
	}
	sb.WriteString(row(fieldNoteType, "Notes", choice(noteTypeLabel(f.noteType))))
	sb.WriteString(row(fieldBody, "", ""))
	sb.WriteString(f.body.View())
	return sb.String()
}

func choice(value string) string {
	return "‹ " + value + " ›"
}

func noteTypeLabel(t model.NoteType) string {
	if t == model.NoteTodo {
		return "checklist"
	}
	return "text"
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
