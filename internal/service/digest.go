package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"reminders/internal/model"
	"reminders/internal/trigger"
)

// Markup decorates digest text for a particular surface.
type Markup struct {
	Bold   func(string) string
	Italic func(string) string
	Escape func(string) string
}

// HTMLMarkup renders Telegram-flavoured HTML.
var HTMLMarkup = Markup{
	Bold:   func(s string) string { return "<b>" + s + "</b>" },
	Italic: func(s string) string { return "<i>" + s + "</i>" },
	Escape: html.EscapeString,
}

// PlainMarkup renders plain terminal text.
var PlainMarkup = Markup{
	Bold:   func(s string) string { return s },
	Italic: func(s string) string { return "(" + s + ")" },
	Escape: func(s string) string { return s },
}

const (
	iconDefault   = "🟢"
	iconDue       = "⏳"
	iconOverdue   = "⚠️"
	iconRecurring = "♻️"
	iconDone      = "✅"
)

// Digest builds a human-readable summary of the reminder collection.
func Digest(reminders []model.Reminder, now time.Time, m Markup) string {
	var upcoming, recurring, done []model.Reminder
	for _, r := range reminders {
		switch {
		case r.Completed:
			done = append(done, r)
		case r.Repeat == model.RepeatOnce:
			upcoming = append(upcoming, r)
		default:
			recurring = append(recurring, r)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ReminderTime.Before(upcoming[j].ReminderTime)
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 %s\n", m.Bold("Reminders")))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02 15:04")))

	builder.WriteString(fmt.Sprintf("🔥 %s\n", m.Bold("Upcoming")))
	if len(upcoming) == 0 {
		builder.WriteString("— nothing scheduled\n")
	} else {
		for _, r := range upcoming {
			builder.WriteString(formatUpcoming(r, now, m))
		}
	}

	builder.WriteString(fmt.Sprintf("\n%s %s\n", iconRecurring, m.Bold("Repeating")))
	if len(recurring) == 0 {
		builder.WriteString("— no repeating reminders\n")
	} else {
		for _, r := range recurring {
			builder.WriteString(formatRecurring(r, m))
		}
	}

	if len(done) > 0 {
		builder.WriteString(fmt.Sprintf("\n%s %s\n", iconDone, m.Bold("Completed")))
		for _, r := range done {
			builder.WriteString(fmt.Sprintf("%s %s\n", iconDone, m.Escape(strings.TrimSpace(r.Title))))
		}
	}

	return strings.TrimSpace(builder.String())
}

// StatusIcon picks the list icon for a reminder.
func StatusIcon(r model.Reminder, now time.Time) string {
	switch {
	case r.Completed:
		return iconDone
	case r.Repeat != model.RepeatOnce:
		return iconRecurring
	case now.After(r.ReminderTime):
		return iconOverdue
	case r.ReminderTime.Sub(now) <= time.Hour:
		return iconDue
	default:
		return iconDefault
	}
}

func formatUpcoming(r model.Reminder, now time.Time, m Markup) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", StatusIcon(r, now), m.Escape(strings.TrimSpace(r.Title))))

	at := r.ReminderTime.In(now.Location())
	if now.After(at) {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s — %s", at.Format("2006-01-02 15:04"), m.Bold("missed")))
	} else {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s · in %s", at.Format("2006-01-02 15:04"), humanizeDuration(at.Sub(now))))
	}
	writeNoteLine(&sb, r, m)
	sb.WriteByte('\n')
	return sb.String()
}

func formatRecurring(r model.Reminder, m Markup) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s", iconRecurring, m.Escape(strings.TrimSpace(r.Title)), m.Italic(trigger.Describe(r))))
	writeNoteLine(&sb, r, m)
	sb.WriteByte('\n')
	return sb.String()
}

func writeNoteLine(sb *strings.Builder, r model.Reminder, m Markup) {
	switch r.NoteType {
	case model.NoteTodo:
		if len(r.TodoItems) > 0 {
			sb.WriteString(fmt.Sprintf("\n   ☑️ %d/%d done", len(r.TodoItems)-r.OpenTodoCount(), len(r.TodoItems)))
		}
	default:
		if notes := strings.TrimSpace(r.Notes); notes != "" {
			sb.WriteString(fmt.Sprintf("\n   📝 %s", m.Escape(firstLine(notes))))
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func humanizeDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours >= 24:
		return fmt.Sprintf("%dd %dh", hours/24, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
