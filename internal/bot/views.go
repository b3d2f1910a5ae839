package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reminders/internal/model"
	"reminders/internal/service"
	"reminders/internal/trigger"
)

const (
	cbOpenPrefix    = "open:"
	cbEditPrefix    = "edit:"
	cbDonePrefix    = "done:"
	cbDeletePrefix  = "delete:"
	cbConfirmPrefix = "confirm:"
	cbCancelPrefix  = "cancel:"
	cbTodoPrefix    = "todo:"
)

const (
	menuLabelNew  = "➕ New reminder"
	menuLabelList = "📋 Reminders"
	menuLabelHelp = "ℹ️ Help"
)

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Untitled"
	}
	runes := []rune(trimmed)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortTitle(title string, maxLen int) string {
	runes := []rune(normalizeTitle(title))
	if len(runes) <= maxLen {
		return string(runes)
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// formatDetail renders the detail view of a reminder. next is the armed
// notification's next fire time, zero when unknown.
func formatDetail(r model.Reminder, now, next time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", service.StatusIcon(r, now), escape(normalizeTitle(r.Title))))
	sb.WriteString(fmt.Sprintf("⏰ %s\n", escape(trigger.Describe(r))))
	switch {
	case !next.IsZero():
		sb.WriteString(fmt.Sprintf("🔔 Next alert: %s\n", next.In(now.Location()).Format("2006-01-02 15:04")))
	case r.Repeat != model.RepeatOnce && r.Repeat != model.RepeatCustom:
		sb.WriteString(fmt.Sprintf("📆 Next: %s\n", r.ReminderTime.In(now.Location()).Format("2006-01-02 15:04")))
	}
	if r.NotificationID == "" {
		sb.WriteString("🔕 No alarm scheduled\n")
	}
	if r.Completed {
		sb.WriteString("✅ Completed\n")
	}

	switch r.NoteType {
	case model.NoteTodo:
		if len(r.TodoItems) > 0 {
			sb.WriteString(fmt.Sprintf("\n☑️ <b>Checklist</b> (%d/%d)\n", len(r.TodoItems)-r.OpenTodoCount(), len(r.TodoItems)))
			for _, item := range r.TodoItems {
				mark := "⬜"
				if item.Done {
					mark = "✅"
				}
				sb.WriteString(fmt.Sprintf("%s %s\n", mark, escape(item.Text)))
			}
		}
	default:
		if notes := strings.TrimSpace(r.Notes); notes != "" {
			sb.WriteString(fmt.Sprintf("\n📝 %s\n", escape(notes)))
		}
	}
	return strings.TrimSpace(sb.String())
}

func detailKeyboard(r model.Reminder) tgbotapi.InlineKeyboardMarkup {
	doneLabel := "✅ Complete"
	if r.Completed {
		doneLabel = "↩️ Reopen"
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", cbEditPrefix+r.ID),
			tgbotapi.NewInlineKeyboardButtonData(doneLabel, cbDonePrefix+r.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeletePrefix+r.ID),
		),
	}
	if r.NoteType == model.NoteTodo {
		for _, item := range r.TodoItems {
			mark := "⬜"
			if item.Done {
				mark = "✅"
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(mark+" "+shortTitle(item.Text, 40), cbTodoPrefix+r.ID+":"+item.ID),
			))
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func listKeyboard(reminders []model.Reminder, now time.Time) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reminders))
	for _, r := range reminders {
		label := fmt.Sprintf("%s %s · %s", service.StatusIcon(r, now), shortTitle(r.Title, 28), model.TimeOfDayOf(r.ReminderTime.In(now.Location())))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbOpenPrefix+r.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func notificationKeyboard(reminderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👀 Open", cbOpenPrefix+reminderID),
			tgbotapi.NewInlineKeyboardButtonData("✅ Complete", cbDonePrefix+reminderID),
		),
	)
}

func confirmDeleteKeyboard(reminderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", cbConfirmPrefix+reminderID),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Cancel", cbCancelPrefix+reminderID),
		),
	)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNew),
			tgbotapi.NewKeyboardButton(menuLabelList),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func replyKeyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows)+1)
	for _, row := range rows {
		line := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			line = append(line, tgbotapi.NewKeyboardButton(label))
		}
		buttons = append(buttons, line)
	}
	buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	kb := tgbotapi.NewReplyKeyboard(buttons...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// prompt returns the question and keyboard for the composer's current stage.
func (c *composer) prompt() (string, interface{}) {
	var skip []string
	if c.editing() {
		skip = []string{btnSkip}
	}
	step := func(n int, text string) string {
		return fmt.Sprintf("<b>Step %d:</b> %s", n, text)
	}

	switch c.stage {
	case stageTitle:
		text := step(1, "what should I remind you about?")
		if c.editing() {
			text += fmt.Sprintf("\nCurrent: <i>%s</i>", escape(c.draft.Title))
		}
		return text, replyKeyboard(skip)
	case stageNotesToggle:
		return step(2, "add notes or a checklist?"), replyKeyboard(append([]string{btnYes, btnNo}, skip...))
	case stageNoteType:
		return step(3, "plain notes or a checklist?"), replyKeyboard([]string{btnNoteText, btnNoteChecklist})
	case stageNotes:
		return step(4, "send the notes."), replyKeyboard(skip)
	case stageTodoItems:
		text := step(4, fmt.Sprintf("send checklist items, one per line. Tap «%s» when finished.", btnChecklistDone))
		if n := len(c.draft.TodoItems); n > 0 {
			text += fmt.Sprintf("\nItems so far: %d", n)
		}
		return text, replyKeyboard([]string{btnChecklistDone})
	case stageTime:
		text := step(5, "at what time? Use <code>HH:MM</code>.")
		if c.editing() {
			text += fmt.Sprintf("\nCurrent: <code>%s</code>", c.draft.Time)
		}
		return text, replyKeyboard(skip)
	case stageRepeat:
		return step(6, "how often?"), replyKeyboard(
			[]string{btnRepeatOnce, btnRepeatDaily},
			[]string{btnRepeatWeekly, btnRepeatCustom},
			skip,
		)
	case stageCustomRepeat:
		labels := make([]string, 0, len(model.CustomRepeatPresets))
		for _, preset := range model.CustomRepeatPresets {
			labels = append(labels, intervalLabel(preset))
		}
		return step(7, "repeat every…"), replyKeyboard(labels[:3], labels[3:])
	default:
		return "", nil
	}
}

func parseCallback(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(data, prefix)
	return id, id != ""
}

func parseTodoCallback(data string) (reminderID, todoID string, ok bool) {
	rest, ok := parseCallback(data, cbTodoPrefix)
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
