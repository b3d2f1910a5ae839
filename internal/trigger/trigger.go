// Package trigger turns a picked time of day and a repeat policy into a
// concrete schedule.
package trigger

import (
	"fmt"
	"time"

	"reminders/internal/model"
)

// Kind distinguishes the trigger shapes a notification can take.
type Kind int

const (
	KindOnce Kind = iota
	KindCalendar
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindOnce:
		return "once"
	case KindCalendar:
		return "calendar"
	case KindInterval:
		return "interval"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Trigger describes when a notification fires. It satisfies cron.Schedule.
type Trigger struct {
	Kind Kind
	// At is the one-shot instant or the calendar anchor.
	At time.Time
	// Days is the calendar period.
	Days int
	// Every is the interval period.
	Every time.Duration
}

// NextInstant returns today at tod if that is strictly after now, otherwise
// tomorrow at tod. Seconds are zeroed.
func NextInstant(tod model.TimeOfDay, now time.Time) time.Time {
	y, m, d := now.Date()
	candidate := time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, now.Location())
	if candidate.After(now) {
		return candidate
	}
	return time.Date(y, m, d+1, tod.Hour, tod.Minute, 0, 0, now.Location())
}

// ClampCustomMinutes raises intervals below the policy minimum. The bool is
// true when the value was changed.
func ClampCustomMinutes(minutes int) (int, bool) {
	if minutes < model.MinCustomRepeatMinutes {
		return model.MinCustomRepeatMinutes, true
	}
	return minutes, false
}

// Build maps a repeat policy to a trigger. Custom intervals start from now
// and are not anchored to at. The bool reports a clamped interval.
func Build(repeat model.Repeat, customMinutes int, at, now time.Time) (Trigger, bool) {
	switch repeat {
	case model.RepeatDaily:
		return Trigger{Kind: KindCalendar, At: at, Days: 1}, false
	case model.RepeatWeekly:
		return Trigger{Kind: KindCalendar, At: at, Days: 7}, false
	case model.RepeatCustom:
		minutes, raised := ClampCustomMinutes(customMinutes)
		return Trigger{Kind: KindInterval, At: now, Every: time.Duration(minutes) * time.Minute}, raised
	default:
		return Trigger{Kind: KindOnce, At: at}, false
	}
}

// ForReminder rebuilds the trigger of a stored reminder.
func ForReminder(r model.Reminder, now time.Time) Trigger {
	t, _ := Build(r.Repeat, r.IntervalMinutes(), r.ReminderTime, now)
	return t
}

// Next returns the first fire time strictly after after, or the zero time
// when the trigger will not fire again.
func (t Trigger) Next(after time.Time) time.Time {
	switch t.Kind {
	case KindOnce:
		if after.Before(t.At) {
			return t.At
		}
		return time.Time{}
	case KindCalendar:
		if t.Days <= 0 {
			return time.Time{}
		}
		if after.Before(t.At) {
			return t.At
		}
		at := t.At.In(after.Location())
		// Jump close to after, then walk in calendar steps so DST shifts
		// keep the wall-clock time.
		period := time.Duration(t.Days) * 24 * time.Hour
		steps := int(after.Sub(at) / period)
		if steps > 1 {
			at = at.AddDate(0, 0, (steps-1)*t.Days)
		}
		for !at.After(after) {
			at = at.AddDate(0, 0, t.Days)
		}
		return at
	case KindInterval:
		if t.Every <= 0 {
			return time.Time{}
		}
		return after.Add(t.Every)
	default:
		return time.Time{}
	}
}

// Expired reports whether a one-shot trigger is already in the past.
func (t Trigger) Expired(now time.Time) bool {
	return t.Kind == KindOnce && !now.Before(t.At)
}

// Spec renders the trigger in cron notation for logs and summaries.
func (t Trigger) Spec() string {
	switch t.Kind {
	case KindOnce:
		return "@once " + t.At.Format(time.RFC3339)
	case KindCalendar:
		if t.Days == 7 {
			return fmt.Sprintf("0 %d %d * * %d", t.At.Minute(), t.At.Hour(), int(t.At.Weekday()))
		}
		if t.Days == 1 {
			return fmt.Sprintf("0 %d %d * * *", t.At.Minute(), t.At.Hour())
		}
		return fmt.Sprintf("@every %dd from %s", t.Days, t.At.Format(time.RFC3339))
	case KindInterval:
		return "@every " + formatEvery(t.Every)
	default:
		return "@never"
	}
}

func formatEvery(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

// Describe returns a short human-readable label for a repeat policy.
func Describe(r model.Reminder) string {
	switch r.Repeat {
	case model.RepeatDaily:
		return "every day at " + model.TimeOfDayOf(r.ReminderTime).String()
	case model.RepeatWeekly:
		return fmt.Sprintf("every %s at %s", r.ReminderTime.Weekday(), model.TimeOfDayOf(r.ReminderTime))
	case model.RepeatCustom:
		return "every " + formatEvery(time.Duration(r.IntervalMinutes())*time.Minute)
	default:
		return "once at " + r.ReminderTime.Format("2006-01-02 15:04")
	}
}
