package service

import (
	"strconv"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

var plWeekdaysShort = [7]string{"niedz.", "pon.", "wt.", "śr.", "czw.", "pt.", "sob."}

var plMonths = [12]string{
	"Styczeń", "Luty", "Marzec", "Kwiecień", "Maj", "Czerwiec",
	"Lipiec", "Sierpień", "Wrzesień", "Październik", "Listopad", "Grudzień",
}

func dayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}

// startOfWeekMonday returns the Monday of the week containing t, regardless
// of locale.
func startOfWeekMonday(t time.Time) time.Time {
	t = startOfDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}

// addMonths shifts t by n months, clamping the day so that e.g. Jan 31 moves
// to Feb 28 instead of overflowing into March.
func addMonths(t time.Time, n int) time.Time {
	first := startOfMonth(t).AddDate(0, n, 0)
	day := t.Day()
	if last := endOfMonth(first).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func enumerateDays(start, end time.Time) []time.Time {
	var days []time.Time
	cursor := startOfDay(start)
	target := startOfDay(end)
	for !cursor.After(target) {
		days = append(days, cursor)
		cursor = cursor.AddDate(0, 0, 1)
	}
	return days
}

// dayOfWeekMondayFirst maps Monday to 1 through Sunday to 7.
func dayOfWeekMondayFirst(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

func minutesFromMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// parsePlanTimestamp accepts the timestamp shapes the planner emits: RFC 3339
// with or without fractional seconds, or a bare local datetime.
func parsePlanTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseTimeMinutes converts "HH:MM" into minutes from midnight.
func parseTimeMinutes(raw string) (int, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	return hour*60 + minute, true
}
