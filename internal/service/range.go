package service

import (
	"fmt"
	"time"

	"github.com/zut-mobile/plan-api/internal/models"
)

// ResolveRange computes the inclusive calendar window a view mode displays
// around the anchor date. Weeks always run Monday through Sunday.
func ResolveRange(mode models.ViewMode, anchor time.Time) (time.Time, time.Time) {
	switch mode {
	case models.ViewDay:
		day := startOfDay(anchor)
		return day, day
	case models.ViewWeek:
		monday := startOfWeekMonday(anchor)
		return monday, monday.AddDate(0, 0, 6)
	case models.ViewMonth:
		return startOfMonth(anchor), endOfMonth(anchor)
	default:
		day := startOfDay(anchor)
		return day, day
	}
}

// Neighbors returns the previous and next navigation anchors for the mode.
func Neighbors(mode models.ViewMode, anchor time.Time) (time.Time, time.Time) {
	anchor = startOfDay(anchor)
	switch mode {
	case models.ViewDay:
		return anchor.AddDate(0, 0, -1), anchor.AddDate(0, 0, 1)
	case models.ViewWeek:
		return anchor.AddDate(0, 0, -7), anchor.AddDate(0, 0, 7)
	case models.ViewMonth:
		return addMonths(anchor, -1), addMonths(anchor, 1)
	default:
		return anchor, anchor
	}
}

// HeaderLabel renders the human-readable range header for the view.
func HeaderLabel(mode models.ViewMode, anchor, rangeStart, rangeEnd time.Time) string {
	switch mode {
	case models.ViewDay:
		return dayHeaderLabel(anchor)
	case models.ViewWeek:
		return fmt.Sprintf("%s - %s", rangeStart.Format("02.01"), rangeEnd.Format("02.01.2006"))
	case models.ViewMonth:
		return fmt.Sprintf("%s %d", plMonths[anchor.Month()-1], anchor.Year())
	default:
		return ""
	}
}

// dayHeaderLabel renders "dd.mm.yyyy (weekday)" with the Polish short
// weekday name.
func dayHeaderLabel(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format("02.01.2006"), plWeekdaysShort[int(t.Weekday())])
}
