package models

import "time"

// CustomEventKind distinguishes user-created plan entries.
type CustomEventKind string

const (
	CustomEventExam CustomEventKind = "exam"
	CustomEventPass CustomEventKind = "pass"
	CustomEventTest CustomEventKind = "test"
)

// Label returns the Polish display name for the kind.
func (k CustomEventKind) Label() string {
	switch k {
	case CustomEventExam:
		return "Egzamin"
	case CustomEventPass:
		return "Zaliczenie"
	case CustomEventTest:
		return "Kolokwium"
	default:
		return ""
	}
}

// ShortLabel returns the badge text used when the event overlays a lesson.
func (k CustomEventKind) ShortLabel() string {
	switch k {
	case CustomEventExam:
		return "EGZ"
	case CustomEventPass:
		return "ZAL"
	case CustomEventTest:
		return "KOL"
	default:
		return ""
	}
}

// CustomEvent is a user-authored plan entry (exam, pass or test). Stored
// independently of fetched schedule data; never produced by the fetcher.
type CustomEvent struct {
	ID          string          `db:"id" json:"id"`
	SubjectName string          `db:"subject_name" json:"subjectName"`
	Kind        CustomEventKind `db:"kind" json:"kind"`
	Date        string          `db:"event_date" json:"date"`
	StartTime   string          `db:"start_time" json:"startTime"`
	EndTime     string          `db:"end_time" json:"endTime"`
	Notes       string          `db:"notes" json:"notes"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}
