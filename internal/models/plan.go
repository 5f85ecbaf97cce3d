package models

import "fmt"

// ViewMode selects the calendar window a plan request covers.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// Valid reports whether the mode is one of day/week/month.
func (m ViewMode) Valid() bool {
	switch m {
	case ViewDay, ViewWeek, ViewMonth:
		return true
	default:
		return false
	}
}

// PlanEventRaw is a single lesson row as returned by the remote schedule
// source. All fields are kept as strings; the upstream service is loose about
// types and empty values. Produced only by the schedule source repository.
type PlanEventRaw struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Start             string `json:"start"`
	End               string `json:"end"`
	WorkerTitle       string `json:"worker_title"`
	Worker            string `json:"worker"`
	LessonForm        string `json:"lesson_form"`
	LessonFormShort   string `json:"lesson_form_short"`
	GroupName         string `json:"group_name"`
	TokName           string `json:"tok_name"`
	Room              string `json:"room"`
	LessonStatus      string `json:"lesson_status"`
	LessonStatusShort string `json:"lesson_status_short"`
	Subject           string `json:"subject"`
	Hours             string `json:"hours"`
	Color             string `json:"color"`
	BorderColor       string `json:"borderColor"`
}

// DayBucket maps a YYYY-MM-DD key to that day's events sorted by start time.
// Days without events are absent, never stored as empty slices.
type DayBucket map[string][]PlanEventRaw

// ScheduleSnapshot is the full known schedule for one album, plus per-scope
// freshness stamps. One snapshot per album; persisted as a whole.
type ScheduleSnapshot struct {
	Album          string           `json:"album"`
	CapturedAt     int64            `json:"captured_at"`
	ByDay          DayBucket        `json:"by_day"`
	ScopeFetchedAt map[string]int64 `json:"scope_fetched_at"`
}

// PlanEventUI is a pixel-positioned, lane-assigned event ready for rendering.
// Computed fresh on every layout pass and never persisted.
type PlanEventUI struct {
	StartMin int     `json:"startMin"`
	EndMin   int     `json:"endMin"`
	TopPx    float64 `json:"topPx"`
	HeightPx float64 `json:"heightPx"`
	LeftPct  float64 `json:"leftPct"`
	WidthPct float64 `json:"widthPct"`

	Title      string `json:"title"`
	Room       string `json:"room"`
	Group      string `json:"group"`
	StartStr   string `json:"startStr"`
	EndStr     string `json:"endStr"`
	Tooltip    string `json:"tooltip"`
	TypeClass  string `json:"typeClass"`
	TypeLabel  string `json:"typeLabel"`
	SubjectKey string `json:"subjectKey"`
	Teacher    string `json:"teacher"`

	IsCustomEvent      bool   `json:"isCustomEvent,omitempty"`
	CustomEventKind    string `json:"customEventKind,omitempty"`
	HasCustomOverlay   bool   `json:"hasCustomOverlay,omitempty"`
	CustomOverlayLabel string `json:"customOverlayLabel,omitempty"`
	CustomEventID      string `json:"customEventId,omitempty"`
}

// ID derives a stable identity key for the event.
func (e PlanEventUI) ID() string {
	base := fmt.Sprintf("%d-%d-%s-%s-%s", e.StartMin, e.EndMin, e.Title, e.SubjectKey, e.TypeClass)
	if e.CustomEventID != "" {
		return base + "-" + e.CustomEventID
	}
	return base
}

// PlanDayColumn holds one day's laid-out events.
type PlanDayColumn struct {
	Date   string        `json:"date"`
	Events []PlanEventUI `json:"events"`
}

// PlanMonthCell is one day cell of the month grid; nil cells pad the edges of
// the first and last week rows.
type PlanMonthCell struct {
	Date    string `json:"date"`
	HasPlan bool   `json:"hasPlan"`
}

// SubjectFilterItem is one (subject, lesson type) combination observed within
// an academic range. Derived, never persisted.
type SubjectFilterItem struct {
	Label     string `json:"label"`
	TypeKey   string `json:"typeKey"`
	TypeLabel string `json:"typeLabel"`
	FilterKey string `json:"filterKey"`
}

// RequestLog captures per-request fetch diagnostics. Side-channel only.
type RequestLog struct {
	URL       string `json:"url"`
	HTTPCode  int    `json:"httpCode"`
	JSONOk    bool   `json:"jsonOk"`
	JSONCount int    `json:"jsonCount"`
}

// PlanDiagnostics aggregates fetch diagnostics for a single plan request.
type PlanDiagnostics struct {
	Album        string       `json:"album"`
	View         string       `json:"view"`
	RangeStart   string       `json:"rangeStart"`
	RangeEnd     string       `json:"rangeEnd"`
	EntriesTotal int          `json:"entriesTotal"`
	DaysWithData []string     `json:"daysWithData"`
	Requests     []RequestLog `json:"requests"`
}

// PlanResult is the assembled view model for one plan request.
type PlanResult struct {
	ViewMode    ViewMode `json:"viewMode"`
	CurrentDate string   `json:"currentDate"`
	RangeStart  string   `json:"rangeStart"`
	RangeEnd    string   `json:"rangeEnd"`

	DayColumns          []PlanDayColumn `json:"dayColumns"`
	HasAnyEventsInRange bool            `json:"hasAnyEventsInRange"`

	MonthGrid [][]*PlanMonthCell `json:"monthGrid,omitempty"`

	PrevDate    string `json:"prevDate"`
	NextDate    string `json:"nextDate"`
	TodayDate   string `json:"todayDate"`
	HeaderLabel string `json:"headerLabel"`

	Diagnostics PlanDiagnostics `json:"diagnostics"`
}

// Semester identifies an academic term when requesting per-semester filters.
type Semester struct {
	AcademicYear string `json:"academicYear"`
	TermName     string `json:"termName"`
	Number       string `json:"number"`
}
