package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zut-mobile/plan-api/internal/models"
	"github.com/zut-mobile/plan-api/pkg/config"
)

const (
	// minEventMinutes keeps degenerate events visible after clipping.
	minEventMinutes = 15
	// minEventHeightPx keeps short events legible and tappable.
	minEventHeightPx = 22.0
)

// LayoutEngine converts a day's raw events into pixel-positioned,
// lane-assigned UI events. Pure computation, safe for concurrent use.
type LayoutEngine struct {
	startHour    int
	endHour      int
	hourHeightPx float64
	loc          *time.Location
}

// NewLayoutEngine constructs the engine from plan configuration, falling back
// to the 06:00-22:00 window at 48px per hour.
func NewLayoutEngine(cfg config.PlanConfig, loc *time.Location) *LayoutEngine {
	startHour := cfg.StartHour
	endHour := cfg.EndHour
	if endHour <= startHour {
		startHour, endHour = 6, 22
	}
	hourHeight := cfg.HourHeightPx
	if hourHeight <= 0 {
		hourHeight = 48
	}
	if loc == nil {
		loc = time.Local
	}
	return &LayoutEngine{startHour: startHour, endHour: endHour, hourHeightPx: hourHeight, loc: loc}
}

// LayoutDay lays out one day's events: clips them to the visible window,
// clusters temporally overlapping runs and distributes each cluster into
// side-by-side lanes. Events fully outside the window vanish; unparsable
// events are skipped without failing the rest of the day.
func (l *LayoutEngine) LayoutDay(rawEvents []models.PlanEventRaw) []models.PlanEventUI {
	if len(rawEvents) == 0 {
		return nil
	}

	windowStartMin := l.startHour * 60
	windowEndMin := l.endHour * 60

	events := make([]models.PlanEventUI, 0, len(rawEvents))
	for _, event := range rawEvents {
		startAt, ok := parsePlanTimestamp(event.Start, l.loc)
		if !ok {
			continue
		}
		endAt, ok := parsePlanTimestamp(event.End, l.loc)
		if !ok {
			continue
		}

		startMin := minutesFromMidnight(startAt)
		endMin := minutesFromMidnight(endAt)

		if endMin <= windowStartMin || startMin >= windowEndMin {
			continue
		}

		clippedStart := max(startMin, windowStartMin)
		clippedEnd := min(endMin, windowEndMin)
		duration := max(clippedEnd-clippedStart, minEventMinutes)
		offset := clippedStart - windowStartMin

		topPx := float64(offset) / 60.0 * l.hourHeightPx
		heightPx := float64(duration) / 60.0 * l.hourHeightPx
		if heightPx < minEventHeightPx {
			heightPx = minEventHeightPx
		}

		subject := event.Subject
		if subject == "" {
			subject = event.Title
		}
		title := subject
		if shortForm := strings.TrimSpace(event.LessonFormShort); shortForm != "" {
			title = fmt.Sprintf("%s (%s)", subject, shortForm)
		}
		teacher := event.WorkerTitle
		if teacher == "" {
			teacher = event.Worker
		}
		startStr := startAt.Format("15:04")
		endStr := endAt.Format("15:04")

		tooltip := fmt.Sprintf("%s | %s - %s", title, startStr, endStr)
		if event.Room != "" {
			tooltip += " | sala: " + event.Room
		}
		if event.GroupName != "" {
			tooltip += " | grupa: " + event.GroupName
		}
		if teacher != "" {
			tooltip += " | " + teacher
		}

		subjectKey := ""
		if typeKey, ok := resolveFilterTypeKey(event); ok && subject != "" {
			subjectKey = subject + "||" + typeKey
		}

		events = append(events, models.PlanEventUI{
			StartMin:   startMin,
			EndMin:     endMin,
			TopPx:      topPx,
			HeightPx:   heightPx,
			LeftPct:    0,
			WidthPct:   100,
			Title:      title,
			Room:       event.Room,
			Group:      event.GroupName,
			StartStr:   startStr,
			EndStr:     endStr,
			Tooltip:    tooltip,
			TypeClass:  eventTypeClass(event),
			TypeLabel:  eventTypeLabel(event),
			SubjectKey: subjectKey,
			Teacher:    teacher,
		})
	}

	sortEventsByTime(events)

	laidOut := make([]models.PlanEventUI, 0, len(events))
	for _, cluster := range clusterOverlapping(events) {
		laidOut = append(laidOut, assignLanes(cluster)...)
	}
	return laidOut
}

// clusterOverlapping walks time-sorted events and groups them into maximal
// runs of transitively overlapping ranges. A cluster closes once an event
// starts at or after the running maximum end.
func clusterOverlapping(events []models.PlanEventUI) [][]models.PlanEventUI {
	var clusters [][]models.PlanEventUI
	var current []models.PlanEventUI
	clusterEnd := 0

	for _, event := range events {
		switch {
		case len(current) == 0:
			current = []models.PlanEventUI{event}
			clusterEnd = event.EndMin
		case event.StartMin < clusterEnd:
			current = append(current, event)
			if event.EndMin > clusterEnd {
				clusterEnd = event.EndMin
			}
		default:
			clusters = append(clusters, current)
			current = []models.PlanEventUI{event}
			clusterEnd = event.EndMin
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}
	return clusters
}

// assignLanes greedily places each cluster event into the first lane whose
// previous occupant has ended, opening a new lane otherwise. Lane count is
// therefore the maximum simultaneous overlap, and width splits evenly per
// cluster.
func assignLanes(cluster []models.PlanEventUI) []models.PlanEventUI {
	var laneEnds []int
	lanes := make([]int, len(cluster))

	for i, event := range cluster {
		assigned := false
		for lane := range laneEnds {
			if event.StartMin >= laneEnds[lane] {
				laneEnds[lane] = event.EndMin
				lanes[i] = lane
				assigned = true
				break
			}
		}
		if !assigned {
			lanes[i] = len(laneEnds)
			laneEnds = append(laneEnds, event.EndMin)
		}
	}

	laneCount := len(laneEnds)
	if laneCount < 1 {
		laneCount = 1
	}
	laneWidth := 100.0 / float64(laneCount)
	out := make([]models.PlanEventUI, len(cluster))
	for i, event := range cluster {
		event.LeftPct = float64(lanes[i]) * laneWidth
		event.WidthPct = laneWidth
		out[i] = event
	}
	return out
}

func sortEventsByTime(events []models.PlanEventUI) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartMin == events[j].StartMin {
			return events[i].EndMin < events[j].EndMin
		}
		return events[i].StartMin < events[j].StartMin
	})
}
