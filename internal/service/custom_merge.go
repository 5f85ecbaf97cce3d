package service

import (
	"strings"

	"github.com/zut-mobile/plan-api/internal/models"
)

// defaultCustomEventMinutes is the standalone block length when the user
// gave no end time.
const defaultCustomEventMinutes = 90

// MergeCustomEvents overlays user-authored events onto a laid-out day.
//
// Each custom event first tries to attach to an existing lesson: the lesson
// title must contain the subject name, the kind must be compatible (exams
// attach to lecture-like lessons, passes and tests to everything else) and,
// when the custom event carries a start time, it must equal the lesson's
// start minute. First match wins. Unmatched events with a parsable start time
// are injected as standalone full-width blocks; they deliberately skip the
// cluster/lane pass.
func (l *LayoutEngine) MergeCustomEvents(events []models.PlanEventUI, customEvents []models.CustomEvent) []models.PlanEventUI {
	if len(customEvents) == 0 {
		return events
	}

	merged := make([]models.PlanEventUI, len(events))
	copy(merged, events)

	for _, custom := range customEvents {
		subject := strings.ToLower(custom.SubjectName)
		matched := false

		for i := range merged {
			title := strings.ToLower(merged[i].Title)
			if subject == "" || !strings.Contains(title, subject) {
				continue
			}

			typeClass := strings.ToLower(merged[i].TypeClass)
			isLecture := strings.Contains(typeClass, "lec") || strings.HasSuffix(merged[i].Title, "(W)")
			typeMatches := isLecture
			if custom.Kind != models.CustomEventExam {
				typeMatches = !isLecture
			}

			timeMatches := true
			if customStart, ok := parseTimeMinutes(custom.StartTime); ok {
				timeMatches = customStart == merged[i].StartMin
			}

			if typeMatches && timeMatches {
				merged[i].HasCustomOverlay = true
				merged[i].CustomOverlayLabel = custom.Kind.ShortLabel()
				merged[i].CustomEventID = custom.ID
				merged[i].CustomEventKind = string(custom.Kind)
				if custom.Notes != "" {
					merged[i].Tooltip = custom.Notes
				}
				matched = true
				break
			}
		}

		if matched {
			continue
		}

		startMin, ok := parseTimeMinutes(custom.StartTime)
		if !ok {
			continue
		}
		endMin, ok := parseTimeMinutes(custom.EndTime)
		if !ok {
			endMin = startMin + defaultCustomEventMinutes
		}

		merged = append(merged, models.PlanEventUI{
			StartMin:        startMin,
			EndMin:          endMin,
			TopPx:           float64(startMin-l.startHour*60) / 60.0 * l.hourHeightPx,
			HeightPx:        float64(endMin-startMin) / 60.0 * l.hourHeightPx,
			LeftPct:         0,
			WidthPct:        100,
			Title:           custom.SubjectName,
			StartStr:        custom.StartTime,
			EndStr:          custom.EndTime,
			Tooltip:         custom.Notes,
			TypeClass:       "custom-" + string(custom.Kind),
			TypeLabel:       custom.Kind.Label(),
			SubjectKey:      "custom-" + custom.ID,
			IsCustomEvent:   true,
			CustomEventKind: string(custom.Kind),
			CustomEventID:   custom.ID,
		})
	}

	sortEventsByTime(merged)
	return merged
}
