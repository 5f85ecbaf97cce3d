package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zut-mobile/plan-api/internal/models"
	"github.com/zut-mobile/plan-api/pkg/config"
)

func testLayoutEngine(t *testing.T) *LayoutEngine {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	return NewLayoutEngine(config.PlanConfig{StartHour: 6, EndHour: 22, HourHeightPx: 48}, loc)
}

func rawEvent(subject, form, start, end string) models.PlanEventRaw {
	return models.PlanEventRaw{
		Subject:         subject,
		LessonForm:      form,
		LessonFormShort: "",
		Start:           start,
		End:             end,
	}
}

func TestLayoutDayPositionsSingleEvent(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Analiza matematyczna", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	})
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, 480, event.StartMin)
	assert.Equal(t, 570, event.EndMin)
	assert.InDelta(t, 96.0, event.TopPx, 0.001)
	assert.InDelta(t, 72.0, event.HeightPx, 0.001)
	assert.InDelta(t, 0.0, event.LeftPct, 0.001)
	assert.InDelta(t, 100.0, event.WidthPct, 0.001)
	assert.Equal(t, "08:00", event.StartStr)
	assert.Equal(t, "09:30", event.EndStr)
}

func TestLayoutDayAssignsLanesForOverlappingRun(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("A", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
		rawEvent("B", "laboratorium", "2026-03-02T09:00:00", "2026-03-02T10:00:00"),
		rawEvent("C", "audytoryjne", "2026-03-02T09:15:00", "2026-03-02T09:45:00"),
	})
	require.Len(t, events, 3)

	// B overlaps A and C overlaps B, so all three form one cluster even
	// though C never touches A.
	lanes := map[float64]bool{}
	for _, event := range events {
		assert.InDelta(t, 100.0/3.0, event.WidthPct, 0.001)
		lanes[event.LeftPct] = true
	}
	assert.Len(t, lanes, 3)

	// Same-lane events must not overlap in time.
	for i := range events {
		for j := i + 1; j < len(events); j++ {
			if events[i].LeftPct == events[j].LeftPct {
				noOverlap := events[i].EndMin <= events[j].StartMin || events[j].EndMin <= events[i].StartMin
				assert.True(t, noOverlap)
			}
		}
	}
}

func TestLayoutDayReusesFreedLane(t *testing.T) {
	engine := testLayoutEngine(t)

	// The third event starts after the first ends, so it reuses lane 0 and
	// the cluster needs only two lanes.
	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("A", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:00:00"),
		rawEvent("B", "laboratorium", "2026-03-02T08:30:00", "2026-03-02T10:00:00"),
		rawEvent("C", "audytoryjne", "2026-03-02T09:00:00", "2026-03-02T09:45:00"),
	})
	require.Len(t, events, 3)

	for _, event := range events {
		assert.InDelta(t, 50.0, event.WidthPct, 0.001)
	}
	assert.InDelta(t, 0.0, events[0].LeftPct, 0.001)
	assert.InDelta(t, 50.0, events[1].LeftPct, 0.001)
	assert.InDelta(t, 0.0, events[2].LeftPct, 0.001)
}

func TestLayoutDaySeparatesDisjointClusters(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("A", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:00:00"),
		rawEvent("B", "wykład", "2026-03-02T10:00:00", "2026-03-02T11:00:00"),
	})
	require.Len(t, events, 2)
	for _, event := range events {
		assert.InDelta(t, 100.0, event.WidthPct, 0.001)
	}
}

func TestLayoutDayClipsToVisibleWindow(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Wczesne", "wykład", "2026-03-02T05:00:00", "2026-03-02T07:00:00"),
	})
	require.Len(t, events, 1)

	// Clipped to 06:00, so the block starts at the very top of the day.
	assert.InDelta(t, 0.0, events[0].TopPx, 0.001)
	assert.InDelta(t, 48.0, events[0].HeightPx, 0.001)
}

func TestLayoutDayDropsEventsOutsideWindow(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Nocne", "wykład", "2026-03-02T23:00:00", "2026-03-02T23:45:00"),
		rawEvent("Poranne", "wykład", "2026-03-02T04:00:00", "2026-03-02T05:30:00"),
	})
	assert.Empty(t, events)
}

func TestLayoutDayEnforcesMinimumHeight(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Krótkie", "wykład", "2026-03-02T08:00:00", "2026-03-02T08:05:00"),
	})
	require.Len(t, events, 1)
	assert.GreaterOrEqual(t, events[0].HeightPx, minEventHeightPx)
}

func TestLayoutDaySkipsUnparsableEvents(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Złe", "wykład", "not-a-date", "2026-03-02T09:00:00"),
		rawEvent("Dobre", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:00:00"),
	})
	require.Len(t, events, 1)
	assert.Equal(t, "Dobre", events[0].Title)
}

func TestLayoutDayBuildsTooltipAndSubjectKey(t *testing.T) {
	engine := testLayoutEngine(t)

	events := engine.LayoutDay([]models.PlanEventRaw{
		{
			Subject:         "Programowanie",
			LessonForm:      "laboratorium",
			LessonFormShort: "L",
			GroupName:       "ICY1",
			Room:            "WI1-115",
			WorkerTitle:     "dr inż. Jan Kowalski",
			Start:           "2026-03-02T10:15:00",
			End:             "2026-03-02T11:45:00",
		},
	})
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "Programowanie (L)", event.Title)
	assert.Equal(t, "Programowanie (L) | 10:15 - 11:45 | sala: WI1-115 | grupa: ICY1 | dr inż. Jan Kowalski", event.Tooltip)
	assert.Equal(t, "Programowanie||lab", event.SubjectKey)
	assert.Equal(t, typeClassLab, event.TypeClass)
}
