package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zut-mobile/plan-api/internal/models"
)

func TestMergeCustomEventsOverlaysExamOnLecture(t *testing.T) {
	engine := testLayoutEngine(t)

	day := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Analiza matematyczna", "wykład", "2026-03-02T10:00:00", "2026-03-02T11:30:00"),
		rawEvent("Analiza matematyczna", "laboratorium", "2026-03-02T12:00:00", "2026-03-02T13:30:00"),
	})
	require.Len(t, day, 2)

	merged := engine.MergeCustomEvents(day, []models.CustomEvent{
		{
			ID:          "ce-1",
			SubjectName: "Analiza matematyczna",
			Kind:        models.CustomEventExam,
			Date:        "2026-03-02",
			StartTime:   "10:00",
		},
	})
	require.Len(t, merged, 2)

	// The exam attaches to the lecture, not the lab.
	assert.True(t, merged[0].HasCustomOverlay)
	assert.Equal(t, "EGZ", merged[0].CustomOverlayLabel)
	assert.Equal(t, "ce-1", merged[0].CustomEventID)
	assert.False(t, merged[1].HasCustomOverlay)
}

func TestMergeCustomEventsMatchesPassToNonLecture(t *testing.T) {
	engine := testLayoutEngine(t)

	day := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Fizyka", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
		rawEvent("Fizyka", "audytoryjne", "2026-03-02T10:00:00", "2026-03-02T11:30:00"),
	})
	require.Len(t, day, 2)

	merged := engine.MergeCustomEvents(day, []models.CustomEvent{
		{ID: "ce-2", SubjectName: "Fizyka", Kind: models.CustomEventPass},
	})
	require.Len(t, merged, 2)

	assert.False(t, merged[0].HasCustomOverlay)
	assert.True(t, merged[1].HasCustomOverlay)
	assert.Equal(t, "ZAL", merged[1].CustomOverlayLabel)
}

func TestMergeCustomEventsRespectsStartTime(t *testing.T) {
	engine := testLayoutEngine(t)

	day := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Fizyka", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
		rawEvent("Fizyka", "wykład", "2026-03-02T12:00:00", "2026-03-02T13:30:00"),
	})
	require.Len(t, day, 2)

	merged := engine.MergeCustomEvents(day, []models.CustomEvent{
		{ID: "ce-3", SubjectName: "Fizyka", Kind: models.CustomEventExam, StartTime: "12:00"},
	})

	assert.False(t, merged[0].HasCustomOverlay)
	assert.True(t, merged[1].HasCustomOverlay)
}

func TestMergeCustomEventsInjectsStandaloneBlock(t *testing.T) {
	engine := testLayoutEngine(t)

	day := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("Fizyka", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	})
	require.Len(t, day, 1)

	merged := engine.MergeCustomEvents(day, []models.CustomEvent{
		{
			ID:          "ce-4",
			SubjectName: "Chemia",
			Kind:        models.CustomEventTest,
			StartTime:   "14:00",
			Notes:       "Kolokwium z całego semestru",
		},
	})
	require.Len(t, merged, 2)

	injected := merged[1]
	assert.True(t, injected.IsCustomEvent)
	assert.Equal(t, "Chemia", injected.Title)
	assert.Equal(t, 14*60, injected.StartMin)
	// No end time given: the block defaults to 90 minutes.
	assert.Equal(t, 14*60+defaultCustomEventMinutes, injected.EndMin)
	// Standalone blocks render full width and never join lanes.
	assert.InDelta(t, 100.0, injected.WidthPct, 0.001)
	assert.InDelta(t, 0.0, injected.LeftPct, 0.001)
	assert.Equal(t, "custom-test", injected.TypeClass)
	assert.Equal(t, "Kolokwium", injected.TypeLabel)
	assert.Equal(t, "Kolokwium z całego semestru", injected.Tooltip)
}

func TestMergeCustomEventsStandaloneKeepsExistingGeometry(t *testing.T) {
	engine := testLayoutEngine(t)

	day := engine.LayoutDay([]models.PlanEventRaw{
		rawEvent("A", "wykład", "2026-03-02T10:00:00", "2026-03-02T11:30:00"),
		rawEvent("B", "laboratorium", "2026-03-02T10:00:00", "2026-03-02T11:30:00"),
	})
	require.Len(t, day, 2)

	merged := engine.MergeCustomEvents(day, []models.CustomEvent{
		{ID: "ce-5", SubjectName: "Chemia", Kind: models.CustomEventExam, StartTime: "10:30", EndTime: "11:00"},
	})
	require.Len(t, merged, 3)

	// The half-width lanes of the fetched events are untouched even though
	// the injected block overlaps them.
	for _, event := range merged {
		if event.IsCustomEvent {
			assert.InDelta(t, 100.0, event.WidthPct, 0.001)
		} else {
			assert.InDelta(t, 50.0, event.WidthPct, 0.001)
		}
	}
}

func TestMergeCustomEventsWithoutParsableTimeIsDropped(t *testing.T) {
	engine := testLayoutEngine(t)

	merged := engine.MergeCustomEvents(nil, []models.CustomEvent{
		{ID: "ce-6", SubjectName: "Chemia", Kind: models.CustomEventExam},
	})
	assert.Empty(t, merged)
}
