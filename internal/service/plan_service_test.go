package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
	"github.com/zut-mobile/plan-api/pkg/config"
)

type stubSearchSource struct {
	events      []models.PlanEventRaw
	suggestions []string
	err         error
}

func (s *stubSearchSource) FetchSearch(ctx context.Context, category, query string, rangeStart, rangeEnd time.Time) ([]models.PlanEventRaw, []models.RequestLog, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.events, []models.RequestLog{{URL: "search", HTTPCode: 200, JSONOk: true, JSONCount: len(s.events)}}, nil
}

func (s *stubSearchSource) FetchSuggestions(ctx context.Context, kind, query string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.suggestions, nil
}

type stubCustomSource struct {
	events []models.CustomEvent
	err    error
}

func (s *stubCustomSource) ListForRange(ctx context.Context, from, to string) ([]models.CustomEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func testPlanService(t *testing.T, album string, source *stubScheduleSource, custom customEventSource) *PlanService {
	t.Helper()
	loc := warsaw(t)
	cache := NewScopeCache(source, &stubSnapshotStore{}, 20*time.Minute, loc, zap.NewNop())
	layout := NewLayoutEngine(config.PlanConfig{StartHour: 6, EndHour: 22, HourHeightPx: 48}, loc)
	return NewPlanService(NewStaticAlbumProvider(album), cache, layout, &stubSearchSource{}, custom, 12*time.Hour, loc, zap.NewNop())
}

func TestLoadPlanWeekBuildsColumns(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
		rawEvent("Fizyka", "laboratorium", "2026-03-04T10:00:00", "2026-03-04T11:30:00"),
	}}
	svc := testPlanService(t, "123456", source, nil)

	result, err := svc.LoadPlan(context.Background(), models.ViewWeek, time.Date(2026, 3, 4, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", result.RangeStart)
	assert.Equal(t, "2026-03-08", result.RangeEnd)
	require.Len(t, result.DayColumns, 7)
	assert.Len(t, result.DayColumns[0].Events, 1)
	assert.Len(t, result.DayColumns[2].Events, 1)
	assert.Empty(t, result.DayColumns[6].Events)

	assert.True(t, result.HasAnyEventsInRange)
	assert.Equal(t, "123456", result.Diagnostics.Album)
	assert.Equal(t, 2, result.Diagnostics.EntriesTotal)
	assert.Equal(t, []string{"2026-03-02", "2026-03-04"}, result.Diagnostics.DaysWithData)
	assert.NotEmpty(t, result.Diagnostics.Requests)

	assert.Equal(t, "2026-02-25", result.PrevDate)
	assert.Equal(t, "2026-03-11", result.NextDate)
	assert.Equal(t, "02.03 - 08.03.2026", result.HeaderLabel)
}

func TestLoadPlanRejectsUnknownMode(t *testing.T) {
	svc := testPlanService(t, "123456", &stubScheduleSource{}, nil)

	_, err := svc.LoadPlan(context.Background(), models.ViewMode("year"), time.Now(), false, false)
	assert.Error(t, err)
}

func TestLoadPlanWithoutAlbumReturnsEmptyResult(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{}
	svc := testPlanService(t, "", source, nil)

	result, err := svc.LoadPlan(context.Background(), models.ViewDay, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)
	assert.Empty(t, result.DayColumns)
	assert.False(t, result.HasAnyEventsInRange)
	// No album means no fetch at all.
	assert.Equal(t, 0, source.rangeCalls)
}

func TestLoadPlanMonthGrid(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}
	svc := testPlanService(t, "123456", source, nil)

	result, err := svc.LoadPlan(context.Background(), models.ViewMonth, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)

	// March 2026 starts on a Sunday, so the first row is padded with six
	// nil cells, and the month spans six Monday-first rows.
	require.Len(t, result.MonthGrid, 6)
	for i := 0; i < 6; i++ {
		assert.Nil(t, result.MonthGrid[0][i])
	}
	require.NotNil(t, result.MonthGrid[0][6])
	assert.Equal(t, "2026-03-01", result.MonthGrid[0][6].Date)

	// The lesson on March 2 marks its cell.
	require.NotNil(t, result.MonthGrid[1][0])
	assert.Equal(t, "2026-03-02", result.MonthGrid[1][0].Date)
	assert.True(t, result.MonthGrid[1][0].HasPlan)
	require.NotNil(t, result.MonthGrid[1][1])
	assert.False(t, result.MonthGrid[1][1].HasPlan)

	// March 31 is a Tuesday; the rest of the last row is nil padding.
	last := result.MonthGrid[5]
	require.NotNil(t, last[1])
	assert.Equal(t, "2026-03-31", last[1].Date)
	for i := 2; i < 7; i++ {
		assert.Nil(t, last[i])
	}

	assert.Empty(t, result.DayColumns)
}

func TestLoadPlanDiagnosticsCoverOnlyRequestedRange(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}
	svc := testPlanService(t, "123456", source, nil)

	// Warm the snapshot with the week of March 2.
	warm, err := svc.LoadPlan(context.Background(), models.ViewWeek, time.Date(2026, 3, 4, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)
	require.True(t, warm.HasAnyEventsInRange)

	// The following week has no lessons; days retained in the snapshot from
	// the earlier fetch must not leak into its diagnostics.
	source.events = nil
	result, err := svc.LoadPlan(context.Background(), models.ViewWeek, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)

	assert.False(t, result.HasAnyEventsInRange)
	assert.Equal(t, 0, result.Diagnostics.EntriesTotal)
	assert.Empty(t, result.Diagnostics.DaysWithData)
	require.Len(t, result.DayColumns, 7)
	for _, column := range result.DayColumns {
		assert.Empty(t, column.Events)
	}
}

func TestLoadPlanForceFullFallsBackToCachedData(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}
	svc := testPlanService(t, "123456", source, nil)

	anchor := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	_, err := svc.LoadPlan(context.Background(), models.ViewDay, anchor, false, false)
	require.NoError(t, err)

	// The full refresh fails but the cached scope still renders.
	source.err = errors.New("upstream down")
	result, err := svc.LoadPlan(context.Background(), models.ViewDay, anchor, true, false)
	require.NoError(t, err)
	assert.True(t, result.HasAnyEventsInRange)
}

func TestLoadPlanMergesCustomEvents(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}
	custom := &stubCustomSource{events: []models.CustomEvent{
		{ID: "ce-1", SubjectName: "Analiza", Kind: models.CustomEventExam, Date: "2026-03-02", StartTime: "08:00"},
	}}
	svc := testPlanService(t, "123456", source, custom)

	result, err := svc.LoadPlan(context.Background(), models.ViewDay, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)

	require.Len(t, result.DayColumns, 1)
	require.Len(t, result.DayColumns[0].Events, 1)
	assert.True(t, result.DayColumns[0].Events[0].HasCustomOverlay)
}

func TestLoadPlanSurvivesCustomEventFailure(t *testing.T) {
	loc := warsaw(t)
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}
	svc := testPlanService(t, "123456", source, &stubCustomSource{err: errors.New("db down")})

	result, err := svc.LoadPlan(context.Background(), models.ViewDay, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), false, false)
	require.NoError(t, err)
	assert.True(t, result.HasAnyEventsInRange)
}

func TestSearchPlanLaysOutResults(t *testing.T) {
	loc := warsaw(t)
	svc := testPlanService(t, "123456", &stubScheduleSource{}, nil)
	svc.search = &stubSearchSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}

	result, err := svc.SearchPlan(context.Background(), "teacher", "Kowalski", models.ViewWeek, time.Date(2026, 3, 4, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, result.DayColumns, 7)
	assert.Len(t, result.DayColumns[0].Events, 1)
	assert.True(t, result.HasAnyEventsInRange)
}

func TestSuggestionsDegradeToEmpty(t *testing.T) {
	svc := testPlanService(t, "123456", &stubScheduleSource{}, nil)
	svc.search = &stubSearchSource{err: errors.New("upstream down")}

	items := svc.Suggestions(context.Background(), "teacher", "Kow")
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSubjectsForFilterUsesAcademicTerm(t *testing.T) {
	source := &stubScheduleSource{events: []models.PlanEventRaw{
		rawEvent("Analiza", "wykład", "2026-03-02T08:00:00", "2026-03-02T09:30:00"),
	}}
	svc := testPlanService(t, "123456", source, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, warsaw(t)) }

	items, err := svc.SubjectsForFilter(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Analiza", items[0].Label)
	assert.Equal(t, "lec", items[0].TypeKey)
	assert.Equal(t, 1, source.rangeCalls)
}
