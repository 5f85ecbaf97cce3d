package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
)

// AlbumProvider resolves the album number the plan belongs to.
type AlbumProvider interface {
	Album(ctx context.Context) string
}

// StaticAlbumProvider serves a fixed album number from configuration.
type StaticAlbumProvider struct {
	album string
}

// NewStaticAlbumProvider constructs a provider around a fixed album number.
func NewStaticAlbumProvider(album string) *StaticAlbumProvider {
	return &StaticAlbumProvider{album: album}
}

// Album returns the configured album number.
func (p *StaticAlbumProvider) Album(ctx context.Context) string {
	return p.album
}

type planSearchSource interface {
	FetchSearch(ctx context.Context, category, query string, rangeStart, rangeEnd time.Time) ([]models.PlanEventRaw, []models.RequestLog, error)
	FetchSuggestions(ctx context.Context, kind, query string) ([]string, error)
}

type customEventSource interface {
	ListForRange(ctx context.Context, from, to string) ([]models.CustomEvent, error)
}

// PlanService assembles render-ready plan view models. It owns range
// resolution and layout; fetching and freshness live in the scope cache.
type PlanService struct {
	albums    AlbumProvider
	cache     *ScopeCache
	layout    *LayoutEngine
	search    planSearchSource
	custom    customEventSource
	filterTTL time.Duration
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewPlanService constructs the plan service. The custom event source may be
// nil, in which case plans render without user-authored entries.
func NewPlanService(albums AlbumProvider, cache *ScopeCache, layout *LayoutEngine, search planSearchSource, custom customEventSource, filterTTL time.Duration, loc *time.Location, logger *zap.Logger) *PlanService {
	if filterTTL <= 0 {
		filterTTL = 12 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		albums:    albums,
		cache:     cache,
		layout:    layout,
		search:    search,
		custom:    custom,
		filterTTL: filterTTL,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// LoadPlan builds the full view model for one calendar window. forceFull
// refreshes the entire schedule before assembling; forceScope refreshes just
// the requested window. Both fall back to cached data on fetch failure.
func (s *PlanService) LoadPlan(ctx context.Context, mode models.ViewMode, anchor time.Time, forceFull, forceScope bool) (*models.PlanResult, error) {
	if !mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "unknown view mode")
	}

	anchor = anchor.In(s.loc)
	rangeStart, rangeEnd := ResolveRange(mode, anchor)
	prev, next := Neighbors(mode, anchor)

	result := &models.PlanResult{
		ViewMode:    mode,
		CurrentDate: dayKey(anchor),
		RangeStart:  dayKey(rangeStart),
		RangeEnd:    dayKey(rangeEnd),
		PrevDate:    dayKey(prev),
		NextDate:    dayKey(next),
		TodayDate:   dayKey(s.now().In(s.loc)),
		HeaderLabel: HeaderLabel(mode, anchor, rangeStart, rangeEnd),
	}

	album := s.albums.Album(ctx)
	if album == "" {
		result.DayColumns = []models.PlanDayColumn{}
		return result, nil
	}

	var requests []models.RequestLog
	if forceFull {
		fullRequests, err := s.cache.ReplaceFull(ctx, album, ScopeKey(string(mode), rangeStart))
		requests = append(requests, fullRequests...)
		if err != nil {
			s.logger.Warn("full plan refresh failed, serving cached data",
				zap.String("album", album), zap.Error(err))
		}
	}

	byDay, scopeRequests := s.cache.EnsureScopeData(ctx, album, rangeStart, rangeEnd, string(mode), forceScope && !forceFull)
	requests = append(requests, scopeRequests...)

	switch mode {
	case models.ViewMonth:
		result.MonthGrid = buildMonthGrid(rangeStart, rangeEnd, byDay)
	default:
		result.DayColumns = s.buildDayColumns(ctx, rangeStart, rangeEnd, byDay)
	}

	// Diagnostics cover only the requested window; the snapshot may hold
	// other days fetched earlier.
	entriesTotal := 0
	daysWithData := []string{}
	for _, day := range enumerateDays(rangeStart, rangeEnd) {
		key := dayKey(day)
		if events := byDay[key]; len(events) > 0 {
			entriesTotal += len(events)
			daysWithData = append(daysWithData, key)
		}
	}

	result.HasAnyEventsInRange = entriesTotal > 0
	result.Diagnostics = models.PlanDiagnostics{
		Album:        album,
		View:         string(mode),
		RangeStart:   result.RangeStart,
		RangeEnd:     result.RangeEnd,
		EntriesTotal: entriesTotal,
		DaysWithData: daysWithData,
		Requests:     requests,
	}

	return result, nil
}

// SearchPlan lays out schedule rows found for an arbitrary teacher, room,
// group, subject or album query. Results bypass the cache entirely.
func (s *PlanService) SearchPlan(ctx context.Context, category, query string, mode models.ViewMode, anchor time.Time) (*models.PlanResult, error) {
	if !mode.Valid() {
		mode = models.ViewWeek
	}

	anchor = anchor.In(s.loc)
	rangeStart, rangeEnd := ResolveRange(mode, anchor)
	prev, next := Neighbors(mode, anchor)

	events, requests, err := s.search.FetchSearch(ctx, category, query, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	byDay := groupEventsByDay(events, s.loc)

	result := &models.PlanResult{
		ViewMode:    mode,
		CurrentDate: dayKey(anchor),
		RangeStart:  dayKey(rangeStart),
		RangeEnd:    dayKey(rangeEnd),
		PrevDate:    dayKey(prev),
		NextDate:    dayKey(next),
		TodayDate:   dayKey(s.now().In(s.loc)),
		HeaderLabel: HeaderLabel(mode, anchor, rangeStart, rangeEnd),
	}

	if mode == models.ViewMonth {
		result.MonthGrid = buildMonthGrid(rangeStart, rangeEnd, byDay)
	} else {
		columns := make([]models.PlanDayColumn, 0, len(byDay))
		for _, day := range enumerateDays(rangeStart, rangeEnd) {
			key := dayKey(day)
			columns = append(columns, models.PlanDayColumn{
				Date:   key,
				Events: s.layout.LayoutDay(byDay[key]),
			})
		}
		result.DayColumns = columns
	}

	entriesTotal := 0
	daysWithData := []string{}
	for _, day := range enumerateDays(rangeStart, rangeEnd) {
		key := dayKey(day)
		if dayEvents := byDay[key]; len(dayEvents) > 0 {
			entriesTotal += len(dayEvents)
			daysWithData = append(daysWithData, key)
		}
	}

	result.HasAnyEventsInRange = entriesTotal > 0
	result.Diagnostics = models.PlanDiagnostics{
		View:         string(mode),
		RangeStart:   result.RangeStart,
		RangeEnd:     result.RangeEnd,
		EntriesTotal: entriesTotal,
		DaysWithData: daysWithData,
		Requests:     requests,
	}

	return result, nil
}

// Suggestions proxies autocomplete lookups to the remote planner. Failures
// degrade to an empty list; autocomplete is never worth an error page.
func (s *PlanService) Suggestions(ctx context.Context, kind, query string) []string {
	items, err := s.search.FetchSuggestions(ctx, kind, query)
	if err != nil {
		s.logger.Warn("suggestion lookup failed", zap.String("kind", kind), zap.Error(err))
		return []string{}
	}
	if items == nil {
		items = []string{}
	}
	return items
}

// SubjectsForFilter returns the deduplicated subject and lesson type
// combinations observed in the current academic term.
func (s *PlanService) SubjectsForFilter(ctx context.Context) ([]models.SubjectFilterItem, error) {
	album := s.albums.Album(ctx)
	if album == "" {
		return []models.SubjectFilterItem{}, nil
	}

	term := currentAcademicTermRange(s.now().In(s.loc), s.loc)
	byDay, _ := s.cache.EnsureScopeDataTTL(ctx, album, term.start, term.end, "filter_current", false, s.filterTTL)
	return ExtractFilters(byDay, term.start, term.end), nil
}

// SubjectsForSemester returns filter items for an explicitly chosen term.
func (s *PlanService) SubjectsForSemester(ctx context.Context, semester models.Semester) ([]models.SubjectFilterItem, error) {
	album := s.albums.Album(ctx)
	if album == "" {
		return []models.SubjectFilterItem{}, nil
	}

	term := semesterAcademicRange(semester, s.now().In(s.loc), s.loc)
	byDay, _ := s.cache.EnsureScopeDataTTL(ctx, album, term.start, term.end, "filter_semester", false, s.filterTTL)
	return ExtractFilters(byDay, term.start, term.end), nil
}

// buildDayColumns lays out each day of the range and merges in any custom
// events falling on it.
func (s *PlanService) buildDayColumns(ctx context.Context, rangeStart, rangeEnd time.Time, byDay models.DayBucket) []models.PlanDayColumn {
	customByDay := s.customEventsByDay(ctx, rangeStart, rangeEnd)

	days := enumerateDays(rangeStart, rangeEnd)
	columns := make([]models.PlanDayColumn, 0, len(days))
	for _, day := range days {
		key := dayKey(day)
		events := s.layout.LayoutDay(byDay[key])
		if custom := customByDay[key]; len(custom) > 0 {
			events = s.layout.MergeCustomEvents(events, custom)
		}
		columns = append(columns, models.PlanDayColumn{Date: key, Events: events})
	}
	return columns
}

func (s *PlanService) customEventsByDay(ctx context.Context, rangeStart, rangeEnd time.Time) map[string][]models.CustomEvent {
	if s.custom == nil {
		return nil
	}

	events, err := s.custom.ListForRange(ctx, dayKey(rangeStart), dayKey(rangeEnd))
	if err != nil {
		s.logger.Warn("custom event lookup failed", zap.Error(err))
		return nil
	}

	byDay := make(map[string][]models.CustomEvent, len(events))
	for _, event := range events {
		byDay[event.Date] = append(byDay[event.Date], event)
	}
	return byDay
}

// buildMonthGrid arranges the month's days into Monday-first week rows. Cells
// before the first day and after the last day of the month are nil.
func buildMonthGrid(rangeStart, rangeEnd time.Time, byDay models.DayBucket) [][]*models.PlanMonthCell {
	days := enumerateDays(rangeStart, rangeEnd)
	if len(days) == 0 {
		return [][]*models.PlanMonthCell{}
	}

	grid := [][]*models.PlanMonthCell{}
	week := make([]*models.PlanMonthCell, 7)
	for _, day := range days {
		// Column is 0-based Monday..Sunday; Sunday closes the row.
		col := dayOfWeekMondayFirst(day) - 1
		key := dayKey(day)
		week[col] = &models.PlanMonthCell{
			Date:    key,
			HasPlan: len(byDay[key]) > 0,
		}
		if col == 6 {
			grid = append(grid, week)
			week = make([]*models.PlanMonthCell, 7)
		}
	}

	if dayOfWeekMondayFirst(days[len(days)-1]) != 7 {
		grid = append(grid, week)
	}
	return grid
}
