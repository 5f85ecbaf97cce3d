package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
	"github.com/zut-mobile/plan-api/pkg/config"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
)

// FetchObserver receives per-request diagnostics from the schedule source.
// Implementations must never affect correctness.
type FetchObserver interface {
	ObserveScheduleFetch(httpCode int, rows int, duration time.Duration)
}

// ScheduleSourceRepository issues range-scoped and full-schedule queries
// against the remote planner and normalizes rows into typed raw events.
type ScheduleSourceRepository struct {
	client      *http.Client
	scheduleURL string
	searchURL   string
	userAgent   string
	loc         *time.Location
	observer    FetchObserver
	logger      *zap.Logger
}

// NewScheduleSourceRepository constructs the repository. The observer may be
// nil.
func NewScheduleSourceRepository(cfg config.PlanConfig, loc *time.Location, observer FetchObserver, logger *zap.Logger) *ScheduleSourceRepository {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleSourceRepository{
		client:      &http.Client{Timeout: timeout},
		scheduleURL: cfg.ScheduleURL,
		searchURL:   cfg.SearchURL,
		userAgent:   cfg.UserAgent,
		loc:         loc,
		observer:    observer,
		logger:      logger,
	}
}

// FetchRange queries the album's schedule for [rangeStart, rangeEnd]. The
// request window is padded by one day on each side to tolerate timezone edge
// effects at midnight; events whose start day falls outside the exact range
// are filtered out afterwards. The primary query encodes the window as
// ISO-8601 with offset; on failure a single retry uses plain dates.
func (r *ScheduleSourceRepository) FetchRange(ctx context.Context, album string, rangeStart, rangeEnd time.Time) ([]models.PlanEventRaw, []models.RequestLog, error) {
	apiStart := startOfDayIn(rangeStart, r.loc).AddDate(0, 0, -1)
	apiEnd := startOfDayIn(rangeEnd, r.loc).AddDate(0, 0, 1)

	var requests []models.RequestLog

	primary := r.scheduleQuery(album, apiStart.Format(time.RFC3339), apiEnd.Format(time.RFC3339))
	rows, reqLog, err := r.fetchJSONArray(ctx, primary)
	requests = append(requests, reqLog)
	if err != nil {
		fallback := r.scheduleQuery(album, apiStart.Format("2006-01-02"), apiEnd.Format("2006-01-02"))
		rows, reqLog, err = r.fetchJSONArray(ctx, fallback)
		requests = append(requests, reqLog)
		if err != nil {
			return nil, requests, err
		}
	}

	fromKey := rangeStart.In(r.loc).Format("2006-01-02")
	toKey := rangeEnd.In(r.loc).Format("2006-01-02")

	events := make([]models.PlanEventRaw, 0, len(rows))
	for _, row := range rows {
		event, ok := parseEventRow(row)
		if !ok {
			continue
		}
		if len(event.Start) < 10 {
			continue
		}
		day := event.Start[:10]
		if day < fromKey || day > toKey {
			continue
		}
		events = append(events, event)
	}
	return events, requests, nil
}

// FetchFull queries the album's entire known schedule.
func (r *ScheduleSourceRepository) FetchFull(ctx context.Context, album string) ([]models.PlanEventRaw, []models.RequestLog, error) {
	full := r.scheduleQuery(album, "", "")
	rows, reqLog, err := r.fetchJSONArray(ctx, full)
	if err != nil {
		return nil, []models.RequestLog{reqLog}, err
	}
	return parseEventRows(rows), []models.RequestLog{reqLog}, nil
}

// FetchSearch queries the planner by teacher, room, group, subject or album
// number over the given range. Results are not cached and not range-filtered.
func (r *ScheduleSourceRepository) FetchSearch(ctx context.Context, category, query string, rangeStart, rangeEnd time.Time) ([]models.PlanEventRaw, []models.RequestLog, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidRequest, "search query required")
	}

	values := url.Values{}
	values.Set(searchQueryKey(category), query)
	values.Set("start", rangeStart.In(r.loc).Format(time.RFC3339))
	values.Set("end", endOfDayIn(rangeEnd, r.loc).Format(time.RFC3339))

	rows, reqLog, err := r.fetchJSONArray(ctx, r.scheduleURL+"?"+values.Encode())
	if err != nil {
		return nil, []models.RequestLog{reqLog}, err
	}
	return parseEventRows(rows), []models.RequestLog{reqLog}, nil
}

// FetchSuggestions asks the planner for autocomplete items of the given kind.
func (r *ScheduleSourceRepository) FetchSuggestions(ctx context.Context, kind, query string) ([]string, error) {
	kind = strings.TrimSpace(kind)
	query = strings.TrimSpace(query)
	if kind == "" || query == "" {
		return nil, nil
	}

	values := url.Values{}
	values.Set("kind", kind)
	values.Set("query", query)

	rows, _, err := r.fetchJSONArray(ctx, r.searchURL+"?"+values.Encode())
	if err != nil {
		return nil, err
	}

	items := make([]string, 0, len(rows))
	for _, row := range rows {
		item := strings.TrimSpace(jsonString(row["item"]))
		if item != "" {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *ScheduleSourceRepository) scheduleQuery(album, start, end string) string {
	values := url.Values{}
	values.Set("number", album)
	if start != "" {
		values.Set("start", start)
	}
	if end != "" {
		values.Set("end", end)
	}
	return r.scheduleURL + "?" + values.Encode()
}

// fetchJSONArray performs one GET and decodes the body as a JSON array of
// row objects, recording diagnostics regardless of outcome.
func (r *ScheduleSourceRepository) fetchJSONArray(ctx context.Context, rawURL string) ([]map[string]interface{}, models.RequestLog, error) {
	reqLog := models.RequestLog{URL: rawURL}

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, reqLog, appErrors.Wrap(err, appErrors.ErrInvalidRequest.Code, appErrors.ErrInvalidRequest.Status, "invalid schedule URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, reqLog, appErrors.Wrap(err, appErrors.ErrInvalidRequest.Code, appErrors.ErrInvalidRequest.Status, "invalid schedule request")
	}
	req.Header.Set("User-Agent", r.userAgent)

	start := time.Now()
	resp, err := r.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		reqLog.HTTPCode = -1
		r.observe(reqLog, duration)
		return nil, reqLog, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "schedule request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	reqLog.HTTPCode = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.observe(reqLog, duration)
		return nil, reqLog, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "schedule response read failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.observe(reqLog, duration)
		return nil, reqLog, appErrors.Clone(appErrors.ErrTransport, "schedule endpoint returned HTTP "+strconv.Itoa(resp.StatusCode))
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		r.observe(reqLog, duration)
		return nil, reqLog, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "schedule endpoint returned non-array body")
	}

	reqLog.JSONOk = true
	reqLog.JSONCount = len(rows)
	r.observe(reqLog, duration)

	r.logger.Debug("schedule fetch",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", duration))

	return rows, reqLog, nil
}

func (r *ScheduleSourceRepository) observe(reqLog models.RequestLog, duration time.Duration) {
	if r.observer != nil {
		r.observer.ObserveScheduleFetch(reqLog.HTTPCode, reqLog.JSONCount, duration)
	}
}

func parseEventRows(rows []map[string]interface{}) []models.PlanEventRaw {
	events := make([]models.PlanEventRaw, 0, len(rows))
	for _, row := range rows {
		if event, ok := parseEventRow(row); ok {
			events = append(events, event)
		}
	}
	return events
}

// parseEventRow normalizes one upstream row. Rows missing a start or end are
// dropped silently; that is deliberate tolerance for upstream data quality.
func parseEventRow(row map[string]interface{}) (models.PlanEventRaw, bool) {
	start := jsonString(row["start"])
	end := jsonString(row["end"])
	if start == "" || end == "" {
		return models.PlanEventRaw{}, false
	}

	return models.PlanEventRaw{
		Title:             jsonString(row["title"]),
		Description:       jsonString(row["description"]),
		Start:             start,
		End:               end,
		WorkerTitle:       jsonString(row["worker_title"]),
		Worker:            jsonString(row["worker"]),
		LessonForm:        jsonString(row["lesson_form"]),
		LessonFormShort:   jsonString(row["lesson_form_short"]),
		GroupName:         jsonString(row["group_name"]),
		TokName:           jsonString(row["tok_name"]),
		Room:              jsonString(row["room"]),
		LessonStatus:      jsonString(row["lesson_status"]),
		LessonStatusShort: jsonString(row["lesson_status_short"]),
		Subject:           jsonString(row["subject"]),
		Hours:             jsonString(row["hours"]),
		Color:             jsonString(row["color"]),
		BorderColor:       jsonString(row["borderColor"]),
	}, true
}

// jsonString coerces loosely typed upstream values to strings.
func jsonString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func searchQueryKey(category string) string {
	category = strings.ToLower(category)
	switch {
	case strings.Contains(category, "teacher") || strings.Contains(category, "wyk"):
		return "teacher"
	case strings.Contains(category, "room") || strings.Contains(category, "sal"):
		return "room"
	case strings.Contains(category, "group") || strings.Contains(category, "grup"):
		return "group"
	case strings.Contains(category, "subject") || strings.Contains(category, "przedm"):
		return "subject"
	default:
		return "number"
	}
}

func startOfDayIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDayIn(t time.Time, loc *time.Location) time.Time {
	return startOfDayIn(t, loc).AddDate(0, 0, 1).Add(-time.Second)
}
