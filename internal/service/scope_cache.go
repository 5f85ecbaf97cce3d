package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
)

// scheduleSource fetches raw lesson rows from the remote planner.
type scheduleSource interface {
	FetchRange(ctx context.Context, album string, rangeStart, rangeEnd time.Time) ([]models.PlanEventRaw, []models.RequestLog, error)
	FetchFull(ctx context.Context, album string) ([]models.PlanEventRaw, []models.RequestLog, error)
}

// snapshotStore persists one schedule snapshot per album.
type snapshotStore interface {
	Load(ctx context.Context, album string) (*models.ScheduleSnapshot, error)
	Save(ctx context.Context, snapshot *models.ScheduleSnapshot) error
}

// scopeLookupRecorder counts cache hits and misses. Optional.
type scopeLookupRecorder interface {
	RecordScopeLookup(hit bool)
}

// ScopeCache owns the schedule snapshot for the current album. A single mutex
// serializes every read-modify-write pass, including the persisted flush, so
// concurrent view requests never interleave a partial snapshot update.
type ScopeCache struct {
	mu       sync.Mutex
	source   scheduleSource
	store    snapshotStore
	scopeTTL time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
	metrics  scopeLookupRecorder

	snapshot *models.ScheduleSnapshot
}

// SetMetricsRecorder attaches an optional hit/miss counter.
func (c *ScopeCache) SetMetricsRecorder(recorder scopeLookupRecorder) {
	c.metrics = recorder
}

// NewScopeCache constructs the cache. The store may be nil, in which case
// snapshots live only in memory.
func NewScopeCache(source scheduleSource, store snapshotStore, scopeTTL time.Duration, loc *time.Location, logger *zap.Logger) *ScopeCache {
	if scopeTTL <= 0 {
		scopeTTL = 20 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeCache{
		source:   source,
		store:    store,
		scopeTTL: scopeTTL,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// EnsureScopeData returns the day-grouped schedule for the album, refreshing
// the requested range first when the scope is stale, missing or forced. Fetch
// failures degrade to the last known snapshot; the caller never sees them.
func (c *ScopeCache) EnsureScopeData(ctx context.Context, album string, rangeStart, rangeEnd time.Time, scopeName string, forceRefresh bool) (models.DayBucket, []models.RequestLog) {
	return c.EnsureScopeDataTTL(ctx, album, rangeStart, rangeEnd, scopeName, forceRefresh, c.scopeTTL)
}

// EnsureScopeDataTTL is EnsureScopeData with an explicit freshness bound,
// used for the long-lived subject filter scopes.
func (c *ScopeCache) EnsureScopeDataTTL(ctx context.Context, album string, rangeStart, rangeEnd time.Time, scopeName string, forceRefresh bool, ttl time.Duration) (models.DayBucket, []models.RequestLog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.scopeTTL
	}

	c.adoptAlbum(ctx, album)

	scopeKey := ScopeKey(scopeName, rangeStart)
	now := c.now().Unix()
	lastFetch := c.snapshot.ScopeFetchedAt[scopeKey]
	needsRefresh := forceRefresh || len(c.snapshot.ByDay) == 0 || now-lastFetch > int64(ttl.Seconds())
	if c.metrics != nil {
		c.metrics.RecordScopeLookup(!needsRefresh)
	}

	var requests []models.RequestLog
	if needsRefresh {
		fresh, logs, err := c.source.FetchRange(ctx, album, rangeStart, rangeEnd)
		requests = logs
		if err != nil {
			// Soft fail: keep serving the stale snapshot.
			c.logger.Warn("scope refresh failed, serving stale data",
				zap.String("album", album),
				zap.String("scope", scopeKey),
				zap.Error(err))
			return cloneBucket(c.snapshot.ByDay), requests
		}

		grouped := groupEventsByDay(fresh, c.loc)
		for _, day := range enumerateDays(rangeStart, rangeEnd) {
			key := dayKey(day)
			if list := grouped[key]; len(list) > 0 {
				c.snapshot.ByDay[key] = list
			} else {
				delete(c.snapshot.ByDay, key)
			}
		}

		c.snapshot.ScopeFetchedAt[scopeKey] = now
		c.snapshot.CapturedAt = now
		c.persist(ctx)
	}

	return cloneBucket(c.snapshot.ByDay), requests
}

// ReplaceFull refetches the album's entire schedule and replaces the snapshot
// wholesale. The given scope keys are stamped fresh so a follow-up
// EnsureScopeData does not refetch what the full load just delivered. Unlike
// EnsureScopeData the error is surfaced so the caller can fall back to a
// scoped refresh.
func (c *ScopeCache) ReplaceFull(ctx context.Context, album string, scopeKeys ...string) ([]models.RequestLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, requests, err := c.source.FetchFull(ctx, album)
	if err != nil {
		return requests, err
	}

	now := c.now().Unix()
	stamps := make(map[string]int64, len(scopeKeys))
	for _, key := range scopeKeys {
		stamps[key] = now
	}

	c.snapshot = &models.ScheduleSnapshot{
		Album:          album,
		CapturedAt:     now,
		ByDay:          groupEventsByDay(events, c.loc),
		ScopeFetchedAt: stamps,
	}
	c.persist(ctx)
	return requests, nil
}

// ScopeKey derives the freshness stamp key for a scope anchored at a range
// start.
func ScopeKey(scopeName string, rangeStart time.Time) string {
	return scopeName + ":" + dayKey(rangeStart)
}

// adoptAlbum makes the in-memory snapshot match the album: a switch discards
// the current snapshot and warm-starts from the persisted copy when it
// matches, or begins empty.
func (c *ScopeCache) adoptAlbum(ctx context.Context, album string) {
	if c.snapshot != nil && c.snapshot.Album == album {
		return
	}

	if c.store != nil {
		if persisted, err := c.store.Load(ctx, album); err == nil && persisted != nil && persisted.Album == album {
			if persisted.ByDay == nil {
				persisted.ByDay = models.DayBucket{}
			}
			if persisted.ScopeFetchedAt == nil {
				persisted.ScopeFetchedAt = map[string]int64{}
			}
			c.snapshot = persisted
			return
		}
	}

	c.snapshot = &models.ScheduleSnapshot{
		Album:          album,
		CapturedAt:     c.now().Unix(),
		ByDay:          models.DayBucket{},
		ScopeFetchedAt: map[string]int64{},
	}
}

func (c *ScopeCache) persist(ctx context.Context) {
	if c.store == nil || c.snapshot == nil {
		return
	}
	if err := c.store.Save(ctx, c.snapshot); err != nil {
		c.logger.Warn("failed to persist schedule snapshot",
			zap.String("album", c.snapshot.Album),
			zap.Error(err))
	}
}

// cloneBucket shallow-copies the map so callers can read it without holding
// the cache lock. Day slices are treated as immutable once stored.
func cloneBucket(bucket models.DayBucket) models.DayBucket {
	out := make(models.DayBucket, len(bucket))
	for key, events := range bucket {
		out[key] = events
	}
	return out
}
