package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
)

const snapshotKeyPrefix = "plan:snapshot:"

// SnapshotRepository persists schedule snapshots in Redis so a restart does
// not lose already fetched plan data. Snapshots never expire; staleness is
// tracked per scope inside the snapshot itself.
type SnapshotRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSnapshotRepository constructs a snapshot repository. A nil client makes
// every Load a miss and every Save a no-op.
func NewSnapshotRepository(client *redis.Client, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{client: client, logger: logger}
}

// Load retrieves the persisted snapshot for the given album.
func (r *SnapshotRepository) Load(ctx context.Context, album string) (*models.ScheduleSnapshot, error) {
	if r.client == nil || album == "" {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, snapshotKeyPrefix+album).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get snapshot %s: %w", album, err)
	}

	var snapshot models.ScheduleSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// A corrupted snapshot is treated as absent and rebuilt on demand.
		r.logger.Warn("discarding corrupted plan snapshot", zap.String("album", album), zap.Error(err))
		return nil, appErrors.ErrCacheMiss
	}

	return &snapshot, nil
}

// Save stores the snapshot under its album key.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.ScheduleSnapshot) error {
	if r.client == nil || snapshot == nil || snapshot.Album == "" {
		return nil
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snapshot.Album, err)
	}

	if err := r.client.Set(ctx, snapshotKeyPrefix+snapshot.Album, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot %s: %w", snapshot.Album, err)
	}

	return nil
}

// Delete removes the persisted snapshot for the given album.
func (r *SnapshotRepository) Delete(ctx context.Context, album string) error {
	if r.client == nil || album == "" {
		return nil
	}
	if err := r.client.Del(ctx, snapshotKeyPrefix+album).Err(); err != nil {
		return fmt.Errorf("redis delete snapshot %s: %w", album, err)
	}
	return nil
}
