package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zut-mobile/plan-api/internal/models"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
)

const customEventColumns = "id, subject_name, kind, event_date, start_time, end_time, notes, created_at, updated_at"

// CustomEventRepository persists user-authored plan entries.
type CustomEventRepository struct {
	db *sqlx.DB
}

// NewCustomEventRepository constructs the repository.
func NewCustomEventRepository(db *sqlx.DB) *CustomEventRepository {
	return &CustomEventRepository{db: db}
}

// List returns all custom events ordered by date and start time.
func (r *CustomEventRepository) List(ctx context.Context) ([]models.CustomEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM custom_events ORDER BY event_date, start_time`, customEventColumns)
	events := []models.CustomEvent{}
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list custom events: %w", err)
	}
	return events, nil
}

// ListForDate returns custom events on the given day (yyyy-MM-dd).
func (r *CustomEventRepository) ListForDate(ctx context.Context, date string) ([]models.CustomEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM custom_events WHERE event_date = $1 ORDER BY start_time`, customEventColumns)
	events := []models.CustomEvent{}
	if err := r.db.SelectContext(ctx, &events, query, date); err != nil {
		return nil, fmt.Errorf("list custom events for %s: %w", date, err)
	}
	return events, nil
}

// ListForRange returns custom events on days within [from, to] inclusive,
// both as yyyy-MM-dd.
func (r *CustomEventRepository) ListForRange(ctx context.Context, from, to string) ([]models.CustomEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM custom_events WHERE event_date >= $1 AND event_date <= $2 ORDER BY event_date, start_time`, customEventColumns)
	events := []models.CustomEvent{}
	if err := r.db.SelectContext(ctx, &events, query, from, to); err != nil {
		return nil, fmt.Errorf("list custom events %s..%s: %w", from, to, err)
	}
	return events, nil
}

// GetByID fetches a single custom event.
func (r *CustomEventRepository) GetByID(ctx context.Context, id string) (*models.CustomEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM custom_events WHERE id = $1`, customEventColumns)
	var event models.CustomEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "custom event not found")
		}
		return nil, fmt.Errorf("get custom event %s: %w", id, err)
	}
	return &event, nil
}

// Create inserts a new custom event.
func (r *CustomEventRepository) Create(ctx context.Context, event *models.CustomEvent) error {
	const query = `INSERT INTO custom_events (id, subject_name, kind, event_date, start_time, end_time, notes, created_at, updated_at)
		VALUES (:id, :subject_name, :kind, :event_date, :start_time, :end_time, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create custom event: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a custom event.
func (r *CustomEventRepository) Update(ctx context.Context, event *models.CustomEvent) error {
	const query = `UPDATE custom_events
		SET subject_name = :subject_name,
		    kind = :kind,
		    event_date = :event_date,
		    start_time = :start_time,
		    end_time = :end_time,
		    notes = :notes,
		    updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update custom event %s: %w", event.ID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "custom event not found")
	}
	return nil
}

// Delete removes a custom event.
func (r *CustomEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM custom_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete custom event %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "custom event not found")
	}
	return nil
}

// SubjectNames returns the distinct subject names used by stored events.
func (r *CustomEventRepository) SubjectNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT DISTINCT subject_name FROM custom_events ORDER BY subject_name`); err != nil {
		return nil, fmt.Errorf("list custom event subjects: %w", err)
	}
	return names, nil
}
