package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zut-mobile/plan-api/internal/models"
)

func newCustomEventMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func customEventRows(events ...models.CustomEvent) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "subject_name", "kind", "event_date", "start_time", "end_time", "notes", "created_at", "updated_at"})
	for _, e := range events {
		rows.AddRow(e.ID, e.SubjectName, string(e.Kind), e.Date, e.StartTime, e.EndTime, e.Notes, e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

func TestCustomEventRepositoryListForRange(t *testing.T) {
	db, mock, cleanup := newCustomEventMock(t)
	defer cleanup()
	repo := NewCustomEventRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_name, kind, event_date, start_time, end_time, notes, created_at, updated_at FROM custom_events WHERE event_date >= $1 AND event_date <= $2 ORDER BY event_date, start_time")).
		WithArgs("2026-03-02", "2026-03-08").
		WillReturnRows(customEventRows(models.CustomEvent{
			ID:          "ce-1",
			SubjectName: "Analiza",
			Kind:        models.CustomEventExam,
			Date:        "2026-03-04",
			StartTime:   "10:00",
			CreatedAt:   now,
			UpdatedAt:   now,
		}))

	events, err := repo.ListForRange(context.Background(), "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ce-1", events[0].ID)
	assert.Equal(t, models.CustomEventExam, events[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomEventRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newCustomEventMock(t)
	defer cleanup()
	repo := NewCustomEventRepository(db)

	now := time.Now()
	event := &models.CustomEvent{
		ID:          "ce-1",
		SubjectName: "Analiza",
		Kind:        models.CustomEventTest,
		Date:        "2026-03-04",
		StartTime:   "10:00",
		EndTime:     "11:30",
		Notes:       "sala 115",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO custom_events").
		WithArgs("ce-1", "Analiza", "test", "2026-03-04", "10:00", "11:30", "sala 115", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), event))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_name, kind, event_date, start_time, end_time, notes, created_at, updated_at FROM custom_events WHERE id = $1")).
		WithArgs("ce-1").
		WillReturnRows(customEventRows(*event))

	got, err := repo.GetByID(context.Background(), "ce-1")
	require.NoError(t, err)
	assert.Equal(t, "Analiza", got.SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomEventRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newCustomEventMock(t)
	defer cleanup()
	repo := NewCustomEventRepository(db)

	mock.ExpectQuery("SELECT .* FROM custom_events WHERE id").
		WithArgs("missing").
		WillReturnRows(customEventRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestCustomEventRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newCustomEventMock(t)
	defer cleanup()
	repo := NewCustomEventRepository(db)

	mock.ExpectExec("UPDATE custom_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.CustomEvent{ID: "missing", Kind: models.CustomEventExam})
	assert.Error(t, err)
}

func TestCustomEventRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newCustomEventMock(t)
	defer cleanup()
	repo := NewCustomEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM custom_events WHERE id = $1")).
		WithArgs("ce-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "ce-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM custom_events WHERE id = $1")).
		WithArgs("ce-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Error(t, repo.Delete(context.Background(), "ce-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomEventRepositorySubjectNames(t *testing.T) {
	db, mock, cleanup := newCustomEventMock(t)
	defer cleanup()
	repo := NewCustomEventRepository(db)

	mock.ExpectQuery("SELECT DISTINCT subject_name FROM custom_events").
		WillReturnRows(sqlmock.NewRows([]string{"subject_name"}).AddRow("Analiza").AddRow("Fizyka"))

	names, err := repo.SubjectNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Analiza", "Fizyka"}, names)
}
