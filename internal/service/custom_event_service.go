package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
)

type customEventRepository interface {
	List(ctx context.Context) ([]models.CustomEvent, error)
	ListForDate(ctx context.Context, date string) ([]models.CustomEvent, error)
	GetByID(ctx context.Context, id string) (*models.CustomEvent, error)
	Create(ctx context.Context, event *models.CustomEvent) error
	Update(ctx context.Context, event *models.CustomEvent) error
	Delete(ctx context.Context, id string) error
	SubjectNames(ctx context.Context) ([]string, error)
}

// CustomEventService handles user-authored plan entries.
type CustomEventService struct {
	repo      customEventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCustomEventService constructs the service.
func NewCustomEventService(repo customEventRepository, validate *validator.Validate, logger *zap.Logger) *CustomEventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CustomEventService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("event_kind", func(fl validator.FieldLevel) bool {
		switch models.CustomEventKind(fl.Field().String()) {
		case models.CustomEventExam, models.CustomEventPass, models.CustomEventTest:
			return true
		default:
			return false
		}
	})
	svc.validator.RegisterValidation("plan_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	svc.validator.RegisterValidation("plan_time", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := time.Parse("15:04", value)
		return err == nil
	})
	return svc
}

// CreateCustomEventRequest describes create payload.
type CreateCustomEventRequest struct {
	SubjectName string `json:"subjectName" validate:"required"`
	Kind        string `json:"kind" validate:"required,event_kind"`
	Date        string `json:"date" validate:"required,plan_date"`
	StartTime   string `json:"startTime" validate:"required,plan_time"`
	EndTime     string `json:"endTime" validate:"omitempty,plan_time"`
	Notes       string `json:"notes"`
}

// UpdateCustomEventRequest describes update payload.
type UpdateCustomEventRequest struct {
	SubjectName string `json:"subjectName" validate:"required"`
	Kind        string `json:"kind" validate:"required,event_kind"`
	Date        string `json:"date" validate:"required,plan_date"`
	StartTime   string `json:"startTime" validate:"required,plan_time"`
	EndTime     string `json:"endTime" validate:"omitempty,plan_time"`
	Notes       string `json:"notes"`
}

// List returns all custom events.
func (s *CustomEventService) List(ctx context.Context) ([]models.CustomEvent, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list custom events")
	}
	return events, nil
}

// ListForDate returns custom events on the given day.
func (s *CustomEventService) ListForDate(ctx context.Context, date string) ([]models.CustomEvent, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "date must be yyyy-MM-dd")
	}
	events, err := s.repo.ListForDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list custom events")
	}
	return events, nil
}

// Get fetches one custom event.
func (s *CustomEventService) Get(ctx context.Context, id string) (*models.CustomEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load custom event")
	}
	return event, nil
}

// Create stores a new custom event.
func (s *CustomEventService) Create(ctx context.Context, req CreateCustomEventRequest) (*models.CustomEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	now := time.Now().UTC()
	event := &models.CustomEvent{
		ID:          uuid.NewString(),
		SubjectName: req.SubjectName,
		Kind:        models.CustomEventKind(req.Kind),
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create custom event")
	}
	return event, nil
}

// Update rewrites an existing custom event.
func (s *CustomEventService) Update(ctx context.Context, id string, req UpdateCustomEventRequest) (*models.CustomEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load custom event")
	}

	existing.SubjectName = req.SubjectName
	existing.Kind = models.CustomEventKind(req.Kind)
	existing.Date = req.Date
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.Notes = req.Notes
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update custom event")
	}
	return existing, nil
}

// Delete removes a custom event.
func (s *CustomEventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete custom event")
	}
	return nil
}

// SubjectNames lists distinct subject names usable for autocomplete when
// authoring an event.
func (s *CustomEventService) SubjectNames(ctx context.Context) ([]string, error) {
	names, err := s.repo.SubjectNames(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return names, nil
}

func isNotFound(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Status == appErrors.ErrNotFound.Status
}
