package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zut-mobile/plan-api/internal/models"
	"github.com/zut-mobile/plan-api/internal/service"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
	"github.com/zut-mobile/plan-api/pkg/response"
)

type customEventService interface {
	List(ctx context.Context) ([]models.CustomEvent, error)
	ListForDate(ctx context.Context, date string) ([]models.CustomEvent, error)
	Get(ctx context.Context, id string) (*models.CustomEvent, error)
	Create(ctx context.Context, req service.CreateCustomEventRequest) (*models.CustomEvent, error)
	Update(ctx context.Context, id string, req service.UpdateCustomEventRequest) (*models.CustomEvent, error)
	Delete(ctx context.Context, id string) error
	SubjectNames(ctx context.Context) ([]string, error)
}

// CustomEventHandler exposes user-authored plan entry endpoints.
type CustomEventHandler struct {
	service customEventService
}

// NewCustomEventHandler builds a new handler.
func NewCustomEventHandler(service customEventService) *CustomEventHandler {
	return &CustomEventHandler{service: service}
}

// List returns all custom events, or just one day's when date is given.
func (h *CustomEventHandler) List(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		events, err := h.service.ListForDate(c.Request.Context(), date)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, events)
		return
	}

	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Get returns one custom event.
func (h *CustomEventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Create stores a new custom event.
func (h *CustomEventHandler) Create(c *gin.Context) {
	var req service.CreateCustomEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid custom event payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update rewrites an existing custom event.
func (h *CustomEventHandler) Update(c *gin.Context) {
	var req service.UpdateCustomEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid custom event payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Delete removes a custom event.
func (h *CustomEventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Subjects lists distinct subject names for the event form autocomplete.
func (h *CustomEventHandler) Subjects(c *gin.Context) {
	names, err := h.service.SubjectNames(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names)
}
