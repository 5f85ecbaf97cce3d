package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zut-mobile/plan-api/internal/models"
	"github.com/zut-mobile/plan-api/internal/service"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
	"github.com/zut-mobile/plan-api/pkg/response"
)

type planService interface {
	LoadPlan(ctx context.Context, mode models.ViewMode, anchor time.Time, forceFull, forceScope bool) (*models.PlanResult, error)
	SearchPlan(ctx context.Context, category, query string, mode models.ViewMode, anchor time.Time) (*models.PlanResult, error)
	Suggestions(ctx context.Context, kind, query string) []string
	SubjectsForFilter(ctx context.Context) ([]models.SubjectFilterItem, error)
	SubjectsForSemester(ctx context.Context, semester models.Semester) ([]models.SubjectFilterItem, error)
}

type exportService interface {
	WeekPDF(ctx context.Context, anchor time.Time) (*service.ExportFile, error)
	WeekCSV(ctx context.Context, anchor time.Time) (*service.ExportFile, error)
}

// PlanHandler exposes plan view endpoints.
type PlanHandler struct {
	service planService
	export  exportService
	loc     *time.Location
}

// NewPlanHandler builds a new handler.
func NewPlanHandler(planSvc planService, exportSvc exportService, loc *time.Location) *PlanHandler {
	if loc == nil {
		loc = time.Local
	}
	return &PlanHandler{service: planSvc, export: exportSvc, loc: loc}
}

// Get returns the assembled plan for one calendar window.
func (h *PlanHandler) Get(c *gin.Context) {
	mode, anchor, err := h.viewParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	refresh := strings.ToLower(c.Query("refresh"))
	forceFull := refresh == "full"
	forceScope := refresh == "scope"

	result, err := h.service.LoadPlan(c.Request.Context(), mode, anchor, forceFull, forceScope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Search returns a laid-out plan for an ad hoc teacher, room, group, subject
// or album query.
func (h *PlanHandler) Search(c *gin.Context) {
	mode, anchor, err := h.viewParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "query parameter is required"))
		return
	}

	result, err := h.service.SearchPlan(c.Request.Context(), c.Query("category"), query, mode, anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Suggestions returns autocomplete items for the search form.
func (h *PlanHandler) Suggestions(c *gin.Context) {
	items := h.service.Suggestions(c.Request.Context(), c.Query("kind"), c.Query("query"))
	response.JSON(c, http.StatusOK, items)
}

// Filters returns subject and lesson type combinations for the current term.
func (h *PlanHandler) Filters(c *gin.Context) {
	items, err := h.service.SubjectsForFilter(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// SemesterFilters returns filter combinations for an explicitly chosen term.
func (h *PlanHandler) SemesterFilters(c *gin.Context) {
	semester := models.Semester{
		AcademicYear: c.Query("academicYear"),
		TermName:     c.Query("termName"),
		Number:       c.Query("number"),
	}
	if semester.AcademicYear == "" && semester.TermName == "" && semester.Number == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "semester parameters are required"))
		return
	}

	items, err := h.service.SubjectsForSemester(c.Request.Context(), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Export streams the week plan as a PDF or CSV download.
func (h *PlanHandler) Export(c *gin.Context) {
	_, anchor, err := h.viewParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var file *service.ExportFile
	switch strings.ToLower(c.DefaultQuery("format", "pdf")) {
	case "pdf":
		file, err = h.export.WeekPDF(c.Request.Context(), anchor)
	case "csv":
		file, err = h.export.WeekCSV(c.Request.Context(), anchor)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "format must be pdf or csv"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// viewParams reads the optional view and date query parameters, defaulting to
// the week containing today.
func (h *PlanHandler) viewParams(c *gin.Context) (models.ViewMode, time.Time, error) {
	mode := models.ViewMode(strings.ToLower(c.DefaultQuery("view", string(models.ViewWeek))))
	if !mode.Valid() {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrInvalidRequest, "view must be day, week or month")
	}

	anchor := time.Now().In(h.loc)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			return "", time.Time{}, appErrors.Clone(appErrors.ErrInvalidRequest, "date must be yyyy-MM-dd")
		}
		anchor = parsed
	}
	return mode, anchor, nil
}
