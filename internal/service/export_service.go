package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/zut-mobile/plan-api/internal/models"
	appErrors "github.com/zut-mobile/plan-api/pkg/errors"
	"github.com/zut-mobile/plan-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderTimetable(t export.Timetable) ([]byte, error)
}

// ExportService renders a week of the plan as a downloadable file.
type ExportService struct {
	plans     *PlanService
	csv       csvRenderer
	pdf       pdfRenderer
	startHour int
	endHour   int
	loc       *time.Location
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(plans *PlanService, csv csvRenderer, pdf pdfRenderer, startHour, endHour int, loc *time.Location, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if endHour <= startHour {
		startHour, endHour = 6, 22
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		plans:     plans,
		csv:       csv,
		pdf:       pdf,
		startHour: startHour,
		endHour:   endHour,
		loc:       loc,
		logger:    logger,
	}
}

// ExportFile is one rendered download.
type ExportFile struct {
	Content     []byte
	Filename    string
	ContentType string
}

// WeekPDF renders the week containing anchor as a landscape timetable PDF.
func (s *ExportService) WeekPDF(ctx context.Context, anchor time.Time) (*ExportFile, error) {
	result, err := s.plans.LoadPlan(ctx, models.ViewWeek, anchor, false, false)
	if err != nil {
		return nil, err
	}

	timetable := export.Timetable{
		Title:     result.HeaderLabel,
		StartHour: s.startHour,
		EndHour:   s.endHour,
	}
	for dayIdx, column := range result.DayColumns {
		timetable.DayLabels = append(timetable.DayLabels, dayColumnLabel(column.Date, s.loc))
		for _, event := range column.Events {
			lane, laneCount := laneFromGeometry(event)
			subtitle := event.Room
			if subtitle == "" {
				subtitle = event.Group
			}
			timetable.Events = append(timetable.Events, export.TimetableEvent{
				Day:       dayIdx,
				Title:     event.Title,
				Subtitle:  subtitle,
				StartMin:  event.StartMin,
				EndMin:    event.EndMin,
				Lane:      lane,
				LaneCount: laneCount,
				Cancelled: event.TypeClass == typeClassCancelled,
			})
		}
	}

	content, err := s.pdf.RenderTimetable(timetable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan pdf")
	}

	return &ExportFile{
		Content:     content,
		Filename:    fmt.Sprintf("plan_%s.pdf", result.RangeStart),
		ContentType: "application/pdf",
	}, nil
}

// WeekCSV renders the week containing anchor as a flat lesson listing.
func (s *ExportService) WeekCSV(ctx context.Context, anchor time.Time) (*ExportFile, error) {
	result, err := s.plans.LoadPlan(ctx, models.ViewWeek, anchor, false, false)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Data", "Start", "Koniec", "Przedmiot", "Typ", "Sala", "Grupa", "Prowadzacy"},
	}
	for _, column := range result.DayColumns {
		for _, event := range column.Events {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Data":       column.Date,
				"Start":      event.StartStr,
				"Koniec":     event.EndStr,
				"Przedmiot":  event.Title,
				"Typ":        event.TypeLabel,
				"Sala":       event.Room,
				"Grupa":      event.Group,
				"Prowadzacy": event.Teacher,
			})
		}
	}

	content, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan csv")
	}

	return &ExportFile{
		Content:     content,
		Filename:    fmt.Sprintf("plan_%s.csv", result.RangeStart),
		ContentType: "text/csv",
	}, nil
}

// laneFromGeometry recovers lane position from percent-based layout geometry.
func laneFromGeometry(event models.PlanEventUI) (lane, laneCount int) {
	if event.WidthPct <= 0 || event.WidthPct >= 100 {
		return 0, 1
	}
	laneCount = int(math.Round(100 / event.WidthPct))
	lane = int(math.Round(event.LeftPct / event.WidthPct))
	if laneCount < 1 {
		laneCount = 1
	}
	if lane < 0 {
		lane = 0
	}
	if lane >= laneCount {
		lane = laneCount - 1
	}
	return lane, laneCount
}

func dayColumnLabel(date string, loc *time.Location) string {
	t, err := time.ParseInLocation(dayKeyLayout, date, loc)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %s", plWeekdaysShort[t.Weekday()], t.Format("02.01"))
}
