package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// TimetableEvent is one positioned block on the timetable grid. Day indexes
// the DayLabels column, times are minutes from midnight and Lane/LaneCount
// describe the horizontal split when events overlap.
type TimetableEvent struct {
	Day       int
	Title     string
	Subtitle  string
	StartMin  int
	EndMin    int
	Lane      int
	LaneCount int
	Cancelled bool
}

// Timetable describes one week grid to render.
type Timetable struct {
	Title     string
	DayLabels []string
	StartHour int
	EndHour   int
	Events    []TimetableEvent
}

// PDFExporter renders timetables into landscape PDF pages.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pageLeft     = 10.0
	pageTop      = 24.0
	hourColWidth = 12.0
	headerHeight = 7.0
)

// RenderTimetable draws the week grid with an hour axis on the left and one
// column per day. Overlapping events share their column width by lane.
func (e *PDFExporter) RenderTimetable(t Timetable) ([]byte, error) {
	if len(t.DayLabels) == 0 {
		return nil, fmt.Errorf("timetable requires at least one day column")
	}
	if t.EndHour <= t.StartHour {
		return nil, fmt.Errorf("timetable requires end hour after start hour")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageLeft, 10, pageLeft)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	gridLeft := pageLeft + hourColWidth
	gridWidth := pageWidth - gridLeft - pageLeft
	gridTop := pageTop + headerHeight
	gridHeight := pageHeight - gridTop - 10
	dayWidth := gridWidth / float64(len(t.DayLabels))
	hours := t.EndHour - t.StartHour
	hourHeight := gridHeight / float64(hours)

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.SetXY(pageLeft, 10)
		pdf.CellFormat(pageWidth-2*pageLeft, 8, t.Title, "", 0, "C", false, 0, "")
	}

	// Day headers.
	pdf.SetFont("Arial", "B", 9)
	for i, label := range t.DayLabels {
		pdf.SetXY(gridLeft+float64(i)*dayWidth, pageTop)
		pdf.CellFormat(dayWidth, headerHeight, label, "1", 0, "C", false, 0, "")
	}

	// Hour axis and grid lines.
	pdf.SetFont("Arial", "", 7)
	pdf.SetDrawColor(180, 180, 180)
	for h := 0; h <= hours; h++ {
		y := gridTop + float64(h)*hourHeight
		pdf.Line(gridLeft, y, gridLeft+gridWidth, y)
		if h < hours {
			pdf.SetXY(pageLeft, y)
			pdf.CellFormat(hourColWidth, hourHeight, fmt.Sprintf("%02d:00", t.StartHour+h), "", 0, "RT", false, 0, "")
		}
	}
	for i := 0; i <= len(t.DayLabels); i++ {
		x := gridLeft + float64(i)*dayWidth
		pdf.Line(x, gridTop, x, gridTop+gridHeight)
	}

	minuteHeight := hourHeight / 60.0
	windowStart := t.StartHour * 60
	windowEnd := t.EndHour * 60

	for _, event := range t.Events {
		if event.Day < 0 || event.Day >= len(t.DayLabels) {
			continue
		}
		start := max(event.StartMin, windowStart)
		end := min(event.EndMin, windowEnd)
		if end <= start {
			continue
		}

		laneCount := max(event.LaneCount, 1)
		laneWidth := dayWidth / float64(laneCount)
		x := gridLeft + float64(event.Day)*dayWidth + float64(event.Lane)*laneWidth
		y := gridTop + float64(start-windowStart)*minuteHeight
		h := float64(end-start) * minuteHeight

		if event.Cancelled {
			pdf.SetFillColor(235, 235, 235)
		} else {
			pdf.SetFillColor(219, 234, 254)
		}
		pdf.SetDrawColor(100, 100, 100)
		pdf.Rect(x+0.3, y+0.3, laneWidth-0.6, h-0.6, "FD")

		pdf.SetFont("Arial", "B", 6.5)
		pdf.SetXY(x+0.8, y+0.8)
		pdf.CellFormat(laneWidth-1.6, 2.8, event.Title, "", 0, "L", false, 0, "")
		if event.Subtitle != "" && h > 6 {
			pdf.SetFont("Arial", "", 6)
			pdf.SetXY(x+0.8, y+3.6)
			pdf.CellFormat(laneWidth-1.6, 2.6, event.Subtitle, "", 0, "L", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render timetable pdf: %w", err)
	}
	return buf.Bytes(), nil
}
