package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/zut-mobile/plan-api/internal/models"
)

// academicRange is an inclusive date window covering one academic term.
type academicRange struct {
	start time.Time
	end   time.Time
}

// currentAcademicTermRange returns the term containing the date: winter runs
// October 1 through the end of February, summer March 1 through September 30.
func currentAcademicTermRange(date time.Time, loc *time.Location) academicRange {
	now := startOfDay(date)
	month := int(now.Month())
	year := now.Year()

	switch {
	case month >= 10:
		return academicRange{
			start: time.Date(year, 10, 1, 0, 0, 0, 0, loc),
			end:   endOfMonth(time.Date(year+1, 2, 1, 0, 0, 0, 0, loc)),
		}
	case month <= 2:
		return academicRange{
			start: time.Date(year-1, 10, 1, 0, 0, 0, 0, loc),
			end:   endOfMonth(time.Date(year, 2, 1, 0, 0, 0, 0, loc)),
		}
	default:
		return academicRange{
			start: time.Date(year, 3, 1, 0, 0, 0, 0, loc),
			end:   time.Date(year, 9, 30, 0, 0, 0, 0, loc),
		}
	}
}

// semesterAcademicRange resolves the window for a named semester. The year is
// read from "2024/2025"-style strings; term season falls back to odd/even
// semester numbers (odd semesters are winter). Unresolvable input falls back
// to the current term.
func semesterAcademicRange(semester models.Semester, now time.Time, loc *time.Location) academicRange {
	yearRaw := strings.ReplaceAll(semester.AcademicYear, " ", "")
	var yearStart, yearEnd int

	if yearRaw != "" {
		if slash := strings.IndexByte(yearRaw, '/'); slash >= 0 {
			yearStart = parseAcademicYear(yearRaw[:slash])
			yearEnd = parseAcademicYear(yearRaw[slash+1:])
		} else if single := parseAcademicYear(yearRaw); single > 0 {
			yearStart = single
			yearEnd = single + 1
		}
	}

	term := normalizeFold(semester.TermName)
	isWinter := strings.Contains(term, "zim") || strings.Contains(term, "winter")
	isSummer := strings.Contains(term, "let") || strings.Contains(term, "sum")

	if !isWinter && !isSummer {
		if number, err := strconv.Atoi(digitsOnly(semester.Number)); err == nil && number > 0 {
			isWinter = number%2 == 1
			isSummer = !isWinter
		}
	}

	if isWinter {
		startYear := yearStart
		if startYear == 0 {
			endYear := yearEnd
			if endYear == 0 {
				endYear = now.Year()
			}
			startYear = endYear - 1
		}
		endYear := yearEnd
		if endYear == 0 {
			endYear = startYear + 1
		}
		return academicRange{
			start: time.Date(startYear, 10, 1, 0, 0, 0, 0, loc),
			end:   endOfMonth(time.Date(endYear, 2, 1, 0, 0, 0, 0, loc)),
		}
	}

	if isSummer {
		year := yearEnd
		if year == 0 {
			year = yearStart
		}
		if year == 0 {
			year = now.Year()
		}
		return academicRange{
			start: time.Date(year, 3, 1, 0, 0, 0, 0, loc),
			end:   time.Date(year, 9, 30, 0, 0, 0, 0, loc),
		}
	}

	return currentAcademicTermRange(now, loc)
}

// parseAcademicYear extracts a plausible 4-digit year or returns 0.
func parseAcademicYear(raw string) int {
	digits := digitsOnly(raw)
	if len(digits) < 4 {
		return 0
	}
	year, err := strconv.Atoi(digits[:4])
	if err != nil || year < 2000 || year > 2100 {
		return 0
	}
	return year
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
