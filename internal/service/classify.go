package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/zut-mobile/plan-api/internal/models"
)

// Type classes rendered by the week view. Status codes on the wire take
// precedence over keyword inference.
const (
	typeClassLecture    = "week-event-type-lecture"
	typeClassLab        = "week-event-type-lab"
	typeClassAuditory   = "week-event-type-auditory"
	typeClassExam       = "week-event-type-exam"
	typeClassExamRemote = "week-event-type-exam-remote"
	typeClassPass       = "week-event-type-pass"
	typeClassCancelled  = "week-event-type-cancelled"
	typeClassRemote     = "week-event-type-remote"
	typeClassRector     = "week-event-type-rector"
	typeClassDean       = "week-event-type-dean"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeFold trims, lowercases and strips diacritics. The Polish stroked l
// is not a combining mark, so it is mapped by hand.
func normalizeFold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		switch r {
		case 'ł':
			return 'l'
		case 'Ł':
			return 'L'
		}
		return r
	}, folded)
	return strings.ToLower(strings.TrimSpace(folded))
}

// eventTypeClass classifies a raw event. Short status codes win; otherwise
// keywords in the lesson form and subject text decide, matching both Polish
// spellings with and without diacritics.
func eventTypeClass(event models.PlanEventRaw) string {
	statusShort := strings.ToLower(event.LessonStatusShort)
	formFull := strings.ToLower(event.LessonForm)
	formShort := strings.ToLower(event.LessonFormShort)
	subject := strings.ToLower(event.Subject)
	if subject == "" {
		subject = strings.ToLower(event.Title)
	}
	hay := formFull + " " + subject

	switch statusShort {
	case "e":
		return typeClassExam
	case "ez":
		return typeClassExamRemote
	case "o":
		return typeClassCancelled
	case "r":
		return typeClassRector
	case "dz":
		return typeClassDean
	case "zz":
		return typeClassRemote
	}

	switch {
	case strings.Contains(hay, "egzamin") || strings.Contains(formFull, "exam"):
		return typeClassExam
	case strings.Contains(hay, "odwolane") || strings.Contains(hay, "odwołane") || strings.Contains(formFull, "cancelled"):
		return typeClassCancelled
	case strings.Contains(hay, "zdalne") || strings.Contains(formFull, "remote") || strings.Contains(formFull, "online"):
		return typeClassRemote
	case strings.Contains(hay, "zaliczenie") || formShort == "zal" || formShort == "zalp":
		return typeClassPass
	case strings.Contains(hay, "laboratorium") || formShort == "l" || strings.Contains(formFull, "laboratory"):
		return typeClassLab
	case strings.Contains(hay, "audytoryjne") || formShort == "a" || strings.Contains(formFull, "auditory"):
		return typeClassAuditory
	case strings.Contains(hay, "wyklad") || strings.Contains(hay, "wykład") || formShort == "w" || strings.Contains(formFull, "lecture"):
		return typeClassLecture
	}

	return ""
}

func eventTypeLabel(event models.PlanEventRaw) string {
	switch eventTypeClass(event) {
	case typeClassLecture:
		return "Wykład"
	case typeClassLab:
		return "Laboratorium"
	case typeClassAuditory:
		return "Audytoryjne"
	case typeClassExam:
		return "Egzamin"
	case typeClassPass:
		return "Zaliczenie"
	case typeClassCancelled:
		return "Odwołane"
	case typeClassRemote:
		return "Zdalne"
	default:
		return event.LessonForm
	}
}

// resolveFilterTypeKey maps an event onto one of the three filterable lesson
// types (lec/aud/lab). Events that resolve to none are not filterable.
func resolveFilterTypeKey(event models.PlanEventRaw) (string, bool) {
	formShort := normalizeFold(event.LessonFormShort)
	switch {
	case formShort == "l" || strings.Contains(formShort, "lab"):
		return "lab", true
	case formShort == "a" || strings.Contains(formShort, "aud"):
		return "aud", true
	case formShort == "w" || strings.Contains(formShort, "wyk") || strings.Contains(formShort, "lec"):
		return "lec", true
	}

	switch typeClass := eventTypeClass(event); {
	case strings.HasSuffix(typeClass, "-lab"):
		return "lab", true
	case strings.HasSuffix(typeClass, "-auditory"):
		return "aud", true
	case strings.HasSuffix(typeClass, "-lecture"):
		return "lec", true
	}

	form := normalizeFold(event.LessonForm)
	switch {
	case strings.Contains(form, "laboratorium") || strings.Contains(form, "laboratory"):
		return "lab", true
	case strings.Contains(form, "audytoryjne") || strings.Contains(form, "auditory") || strings.Contains(form, "auditorium"):
		return "aud", true
	case strings.Contains(form, "wyklad") || strings.Contains(form, "lecture"):
		return "lec", true
	}

	return "", false
}

func filterTypeLabel(typeKey string) string {
	switch typeKey {
	case "lec":
		return "Wykład"
	case "aud":
		return "Audytoryjne"
	case "lab":
		return "Laboratorium"
	default:
		return ""
	}
}
