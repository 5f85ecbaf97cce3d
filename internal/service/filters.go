package service

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zut-mobile/plan-api/internal/models"
)

// filterTypeOrder fixes the emission order of filter items per subject.
var filterTypeOrder = []string{"lec", "aud", "lab"}

// ExtractFilters derives the distinct (subject, lesson type) pairs observed
// within the range. Subjects are deduplicated on a diacritic- and
// case-insensitive key while the first label seen is preserved; only the
// lecture/auditory/lab types are filterable.
func ExtractFilters(byDay models.DayBucket, rangeStart, rangeEnd time.Time) []models.SubjectFilterItem {
	normalizedToSubject := map[string]string{}
	normalizedToTypes := map[string]map[string]bool{}

	for _, day := range enumerateDays(rangeStart, rangeEnd) {
		for _, event := range byDay[dayKey(day)] {
			subject := event.Subject
			if subject == "" {
				subject = event.Title
			}
			subject = strings.TrimSpace(subject)
			if subject == "" {
				continue
			}

			typeKey, ok := resolveFilterTypeKey(event)
			if !ok {
				continue
			}

			normalized := normalizeFold(subject)
			if normalized == "" {
				continue
			}

			if _, seen := normalizedToSubject[normalized]; !seen {
				normalizedToSubject[normalized] = subject
				normalizedToTypes[normalized] = map[string]bool{}
			}
			normalizedToTypes[normalized][typeKey] = true
		}
	}

	keys := make([]string, 0, len(normalizedToSubject))
	for key := range normalizedToSubject {
		keys = append(keys, key)
	}
	collator := collate.New(language.Polish, collate.IgnoreCase)
	sort.Slice(keys, func(i, j int) bool {
		return collator.CompareString(normalizedToSubject[keys[i]], normalizedToSubject[keys[j]]) < 0
	})

	var items []models.SubjectFilterItem
	for _, key := range keys {
		subject := normalizedToSubject[key]
		types := normalizedToTypes[key]
		for _, typeKey := range filterTypeOrder {
			if !types[typeKey] {
				continue
			}
			items = append(items, models.SubjectFilterItem{
				Label:     subject,
				TypeKey:   typeKey,
				TypeLabel: filterTypeLabel(typeKey),
				FilterKey: subject + "||" + typeKey,
			})
		}
	}
	return items
}
