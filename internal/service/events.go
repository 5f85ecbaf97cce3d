package service

import (
	"sort"
	"time"

	"github.com/zut-mobile/plan-api/internal/models"
)

// groupEventsByDay buckets events under their local-time start day and sorts
// each day by start time. Events with unparsable starts are dropped.
func groupEventsByDay(events []models.PlanEventRaw, loc *time.Location) models.DayBucket {
	byDay := models.DayBucket{}

	for _, event := range events {
		startAt, ok := parsePlanTimestamp(event.Start, loc)
		if !ok {
			continue
		}
		key := dayKey(startOfDay(startAt))
		byDay[key] = append(byDay[key], event)
	}

	for key := range byDay {
		day := byDay[key]
		sort.SliceStable(day, func(i, j int) bool {
			left, okLeft := parsePlanTimestamp(day[i].Start, loc)
			right, okRight := parsePlanTimestamp(day[j].Start, loc)
			if !okLeft || !okRight {
				return false
			}
			return left.Before(right)
		})
	}

	return byDay
}
