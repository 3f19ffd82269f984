package service

import (
	"time"

	"workout-planner/internal/planner"
	"workout-planner/internal/store"
)

// DayView is one calendar day with its live schedule entries
type DayView struct {
	Date    string
	Entries []store.ResolvedEntry
}

// Minutes sums the durations of the day's workouts
func (d DayView) Minutes() int {
	total := 0
	for _, e := range d.Entries {
		total += e.Video.Duration
	}
	return total
}

// Week returns the Monday-based week containing day. Orphaned entries are skipped.
func (q *QueryService) Week(day time.Time) []DayView {
	dates := planner.WeekDays(day)
	byDate := q.entriesByDate()

	week := make([]DayView, len(dates))
	for i, d := range dates {
		week[i] = DayView{Date: d, Entries: byDate[d]}
	}
	return week
}

// Today returns the live entries scheduled for the current date
func (q *QueryService) Today() DayView {
	return q.Day(q.now().Format(planner.DateLayout))
}

// Day returns the live entries scheduled on date
func (q *QueryService) Day(date string) DayView {
	return DayView{Date: date, Entries: q.entriesByDate()[date]}
}

func (q *QueryService) entriesByDate() map[string][]store.ResolvedEntry {
	byDate := make(map[string][]store.ResolvedEntry)
	for _, r := range q.store.ResolvedSchedule() {
		byDate[r.Entry.Date] = append(byDate[r.Entry.Date], r)
	}
	return byDate
}
