package planner

import (
	"fmt"
	"time"

	"workout-planner/internal/store"
)

// DateLayout is the schedule's calendar date format
const DateLayout = "2006-01-02"

// Scheduler accepts a batch of schedule requests
type Scheduler interface {
	BatchScheduleWorkouts(reqs []store.ScheduleRequest) error
}

// Confirm schedules every matched day of plan in one batch.
// It returns the number of entries created.
func Confirm(s Scheduler, plan Plan) (int, error) {
	reqs := plan.Requests()
	if len(reqs) == 0 {
		return 0, nil
	}
	if err := s.BatchScheduleWorkouts(reqs); err != nil {
		return 0, fmt.Errorf("confirming plan: %w", err)
	}
	return len(reqs), nil
}

// WeekStart returns midnight of the Monday on or before t
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekDays returns the seven dates, Monday first, of the week containing t
func WeekDays(t time.Time) []string {
	start := WeekStart(t)
	days := make([]string, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(DateLayout)
	}
	return days
}

// Days builds unconstrained configs for dates
func Days(dates ...string) []DayConfig {
	days := make([]DayConfig, len(dates))
	for i, d := range dates {
		days[i] = DayConfig{Date: d}
	}
	return days
}
