package service

import (
	"fmt"
	"time"

	"workout-planner/internal/planner"
)

// DashboardData contains everything the stats view shows for one month
type DashboardData struct {
	Name  string
	Month time.Time // first day of the viewed month

	// Viewed month
	CompletedInMonth int
	MonthlyGoal      int
	GoalRemaining    int
	GoalProgress     float64 // 0..1

	// All time
	TotalCompleted int
	TotalMinutes   int

	Weeks []WeekCount
	Today DayView
}

// WeekCount is the completed workouts in one Monday-based week touching the month
type WeekCount struct {
	Label     string // W1, W2, ...
	Start     string
	Completed int
}

// GoalReached reports whether the month's goal has been met
func (d DashboardData) GoalReached() bool {
	return d.CompletedInMonth >= d.MonthlyGoal
}

// Dashboard aggregates completion stats for the month containing month
func (q *QueryService) Dashboard(month time.Time) *DashboardData {
	st := q.store.State()

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)
	first := monthStart.Format(planner.DateLayout)
	last := monthEnd.Format(planner.DateLayout)

	data := &DashboardData{
		Name:        st.Settings.Name,
		Month:       monthStart,
		MonthlyGoal: st.Settings.MonthlyGoal,
		Today:       q.Today(),
	}

	// Weeks start on the Monday on or before the 1st and run through the last day
	for ws := planner.WeekStart(monthStart); !ws.After(monthEnd); ws = ws.AddDate(0, 0, 7) {
		data.Weeks = append(data.Weeks, WeekCount{
			Label: fmt.Sprintf("W%d", len(data.Weeks)+1),
			Start: ws.Format(planner.DateLayout),
		})
	}

	for _, e := range st.Schedule {
		if !e.IsCompleted {
			continue
		}
		data.TotalCompleted++
		// Completed entries count toward minutes even once their video is gone, at zero
		if v, ok := st.LookupVideo(e.VideoID); ok {
			data.TotalMinutes += v.Duration
		}
		if e.Date >= first && e.Date <= last {
			data.CompletedInMonth++
		}
		for i := range data.Weeks {
			end := weekEnd(data.Weeks[i].Start)
			if e.Date >= data.Weeks[i].Start && e.Date <= end {
				data.Weeks[i].Completed++
			}
		}
	}

	data.GoalRemaining = max(data.MonthlyGoal-data.CompletedInMonth, 0)
	if data.MonthlyGoal > 0 {
		data.GoalProgress = min(float64(data.CompletedInMonth)/float64(data.MonthlyGoal), 1)
	}
	return data
}

func weekEnd(start string) string {
	t, err := time.Parse(planner.DateLayout, start)
	if err != nil {
		return start
	}
	return t.AddDate(0, 0, 6).Format(planner.DateLayout)
}
