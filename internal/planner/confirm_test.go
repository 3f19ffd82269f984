package planner

import (
	"testing"
	"time"
)

func TestWeekDays(t *testing.T) {
	tests := []struct {
		name  string
		day   time.Time
		first string
		last  string
	}{
		{"monday", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), "2024-01-15", "2024-01-21"},
		{"midweek", time.Date(2024, 1, 17, 23, 59, 0, 0, time.UTC), "2024-01-15", "2024-01-21"},
		{"sunday belongs to the prior monday", time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC), "2024-01-15", "2024-01-21"},
		{"across a month", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-02-26", "2024-03-03"},
		{"across a year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2024-12-30", "2025-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := WeekDays(tt.day)
			if len(days) != 7 {
				t.Fatalf("len(WeekDays()) = %d, want 7", len(days))
			}
			if days[0] != tt.first || days[6] != tt.last {
				t.Errorf("WeekDays() = %s..%s, want %s..%s", days[0], days[6], tt.first, tt.last)
			}
		})
	}
}

func TestWeekStartIsMidnight(t *testing.T) {
	got := WeekStart(time.Date(2024, 1, 18, 17, 45, 12, 0, time.UTC))
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart() = %v, want %v", got, want)
	}
}

func TestDays(t *testing.T) {
	days := Days("2024-01-15", "2024-01-16")
	if len(days) != 2 || days[1].Date != "2024-01-16" {
		t.Fatalf("Days() = %+v", days)
	}
	if days[0].Types != nil || days[0].MinDuration != nil {
		t.Errorf("Days() should not constrain, got %+v", days[0])
	}
}
