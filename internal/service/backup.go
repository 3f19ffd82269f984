package service

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// BackupStatus is the outcome of a backup reminder check
type BackupStatus struct {
	Recommended bool
	Title       string
	Message     string

	LastExport time.Time // zero if never exported
	DaysSince  int
}

// BackupStatus reports whether the user should export their data
func (q *QueryService) BackupStatus() BackupStatus {
	st := q.store.State()
	now := q.now()

	if st.Settings.LastExportedAt != "" {
		last, err := time.Parse(time.RFC3339Nano, st.Settings.LastExportedAt)
		if err == nil {
			days := int(now.Sub(last).Hours() / 24)
			status := BackupStatus{LastExport: last, DaysSince: days}
			if days >= q.reminderDays {
				status.Recommended = true
				status.Title = "Data Backup Recommended"
				status.Message = fmt.Sprintf("It's been %d days since your last local backup. Export your data to keep it safe!", days)
			} else {
				status.Title = "Data is Up to Date"
				status.Message = fmt.Sprintf("Your last backup was %s. Your data is currently well-protected.", humanize.RelTime(last, now, "ago", "from now"))
			}
			return status
		}
	}

	if len(st.Videos) >= BackupRecommendVideos {
		return BackupStatus{
			Recommended: true,
			Title:       "Protect Your Data",
			Message:     "You have significant workout data but haven't created a local backup yet. We highly recommend doing so!",
		}
	}
	return BackupStatus{
		Title:   "No Backups Yet",
		Message: "You haven't exported your data yet. Once you have more workouts, we'll suggest keeping a local copy safe.",
	}
}
