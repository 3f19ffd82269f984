package service

const (
	// Backup reminders
	DefaultBackupReminderDays = 30
	BackupRecommendVideos     = 10

	// Library pagination
	DefaultPageSize = 12

	// Search result cap when an index is attached
	MaxSearchResults = 500

	// FilterAll disables a library filter
	FilterAll = "All"
)

// Library duration buckets
const (
	DurationUnder15 = "under15"
	Duration15To30  = "15-30"
	Duration30To45  = "30-45"
	DurationOver45  = "over45"
)

// DurationBuckets lists the accepted duration filter values
var DurationBuckets = []string{DurationUnder15, Duration15To30, Duration30To45, DurationOver45}
