package store

import (
	"time"

	"github.com/google/uuid"
)

// Video is a bookmarked workout video in the catalog
type Video struct {
	ID           string   `json:"id"`
	YoutubeID    string   `json:"youtubeId"`
	Title        string   `json:"title"`
	Duration     int      `json:"duration"` // whole minutes
	ChannelName  string   `json:"channelName"`
	Types        []string `json:"types"`
	Equipment    []string `json:"equipment"`
	BodyPart     []string `json:"bodyPart"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	CreatedAt    string   `json:"createdAt"` // ISO-8601, set once
}

// VideoDetails holds the user-editable fields of a Video
type VideoDetails struct {
	YoutubeID    string
	Title        string
	Duration     int
	ChannelName  string
	Types        []string
	Equipment    []string
	BodyPart     []string
	ThumbnailURL string
}

// ScheduleEntry places one video on one calendar day
type ScheduleEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	VideoID     string `json:"videoId"`
	IsCompleted bool   `json:"isCompleted"`
}

// ScheduleRequest is one (date, video) pair for BatchScheduleWorkouts
type ScheduleRequest struct {
	Date    string
	VideoID string
}

// ResolvedEntry is a schedule entry joined with the video it references
type ResolvedEntry struct {
	Entry ScheduleEntry
	Video Video
}

// Settings is the process-wide user configuration
type Settings struct {
	Name           string `json:"name"`
	MonthlyGoal    int    `json:"monthlyGoal"`
	Theme          string `json:"theme"`
	LastExportedAt string `json:"lastExportedAt,omitempty"`
}

// SettingsPatch is a partial settings update; nil fields keep their value
type SettingsPatch struct {
	Name           *string
	MonthlyGoal    *int
	Theme          *string
	LastExportedAt *string
}

// State is the full store contents
type State struct {
	Videos   []Video         `json:"videos"`
	Schedule []ScheduleEntry `json:"schedule"`
	Settings Settings        `json:"settings"`
}

// ImportState replaces the store contents wholesale.
// Nil fields fall back to their defaults.
type ImportState struct {
	Videos   []Video
	Schedule []ScheduleEntry
	Settings *Settings
}

// NewVideo creates a catalog record with a fresh id and creation timestamp
func NewVideo(d VideoDetails, now time.Time) Video {
	return Video{
		ID:           uuid.NewString(),
		YoutubeID:    d.YoutubeID,
		Title:        d.Title,
		Duration:     d.Duration,
		ChannelName:  d.ChannelName,
		Types:        cloneStrings(d.Types),
		Equipment:    cloneStrings(d.Equipment),
		BodyPart:     cloneStrings(d.BodyPart),
		ThumbnailURL: d.ThumbnailURL,
		CreatedAt:    now.UTC().Format(time.RFC3339Nano),
	}
}

// WithDetails returns a copy of v with its editable fields replaced
func (v Video) WithDetails(d VideoDetails) Video {
	v.YoutubeID = d.YoutubeID
	v.Title = d.Title
	v.Duration = d.Duration
	v.ChannelName = d.ChannelName
	v.Types = cloneStrings(d.Types)
	v.Equipment = cloneStrings(d.Equipment)
	v.BodyPart = cloneStrings(d.BodyPart)
	v.ThumbnailURL = d.ThumbnailURL
	return v
}

// Details returns the editable fields of v
func (v Video) Details() VideoDetails {
	return VideoDetails{
		YoutubeID:    v.YoutubeID,
		Title:        v.Title,
		Duration:     v.Duration,
		ChannelName:  v.ChannelName,
		Types:        cloneStrings(v.Types),
		Equipment:    cloneStrings(v.Equipment),
		BodyPart:     cloneStrings(v.BodyPart),
		ThumbnailURL: v.ThumbnailURL,
	}
}

func (v Video) clone() Video {
	v.Types = cloneStrings(v.Types)
	v.Equipment = cloneStrings(v.Equipment)
	v.BodyPart = cloneStrings(v.BodyPart)
	return v
}

func (s State) clone() State {
	out := State{
		Videos:   make([]Video, len(s.Videos)),
		Schedule: make([]ScheduleEntry, len(s.Schedule)),
		Settings: s.Settings,
	}
	for i, v := range s.Videos {
		out.Videos[i] = v.clone()
	}
	copy(out.Schedule, s.Schedule)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
