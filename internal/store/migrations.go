package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// persistedEnvelope is the durable record written under StorageKey
type persistedEnvelope struct {
	State   json.RawMessage `json:"state"`
	Version flexInt         `json:"version"`
}

// persistedState is the on-disk shape of every schema version.
// Absent keys decode to nil so each migration can tell "missing" from "empty".
type persistedState struct {
	Videos   []persistedVideo
	Schedule []ScheduleEntry
	Settings *persistedSettings
}

// persistedVideo fields decode leniently: a value of the wrong JSON type
// becomes the zero value instead of failing the record.
type persistedVideo struct {
	ID           flexString  `json:"id"`
	YoutubeID    flexString  `json:"youtubeId"`
	Title        flexString  `json:"title"`
	Duration     flexInt     `json:"duration"`
	ChannelName  flexString  `json:"channelName"`
	Type         *flexString `json:"type,omitempty"` // version 0 singular tag
	Types        flexStrings `json:"types"`
	Equipment    flexStrings `json:"equipment"`
	BodyPart     flexStrings `json:"bodyPart"`
	ThumbnailURL flexString  `json:"thumbnailUrl"`
	CreatedAt    flexString  `json:"createdAt"`
}

type persistedSettings struct {
	Name           flexString  `json:"name"`
	MonthlyGoal    flexInt     `json:"monthlyGoal"`
	Theme          *flexString `json:"theme"`
	LastExportedAt flexString  `json:"lastExportedAt,omitempty"`
}

// flexInt accepts a JSON number or a numeric string; anything else decodes to 0
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*f = flexInt(n)
			return nil
		}
	}
	*f = 0
	return nil
}

// flexString accepts a JSON string; anything else decodes to ""
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = ""
	}
	*f = flexString(s)
	return nil
}

// flexStrings accepts a list of strings or a single string. Non-string
// elements are dropped; null and any other value decode to nil (absent).
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*f = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*f = flexStrings{one}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil || items == nil {
		*f = nil
		return nil
	}
	out := make(flexStrings, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	*f = out
	return nil
}

// migration upgrades a persisted state whose version is below the threshold
type migration struct {
	below int
	name  string
	apply func(persistedState) persistedState
}

// migrations run in order; every step whose threshold exceeds the stored
// version is applied, so old blobs pass through all later steps too.
var migrations = []migration{
	{below: 1, name: "derive tag sets", apply: deriveTagSets},
	{below: 2, name: "install default settings", apply: installDefaultSettings},
	{below: 3, name: "reset retired themes", apply: resetRetiredTheme},
}

// migrate applies the chain to st stored at version from.
// It returns the names of the steps applied.
func migrate(st persistedState, from int) (persistedState, []string) {
	var applied []string
	for _, m := range migrations {
		if from < m.below {
			st = m.apply(st)
			applied = append(applied, m.name)
		}
	}
	return st, applied
}

// deriveTagSets fills the multi-valued tag sets missing from version 0 records
func deriveTagSets(st persistedState) persistedState {
	if st.Videos == nil {
		return st
	}
	videos := make([]persistedVideo, len(st.Videos))
	for i, v := range st.Videos {
		if v.Types == nil {
			if v.Type != nil && *v.Type != "" {
				v.Types = flexStrings{string(*v.Type)}
			} else {
				v.Types = flexStrings{}
			}
		}
		if v.Equipment == nil {
			v.Equipment = flexStrings{EquipmentNone}
		}
		if v.BodyPart == nil {
			v.BodyPart = flexStrings{BodyFull}
		}
		videos[i] = v
	}
	st.Videos = videos
	return st
}

// installDefaultSettings adds the settings object introduced in version 2
func installDefaultSettings(st persistedState) persistedState {
	if st.Settings == nil {
		st.Settings = toPersistedSettings(DefaultSettings())
	}
	return st
}

// resetRetiredTheme replaces theme names that are no longer offered
func resetRetiredTheme(st persistedState) persistedState {
	if st.Settings == nil || st.Settings.Theme == nil || ValidTheme(string(*st.Settings.Theme)) {
		return st
	}
	s := *st.Settings
	theme := flexString(DefaultTheme)
	s.Theme = &theme
	st.Settings = &s
	return st
}

func toPersistedSettings(s Settings) *persistedSettings {
	theme := flexString(s.Theme)
	return &persistedSettings{
		Name:           flexString(s.Name),
		MonthlyGoal:    flexInt(s.MonthlyGoal),
		Theme:          &theme,
		LastExportedAt: flexString(s.LastExportedAt),
	}
}

// toState converts a migrated persisted state into the live shape,
// repairing anything the chain leaves invalid. Videos without an id or
// repeating an earlier id are dropped to keep catalog ids unique.
func (st persistedState) toState() State {
	out := State{
		Videos:   make([]Video, 0, len(st.Videos)),
		Schedule: make([]ScheduleEntry, 0, len(st.Schedule)),
		Settings: DefaultSettings(),
	}
	seen := make(map[string]bool, len(st.Videos))
	for _, v := range st.Videos {
		id := string(v.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out.Videos = append(out.Videos, Video{
			ID:           id,
			YoutubeID:    string(v.YoutubeID),
			Title:        string(v.Title),
			Duration:     max(int(v.Duration), 0),
			ChannelName:  string(v.ChannelName),
			Types:        cloneStrings(v.Types),
			Equipment:    cloneStrings(v.Equipment),
			BodyPart:     cloneStrings(v.BodyPart),
			ThumbnailURL: string(v.ThumbnailURL),
			CreatedAt:    string(v.CreatedAt),
		})
	}
	out.Schedule = append(out.Schedule, st.Schedule...)
	if st.Settings != nil {
		out.Settings = Settings{
			Name:           string(st.Settings.Name),
			MonthlyGoal:    int(st.Settings.MonthlyGoal),
			LastExportedAt: string(st.Settings.LastExportedAt),
		}
		if st.Settings.Theme != nil {
			out.Settings.Theme = string(*st.Settings.Theme)
		}
	}
	out.Settings = normalizeSettings(out.Settings)
	return out
}

// normalizeSettings coerces values that break the settings invariants
func normalizeSettings(s Settings) Settings {
	if !ValidTheme(s.Theme) {
		s.Theme = DefaultTheme
	}
	if s.MonthlyGoal <= 0 {
		s.MonthlyGoal = DefaultSettings().MonthlyGoal
	}
	return s
}

// decodeEnvelope parses a stored blob into its persisted state and version.
// Only a blob that is not a JSON envelope around a state object is an error;
// records that cannot be decoded are skipped and counted in dropped.
func decodeEnvelope(raw string) (st persistedState, version int, dropped int, err error) {
	var env persistedEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return persistedState{}, 0, 0, err
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return persistedState{}, int(env.Version), 0, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.State, &fields); err != nil {
		return persistedState{}, 0, 0, fmt.Errorf("decoding state: %w", err)
	}

	var n int
	st.Videos, n = decodeRecords[persistedVideo](fields["videos"])
	dropped += n
	st.Schedule, n = decodeRecords[ScheduleEntry](fields["schedule"])
	dropped += n
	if b, ok := fields["settings"]; ok && string(b) != "null" {
		var ps persistedSettings
		if err := json.Unmarshal(b, &ps); err == nil {
			st.Settings = &ps
		} else {
			dropped++
		}
	}
	return st, int(env.Version), dropped, nil
}

// decodeRecords decodes a JSON array element by element, skipping elements
// that do not fit T. A missing, null or non-array value decodes to nil.
func decodeRecords[T any](raw json.RawMessage) ([]T, int) {
	if len(raw) == 0 {
		return nil, 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, 0
	}
	out := make([]T, 0, len(items))
	dropped := 0
	for _, item := range items {
		var rec T
		if string(bytes.TrimSpace(item)) == "null" || json.Unmarshal(item, &rec) != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}

// encodeEnvelope serializes s tagged with CurrentVersion
func encodeEnvelope(s State) (string, error) {
	state, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(persistedEnvelope{State: state, Version: CurrentVersion})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
