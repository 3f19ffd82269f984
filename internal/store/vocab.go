package store

import (
	"slices"
	"strings"
)

// CurrentVersion is the persisted schema version written by this build
const CurrentVersion = 3

// StorageKey is the fixed key the state blob is written under
const StorageKey = "workout-planner-storage"

// Workout types
const (
	TypeYoga     = "Yoga"
	TypeHIIT     = "HIIT"
	TypeStrength = "Strength"
	TypeCardio   = "Cardio"
	TypePilates  = "Pilates"
	TypeStretch  = "Stretch"
	TypeBoxing   = "Boxing"
)

// Other is the fallback tag in every vocabulary
const Other = "Other"

// Tag defaults for records that predate the tag sets
const (
	EquipmentNone = "None"
	BodyFull      = "Full Body"
)

var (
	// WorkoutTypes is the workout type vocabulary
	WorkoutTypes = []string{TypeYoga, TypeHIIT, TypeStrength, TypeCardio, TypePilates, TypeStretch, TypeBoxing, Other}

	// EquipmentOptions is the equipment vocabulary
	EquipmentOptions = []string{EquipmentNone, "Dumbbells", "Kettlebell", "Resistance Band", "Mat", "Yoga Block", "Bench", "Barbell", Other}

	// BodyParts is the body part vocabulary
	BodyParts = []string{BodyFull, "Upper Body", "Lower Body", "Core", "Arms", "Legs", "Back", "Chest", "Shoulders", Other}

	// Themes lists the valid theme names
	Themes = []string{"dark", "white", "mint", "sky", "peach"}
)

// DefaultTheme is applied when a stored theme is unknown
const DefaultTheme = "dark"

// DefaultSettings returns the settings installed on first run
func DefaultSettings() Settings {
	return Settings{
		Name:        "Athlete",
		MonthlyGoal: 20,
		Theme:       DefaultTheme,
	}
}

// ValidTheme reports whether name is a current theme
func ValidTheme(name string) bool {
	return slices.Contains(Themes, name)
}

// CanonicalTag maps input onto the vocabulary, case-insensitively.
// Values outside the vocabulary become Other.
func CanonicalTag(vocab []string, tag string) string {
	for _, v := range vocab {
		if strings.EqualFold(v, tag) {
			return v
		}
	}
	return Other
}

// CanonicalTags applies CanonicalTag to each tag, dropping duplicates
func CanonicalTags(vocab []string, tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		c := CanonicalTag(vocab, t)
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
