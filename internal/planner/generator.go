// Package planner proposes random workouts for a set of days.
package planner

import (
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"workout-planner/internal/store"
)

// DayConfig holds the filters for one day. Empty sets and nil bounds do not constrain.
type DayConfig struct {
	Date        string // YYYY-MM-DD
	Types       []string
	BodyParts   []string
	Equipment   []string
	MinDuration *int
	MaxDuration *int
}

// DayPick is the outcome for one day. Video is nil when nothing matched.
type DayPick struct {
	Date  string
	Video *store.Video
}

// Plan lists one pick per configured day, in the order the days were given
type Plan []DayPick

// Requests returns the picks that found a video, ready for batch scheduling
func (p Plan) Requests() []store.ScheduleRequest {
	var reqs []store.ScheduleRequest
	for _, pick := range p {
		if pick.Video == nil {
			continue
		}
		reqs = append(reqs, store.ScheduleRequest{Date: pick.Date, VideoID: pick.Video.ID})
	}
	return reqs
}

// Matched counts the days that received a video
func (p Plan) Matched() int {
	n := 0
	for _, pick := range p {
		if pick.Video != nil {
			n++
		}
	}
	return n
}

// Generator picks uniformly among the videos that pass a day's filters
type Generator struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewGenerator creates a generator. A nil rng is replaced with a randomly seeded one.
func NewGenerator(rng *rand.Rand, logger *zap.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{rng: rng, logger: logger}
}

// Generate produces a plan for days drawn from videos. Each day is independent,
// so a video may be picked for more than one day.
func (g *Generator) Generate(videos []store.Video, days []DayConfig) Plan {
	plan := make(Plan, 0, len(days))
	for _, day := range days {
		candidates := Candidates(videos, day)
		pick := DayPick{Date: day.Date}
		if len(candidates) > 0 {
			v := candidates[g.rng.IntN(len(candidates))]
			pick.Video = &v
		}
		g.logger.Debug("planned day",
			zap.String("date", day.Date),
			zap.Int("candidates", len(candidates)),
			zap.Bool("matched", pick.Video != nil),
		)
		plan = append(plan, pick)
	}
	return plan
}

// Candidates returns the videos that satisfy every filter of day
func Candidates(videos []store.Video, day DayConfig) []store.Video {
	var out []store.Video
	for _, v := range videos {
		if Matches(v, day) {
			out = append(out, v)
		}
	}
	return out
}

// Matches reports whether v passes the filters of day. Duration bounds are inclusive.
func Matches(v store.Video, day DayConfig) bool {
	if !intersects(day.Types, v.Types) {
		return false
	}
	if !intersects(day.BodyParts, v.BodyPart) {
		return false
	}
	if !intersects(day.Equipment, v.Equipment) {
		return false
	}
	if day.MinDuration != nil && v.Duration < *day.MinDuration {
		return false
	}
	if day.MaxDuration != nil && v.Duration > *day.MaxDuration {
		return false
	}
	return true
}

// intersects is true when want is empty or shares an element with have
func intersects(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
