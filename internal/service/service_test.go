package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"workout-planner/internal/storage"
	"workout-planner/internal/store"
)

// testNow is Wednesday 2024-01-17
var testNow = time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s := store.New(storage.NewMemory(), store.Options{Now: func() time.Time { return testNow }})
	require.NoError(t, s.Rehydrate(context.Background()))
	return s
}

func addVideos(t *testing.T, s *store.Store, videos ...store.Video) {
	t.Helper()
	for _, v := range videos {
		require.NoError(t, s.AddVideo(v))
	}
}

func video(id, title, channel string, duration int, types, bodyParts []string) store.Video {
	return store.Video{
		ID:          id,
		YoutubeID:   "abcdefghijk",
		Title:       title,
		ChannelName: channel,
		Duration:    duration,
		Types:       types,
		BodyPart:    bodyParts,
		Equipment:   []string{store.EquipmentNone},
	}
}

func sampleCatalog() []store.Video {
	return []store.Video{
		video("v1", "Morning Yoga Flow", "Yoga With Adriene", 10, []string{store.TypeYoga}, []string{store.BodyFull}),
		video("v2", "Tabata Burn", "Fitness Blender", 15, []string{store.TypeHIIT}, []string{store.BodyFull}),
		video("v3", "Arm Day", "Caroline Girvan", 30, []string{store.TypeStrength}, []string{"Arms"}),
		video("v4", "Core Pilates", "Blogilates", 31, []string{store.TypePilates}, []string{"Core"}),
		video("v5", "Leg Burner", "Caroline Girvan", 45, []string{store.TypeStrength}, []string{"Legs"}),
		video("v6", "Long Ride", "Global Cycling", 46, []string{store.TypeCardio}, []string{"Legs"}),
	}
}
