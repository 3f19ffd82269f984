package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"workout-planner/internal/store"
	"workout-planner/internal/youtube"
)

var (
	// ErrInvalidURL is returned when no video id can be read from a URL
	ErrInvalidURL = errors.New("please provide a valid YouTube video URL")
	// ErrMissingDuration is returned when neither the user nor the lookup supplied a duration
	ErrMissingDuration = errors.New("please provide a valid duration in minutes")
	// ErrVideoNotFound is returned when editing an id that is not in the catalog
	ErrVideoNotFound = errors.New("video not found")
)

// MetadataLookup fetches video details by id
type MetadataLookup interface {
	Lookup(ctx context.Context, id string) youtube.Result
}

// CatalogService adds and edits catalog videos, filling details from the metadata API
type CatalogService struct {
	lookup MetadataLookup
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewCatalogService creates a new catalog service. A nil lookup disables metadata fetching.
func NewCatalogService(lookup MetadataLookup, s *store.Store, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{lookup: lookup, store: s, logger: logger, now: time.Now}
}

// AddRequest describes a new video. Empty fields are filled from the lookup,
// then from placeholders.
type AddRequest struct {
	URL         string
	Title       string
	ChannelName string
	Duration    *int
	Types       []string
	Equipment   []string
	BodyPart    []string
}

// AddResult reports what Add stored
type AddResult struct {
	Video store.Video
	// LookupError is the metadata failure message, empty if details were fetched
	LookupError string
}

// Add resolves the URL, fetches metadata and appends the video to the catalog
func (c *CatalogService) Add(ctx context.Context, req AddRequest) (*AddResult, error) {
	id, ok := youtube.ExtractID(req.URL)
	if !ok {
		return nil, ErrInvalidURL
	}

	md, lookupErr := c.fetch(ctx, id)

	d := store.VideoDetails{
		YoutubeID:    id,
		Title:        firstNonEmpty(req.Title, md.Title, "Workout "+id),
		ChannelName:  firstNonEmpty(req.ChannelName, md.ChannelName, "YouTube Channel"),
		ThumbnailURL: firstNonEmpty(md.ThumbnailURL, youtube.ThumbnailURL(id)),
		Types:        tagsOrDefault(store.WorkoutTypes, req.Types, store.TypeStrength),
		Equipment:    tagsOrDefault(store.EquipmentOptions, req.Equipment, store.EquipmentNone),
		BodyPart:     tagsOrDefault(store.BodyParts, req.BodyPart, store.BodyFull),
	}
	switch {
	case req.Duration != nil:
		d.Duration = *req.Duration
	case lookupErr == "" && md.Duration > 0:
		d.Duration = md.Duration
	default:
		return nil, ErrMissingDuration
	}
	if d.Duration < 0 {
		return nil, ErrMissingDuration
	}

	v := store.NewVideo(d, c.now())
	if err := c.store.AddVideo(v); err != nil {
		return nil, fmt.Errorf("adding video: %w", err)
	}
	c.logger.Info("video added",
		zap.String("id", v.ID),
		zap.String("youtube_id", id),
		zap.Bool("fetched", lookupErr == ""),
	)
	return &AddResult{Video: v, LookupError: lookupErr}, nil
}

// fetch returns the looked-up metadata, or the fallback and the failure message
func (c *CatalogService) fetch(ctx context.Context, id string) (youtube.Metadata, string) {
	if c.lookup == nil {
		return youtube.Fallback(id), youtube.MsgMissingKey
	}
	res := c.lookup.Lookup(ctx, id)
	if !res.OK() {
		return youtube.Fallback(id), res.Error
	}
	return *res.Metadata, ""
}

// EditRequest changes the editable fields of a video; nil fields are kept
type EditRequest struct {
	Title       *string
	ChannelName *string
	Duration    *int
	Types       []string
	Equipment   []string
	BodyPart    []string
}

// Edit applies req to the catalog video id
func (c *CatalogService) Edit(id string, req EditRequest) (store.Video, error) {
	v, ok := c.store.Video(id)
	if !ok {
		return store.Video{}, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}

	d := v.Details()
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.ChannelName != nil {
		d.ChannelName = *req.ChannelName
	}
	if req.Duration != nil {
		if *req.Duration < 0 {
			return store.Video{}, ErrMissingDuration
		}
		d.Duration = *req.Duration
	}
	if req.Types != nil {
		d.Types = store.CanonicalTags(store.WorkoutTypes, req.Types)
	}
	if req.Equipment != nil {
		d.Equipment = store.CanonicalTags(store.EquipmentOptions, req.Equipment)
	}
	if req.BodyPart != nil {
		d.BodyPart = store.CanonicalTags(store.BodyParts, req.BodyPart)
	}

	updated := v.WithDetails(d)
	if err := c.store.UpdateVideo(updated); err != nil {
		return store.Video{}, fmt.Errorf("updating video: %w", err)
	}
	return updated, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func tagsOrDefault(vocab, tags []string, def string) []string {
	if len(tags) == 0 {
		return []string{def}
	}
	return store.CanonicalTags(vocab, tags)
}
