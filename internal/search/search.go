// Package search keeps an in-memory full-text index of the video catalog.
package search

import (
	"context"
	"strings"
	"sync"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"workout-planner/internal/store"
)

// Index is a bleve index over video titles, channels and tags
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	size  int
}

// document is what we store in bleve per video
type document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// TitleExact is the lowercased title, matched as a single keyword
	TitleExact string   `json:"title_exact"`
	Channel    string   `json:"channel"`
	Tags       []string `json:"tags"`
}

func newDocument(v store.Video) document {
	tags := make([]string, 0, len(v.Types)+len(v.BodyPart)+len(v.Equipment))
	tags = append(tags, v.Types...)
	tags = append(tags, v.BodyPart...)
	tags = append(tags, v.Equipment...)
	return document{
		ID:         v.ID,
		Title:      v.Title,
		TitleExact: strings.ToLower(strings.TrimSpace(v.Title)),
		Channel:    v.ChannelName,
		Tags:       tags,
	}
}

// New creates an empty in-memory index
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"
	text.Store = false
	text.Index = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("title_exact", keyword)
	doc.AddFieldMappingsAt("channel", text)
	doc.AddFieldMappingsAt("tags", text)

	m.DefaultMapping = doc
	return m
}

// Rebuild replaces the indexed documents with videos
func (x *Index) Rebuild(ctx context.Context, videos []store.Video) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			idx.Close()
			return err
		}
		if err := batch.Index(v.ID, newDocument(v)); err != nil {
			idx.Close()
			return err
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return err
	}

	x.mu.Lock()
	old := x.index
	x.index = idx
	x.size = len(videos)
	x.mu.Unlock()
	return old.Close()
}

// Len returns the number of indexed videos
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.size
}

// Search returns the ids of up to size videos matching term, best match first
func (x *Index) Search(ctx context.Context, term string, size int) ([]string, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	const (
		boostTitleExact  = 50.0
		boostTitlePhrase = 12.0
		boostTitlePrefix = 6.0
		boostTitle       = 3.0
		boostChannel     = 2.0
		boostTags        = 1.0
	)

	q := bleve.NewBooleanQuery()

	exact := bleve.NewTermQuery(term)
	exact.SetField("title_exact")
	exact.SetBoost(boostTitleExact)
	q.AddShould(exact)

	phrase := bleve.NewMatchPhraseQuery(term)
	phrase.SetField("title")
	phrase.SetBoost(boostTitlePhrase)
	q.AddShould(phrase)

	channelPhrase := bleve.NewMatchPhraseQuery(term)
	channelPhrase.SetField("channel")
	channelPhrase.SetBoost(boostChannel)
	q.AddShould(channelPhrase)

	tokens := strings.Fields(term)
	if len(tokens) > 0 {
		first := bleve.NewPrefixQuery(tokens[0])
		first.SetField("title")
		first.SetBoost(boostTitlePrefix)
		q.AddShould(first)
	}

	fields := map[string]float64{"title": boostTitle, "channel": boostChannel, "tags": boostTags}
	for _, tok := range tokens {
		fuzz := 1
		if len(tok) >= 6 {
			fuzz = 2
		}
		for field, boost := range fields {
			fq := bleve.NewFuzzyQuery(tok)
			fq.SetField(field)
			fq.SetFuzziness(fuzz)
			fq.SetBoost(boost)
			q.AddShould(fq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(field)
			pq.SetBoost(boost)
			q.AddShould(pq)
		}
	}
	q.SetMinShould(1)

	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	x.mu.RLock()
	defer x.mu.RUnlock()
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Close releases the index
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}
