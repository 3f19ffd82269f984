package youtube

// videoListResponse is the subset of a videos.list response we read
type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID             string         `json:"id"`
	Snippet        snippet        `json:"snippet"`
	ContentDetails contentDetails `json:"contentDetails"`
}

type snippet struct {
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	Thumbnails   thumbnails `json:"thumbnails"`
}

type thumbnails struct {
	Default *thumbnail `json:"default"`
	Medium  *thumbnail `json:"medium"`
	High    *thumbnail `json:"high"`
	Maxres  *thumbnail `json:"maxres"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type contentDetails struct {
	Duration string `json:"duration"` // ISO-8601, e.g. PT1H2M10S
}

// best returns the highest resolution thumbnail available: maxres, then high, then default
func (t thumbnails) best() string {
	for _, th := range []*thumbnail{t.Maxres, t.High, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return ""
}

// Metadata is what a lookup contributes to a new catalog entry
type Metadata struct {
	Title        string
	ChannelName  string
	Duration     int // whole minutes
	ThumbnailURL string
}

// Result is the outcome of a lookup. Exactly one of Metadata and Error is set.
type Result struct {
	Metadata *Metadata
	Error    string
}

// OK reports whether the lookup produced metadata
func (r Result) OK() bool {
	return r.Metadata != nil
}
