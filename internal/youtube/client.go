// Package youtube looks up video metadata from the YouTube Data API.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const BaseURL = "https://www.googleapis.com/youtube/v3"

// Messages reported in Result.Error
const (
	MsgMissingKey  = "API key missing. Metadata fetching disabled."
	MsgFetchFailed = "Could not fetch video metadata."
)

var errNotFound = errors.New("video not found")

// Client is a YouTube Data API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	quota      *Quota
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another API root
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithQuota replaces the default daily quota
func WithQuota(q *Quota) Option {
	return func(c *Client) { c.quota = q }
}

// WithLogger sets the logger lookup failures are reported to
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client. An empty apiKey disables lookups.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    BaseURL,
		apiKey:     apiKey,
		quota:      NewQuota(DefaultDailyQuota, DefaultMinInterval),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Lookup fetches the metadata of video id. Failures are reported in the
// Result rather than as an error so callers can fall back to manual entry.
func (c *Client) Lookup(ctx context.Context, id string) Result {
	if !c.Enabled() {
		return Result{Error: MsgMissingKey}
	}

	md, err := c.fetch(ctx, id)
	if err != nil {
		c.logger.Warn("metadata lookup failed", zap.String("youtube_id", id), zap.Error(err))
		return Result{Error: MsgFetchFailed}
	}
	return Result{Metadata: md}
}

// QuotaRemaining returns the units left today
func (c *Client) QuotaRemaining() int {
	return c.quota.Remaining()
}

func (c *Client) fetch(ctx context.Context, id string) (*Metadata, error) {
	if err := c.quota.Wait(ctx, videosListCost); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", id)
	params.Set("key", c.apiKey)

	resp, err := c.get(ctx, "/videos", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list videoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding videos: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, errNotFound
	}

	item := list.Items[0]
	return &Metadata{
		Title:        item.Snippet.Title,
		ChannelName:  item.Snippet.ChannelTitle,
		Duration:     ParseDuration(item.ContentDetails.Duration),
		ThumbnailURL: item.Snippet.Thumbnails.best(),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Keep the API key out of logs
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = c.baseURL + path
		}
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
