// Package omdb is the primary metadata provider, backed by the OMDb API (IMDb ids).
package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/metadata"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

// DefaultBaseURL is the public OMDb endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// ErrRequestLimit is reported when the daily key quota is used up.
var ErrRequestLimit = errors.New("omdb request limit reached")

// response covers title, id and episode lookups; unused fields stay empty.
type response struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDBID     string `json:"imdbID"`
	Type       string `json:"Type"`
	IMDBRating string `json:"imdbRating"`
	Season     string `json:"Season"`
	Episode    string `json:"Episode"`
	SeriesID   string `json:"seriesID"`
}

// Client queries OMDb.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ metadata.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at another endpoint, e.g. an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New creates an OMDb client.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string { return "omdb" }

// SearchMovie looks a movie up by exact title, narrowed by year when known.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) metadata.Result {
	params := url.Values{}
	params.Set("t", title)
	params.Set("type", "movie")
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	payload, res, ok := c.get(ctx, params)
	if !ok {
		return res
	}
	return c.identity(payload)
}

// SearchSeries looks a series up by exact title.
func (c *Client) SearchSeries(ctx context.Context, title string) metadata.Result {
	params := url.Values{}
	params.Set("t", title)
	params.Set("type", "series")
	payload, res, ok := c.get(ctx, params)
	if !ok {
		return res
	}
	return c.identity(payload)
}

// GetEpisode fetches one episode of the series with the given IMDb id.
func (c *Client) GetEpisode(ctx context.Context, seriesID string, season, episode int) metadata.Result {
	params := url.Values{}
	params.Set("i", seriesID)
	params.Set("Season", strconv.Itoa(season))
	params.Set("Episode", strconv.Itoa(episode))
	payload, res, ok := c.get(ctx, params)
	if !ok {
		return res
	}
	if payload.Title == "" || payload.Title == "N/A" {
		return metadata.NotFound()
	}
	return metadata.Found(metadata.Record{
		ID:           naming.ProviderID{Kind: naming.ProviderIMDb, ID: orDefault(payload.IMDBID, seriesID)},
		Title:        payload.Title,
		EpisodeTitle: payload.Title,
		Rating:       metadata.ParseRating(payload.IMDBRating),
	})
}

func (c *Client) identity(payload *response) metadata.Result {
	if payload.IMDBID == "" || payload.Title == "" {
		return metadata.NotFound()
	}
	start, end, ongoing := metadata.ParseYearRange(payload.Year)
	return metadata.Found(metadata.Record{
		ID:      naming.ProviderID{Kind: naming.ProviderIMDb, ID: payload.IMDBID},
		Title:   payload.Title,
		Year:    start,
		EndYear: end,
		Ongoing: ongoing && payload.Type == "series",
		Rating:  metadata.ParseRating(payload.IMDBRating),
	})
}

// get performs the request and unwraps OMDb's Response/Error envelope. OMDb reports
// quota exhaustion as 401 with an error body, so 401 bodies are inspected too.
func (c *Client) get(ctx context.Context, params url.Values) (*response, metadata.Result, bool) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, metadata.Transient(fmt.Errorf("parse omdb url: %w", err), 0), false
	}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, metadata.Transient(fmt.Errorf("build request: %w", err), 0), false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil || (resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized) {
		res, _ := metadata.ClassifyResponse(resp, err)
		return nil, res, false
	}

	var payload response
	if res, ok := metadata.DecodeJSON(resp, &payload); !ok {
		return nil, res, false
	}
	if strings.EqualFold(payload.Response, "False") {
		if strings.Contains(strings.ToLower(payload.Error), "limit") {
			return nil, metadata.Transient(fmt.Errorf("%w: %s", ErrRequestLimit, payload.Error), 0), false
		}
		return nil, metadata.NotFound(), false
	}
	return &payload, metadata.Result{}, true
}

func orDefault(v, def string) string {
	if v == "" || v == "N/A" {
		return def
	}
	return v
}
