// Package tmdb is the secondary metadata provider, backed by The Movie Database v3 API.
package tmdb

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

// DefaultBaseURL is the public TMDB v3 endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// result represents a single TMDB search match.
type result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

// searchResponse models the TMDB paginated search response.
type searchResponse struct {
	Page    int      `json:"page"`
	Results []result `json:"results"`
}

// tvDetails is the subset of /tv/{id} used to tell ended from running series.
type tvDetails struct {
	Status       string `json:"status"`
	InProduction bool   `json:"in_production"`
	LastAirDate  string `json:"last_air_date"`
}

type episode struct {
	Name          string  `json:"name"`
	EpisodeNumber int     `json:"episode_number"`
	VoteAverage   float64 `json:"vote_average"`
}

// seasonDetails captures the TMDB season payload (episodes included).
type seasonDetails struct {
	SeasonNumber int       `json:"season_number"`
	Episodes     []episode `json:"episodes"`
}

// Client provides access to the TMDB API for searches.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
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
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLanguage sets the language of returned titles, e.g. "en-US".
func WithLanguage(language string) Option {
	return func(c *Client) {
		c.language = strings.TrimSpace(language)
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

// New creates a TMDB client. apiKey may be a v3 key or a v4 read access token.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
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

func (c *Client) Name() string { return "tmdb" }

// SearchMovie returns the first movie result for title, narrowed by year when known.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) metadata.Result {
	params := url.Values{}
	params.Set("query", title)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var payload searchResponse
	if res, ok := c.get(ctx, "/search/movie", params, &payload); !ok {
		return res
	}
	if len(payload.Results) == 0 || payload.Results[0].ID == 0 {
		return metadata.NotFound()
	}
	first := payload.Results[0]
	return metadata.Found(metadata.Record{
		ID:     providerID(first.ID),
		Title:  first.Title,
		Year:   metadata.YearFromDate(first.ReleaseDate),
		Rating: first.VoteAverage,
	})
}

// SearchSeries returns the first tv result for title. Run status comes from a second,
// best-effort details request.
func (c *Client) SearchSeries(ctx context.Context, title string) metadata.Result {
	params := url.Values{}
	params.Set("query", title)

	var payload searchResponse
	if res, ok := c.get(ctx, "/search/tv", params, &payload); !ok {
		return res
	}
	if len(payload.Results) == 0 || payload.Results[0].ID == 0 {
		return metadata.NotFound()
	}
	first := payload.Results[0]
	rec := metadata.Record{
		ID:     providerID(first.ID),
		Title:  first.Name,
		Year:   metadata.YearFromDate(first.FirstAirDate),
		Rating: first.VoteAverage,
	}

	var details tvDetails
	if _, ok := c.get(ctx, fmt.Sprintf("/tv/%d", first.ID), url.Values{}, &details); ok {
		switch {
		case details.InProduction || strings.EqualFold(details.Status, "Returning Series"):
			rec.Ongoing = true
		case strings.EqualFold(details.Status, "Ended") || strings.EqualFold(details.Status, "Canceled"):
			if end := metadata.YearFromDate(details.LastAirDate); end > rec.Year {
				rec.EndYear = end
			}
		}
	}
	return metadata.Found(rec)
}

// GetEpisode reads the season listing of a TMDB series and picks the episode.
func (c *Client) GetEpisode(ctx context.Context, seriesID string, season, episode int) metadata.Result {
	id, err := strconv.ParseInt(seriesID, 10, 64)
	if err != nil || id <= 0 {
		return metadata.NotFound()
	}

	var payload seasonDetails
	if res, ok := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", id, season), url.Values{}, &payload); !ok {
		return res
	}
	for _, ep := range payload.Episodes {
		if ep.EpisodeNumber == episode && ep.Name != "" {
			return metadata.Found(metadata.Record{
				ID:           providerID(id),
				EpisodeTitle: ep.Name,
				Rating:       ep.VoteAverage,
			})
		}
	}
	return metadata.NotFound()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) (metadata.Result, bool) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return metadata.Transient(fmt.Errorf("parse tmdb url: %w", err), 0), false
	}
	if !c.bearer() {
		params.Set("api_key", c.apiKey)
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return metadata.Transient(fmt.Errorf("build request: %w", err), 0), false
	}
	req.Header.Set("Accept", "application/json")
	if c.bearer() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return metadata.FetchJSON(c.httpClient, req, out)
}

// bearer reports whether the key is a v4 read access token (a JWT) rather than a v3 key.
func (c *Client) bearer() bool {
	return strings.HasPrefix(c.apiKey, "eyJ") && strings.Count(c.apiKey, ".") == 2
}

func providerID(id int64) naming.ProviderID {
	return naming.ProviderID{Kind: naming.ProviderTMDB, ID: strconv.FormatInt(id, 10)}
}
