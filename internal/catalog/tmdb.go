package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"marquee/internal/logging"
	"marquee/internal/retry"
)

const (
	defaultHTTPTimeout = 20 * time.Second
	defaultAttempts    = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// TMDBClient queries The Movie Database discover endpoints for release
// records.
type TMDBClient struct {
	apiKey       string
	baseURL      string
	language     string
	minVoteCount int
	httpClient   *http.Client
	policy       retry.Policy
	logger       *slog.Logger

	genreMu sync.Mutex
	genres  map[Kind]map[int64]string
}

var _ Source = (*TMDBClient)(nil)

// TMDBOption configures a TMDBClient.
type TMDBOption func(*TMDBClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TMDBOption {
	return func(c *TMDBClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for degraded-path diagnostics.
func WithLogger(logger *slog.Logger) TMDBOption {
	return func(c *TMDBClient) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "catalog")
		}
	}
}

// WithRetryPolicy overrides the transient-failure retry behavior.
func WithRetryPolicy(policy retry.Policy) TMDBOption {
	return func(c *TMDBClient) {
		c.policy = policy
	}
}

// WithMinVoteCount filters out records below the given vote count.
func WithMinVoteCount(count int) TMDBOption {
	return func(c *TMDBClient) {
		if count >= 0 {
			c.minVoteCount = count
		}
	}
}

// NewTMDB creates a TMDB-backed catalog source.
func NewTMDB(apiKey, baseURL, language string, opts ...TMDBOption) (*TMDBClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &TMDBClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		policy: retry.Policy{
			Attempts: defaultAttempts,
			Delay:    defaultRetryDelay,
			Timeout:  defaultHTTPTimeout,
		},
		logger: logging.NewNop(),
		genres: make(map[Kind]map[int64]string),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type discoverResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	OriginalLanguage string  `json:"original_language"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	GenreIDs         []int64 `json:"genre_ids"`
}

type discoverResponse struct {
	Page         int              `json:"page"`
	Results      []discoverResult `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

type videoEntry struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

type detailResponse struct {
	Videos struct {
		Results []videoEntry `json:"results"`
	} `json:"videos"`
}

// DayReleases implements Source. When the configured region yields nothing
// for a movie query, the lookup falls back to the US region before giving up.
func (c *TMDBClient) DayReleases(ctx context.Context, q Query) ([]RawItem, error) {
	if strings.TrimSpace(q.Day) == "" {
		return nil, errors.New("query day required")
	}
	limit := clampLimit(q.Limit)

	results, err := c.discoverDay(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 && q.Kind == KindMovie && q.Region != "US" {
		fallback := q
		fallback.Region = "US"
		if results, err = c.discoverDay(ctx, fallback); err != nil {
			return nil, err
		}
	}

	return c.assemble(ctx, q.Kind, results, limit), nil
}

// nextWindowDays bounds how far ahead NextReleases searches.
const nextWindowDays = 90

// NextReleases implements Source. It searches the ninety days after the
// query day and returns the soonest releases first. The vote floor is not
// applied: unreleased records have no votes yet.
func (c *TMDBClient) NextReleases(ctx context.Context, q Query) ([]RawItem, error) {
	start, err := time.Parse("2006-01-02", strings.TrimSpace(q.Day))
	if err != nil {
		return nil, fmt.Errorf("parse query day: %w", err)
	}
	from := start.AddDate(0, 0, 1).Format("2006-01-02")
	until := start.AddDate(0, 0, nextWindowDays).Format("2006-01-02")

	params := c.baseParams()
	switch q.Kind {
	case KindSeries:
		params.Set("first_air_date.gte", from)
		params.Set("first_air_date.lte", until)
		params.Set("sort_by", "first_air_date.asc")
	default:
		params.Set("release_date.gte", from)
		params.Set("release_date.lte", until)
		params.Set("with_release_type", "4")
		params.Set("sort_by", "primary_release_date.asc")
		if region := strings.TrimSpace(q.Region); region != "" {
			params.Set("region", region)
		}
	}

	resp, err := c.discover(ctx, q.Kind, params)
	if err != nil {
		return nil, err
	}
	return c.assemble(ctx, q.Kind, resp.Results, clampLimit(q.Limit)), nil
}

// YearReleases implements Source.
func (c *TMDBClient) YearReleases(ctx context.Context, year int, monthDay string, limit int) ([]RawItem, error) {
	monthDay = strings.TrimSpace(monthDay)
	if year < 1900 || monthDay == "" {
		return nil, errors.New("year and month-day required")
	}
	day := fmt.Sprintf("%d-%s", year, monthDay)

	params := c.baseParams()
	params.Set("primary_release_date.gte", day)
	params.Set("primary_release_date.lte", day)

	resp, err := c.discover(ctx, KindMovie, params)
	if err != nil {
		return nil, err
	}
	return c.assemble(ctx, KindMovie, resp.Results, clampLimit(limit)), nil
}

func (c *TMDBClient) discoverDay(ctx context.Context, q Query) ([]discoverResult, error) {
	params := c.baseParams()
	switch q.Kind {
	case KindSeries:
		params.Set("first_air_date.gte", q.Day)
		params.Set("first_air_date.lte", q.Day)
	default:
		params.Set("release_date.gte", q.Day)
		params.Set("release_date.lte", q.Day)
		// Release type 4 is "digital" in TMDB's taxonomy.
		params.Set("with_release_type", "4")
		if region := strings.TrimSpace(q.Region); region != "" {
			params.Set("region", region)
		}
	}
	if c.minVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(c.minVoteCount))
	}

	resp, err := c.discover(ctx, q.Kind, params)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *TMDBClient) discover(ctx context.Context, kind Kind, params url.Values) (*discoverResponse, error) {
	endpoint := c.baseURL + "/discover/movie"
	if kind == KindSeries {
		endpoint = c.baseURL + "/discover/tv"
	}

	var payload discoverResponse
	if err := c.getJSON(ctx, endpoint, params, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &payload, nil
}

// assemble converts discover results into RawItems, attaching genre names
// and secondary video links. Detail lookups are best-effort: a failed fetch
// leaves the item without links rather than dropping it.
func (c *TMDBClient) assemble(ctx context.Context, kind Kind, results []discoverResult, limit int) []RawItem {
	if len(results) > limit {
		results = results[:limit]
	}
	genreNames := c.genreIndex(ctx, kind)

	items := make([]RawItem, 0, len(results))
	for _, r := range results {
		item := RawItem{
			ID:          r.ID,
			Kind:        kind,
			Title:       firstNonEmpty(r.Title, r.Name),
			Summary:     r.Overview,
			Language:    r.OriginalLanguage,
			PosterPath:  r.PosterPath,
			ReleaseDate: firstNonEmpty(r.ReleaseDate, r.FirstAirDate),
			Rating:      r.VoteAverage,
			VoteCount:   r.VoteCount,
			Genres:      resolveGenres(r.GenreIDs, genreNames),
		}
		links, err := c.fetchLinks(ctx, kind, r.ID)
		if err != nil {
			c.logger.Warn("detail lookup failed, continuing without links",
				logging.Int64(logging.FieldItemID, r.ID),
				logging.Error(err))
		} else {
			item.Links = links
		}
		items = append(items, item)
	}
	return items
}

func (c *TMDBClient) fetchLinks(ctx context.Context, kind Kind, id int64) ([]Link, error) {
	segment := "movie"
	if kind == KindSeries {
		segment = "tv"
	}
	endpoint := fmt.Sprintf("%s/%s/%d", c.baseURL, segment, id)
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "videos")

	var payload detailResponse
	if err := c.getJSON(ctx, endpoint, params, &payload); err != nil {
		return nil, err
	}
	links := make([]Link, 0, len(payload.Videos.Results))
	for _, v := range payload.Videos.Results {
		links = append(links, Link{Site: v.Site, Type: v.Type, Key: v.Key})
	}
	return links, nil
}

func (c *TMDBClient) baseParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	if c.language != "" {
		params.Set("language", c.language)
	}
	return params
}

func (c *TMDBClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	parsed.RawQuery = params.Encode()

	return retry.Do(ctx, c.policy, func(ctx context.Context) error {
		return c.getJSONOnce(ctx, parsed.String(), out)
	})
}

func (c *TMDBClient) getJSONOnce(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit < 1 || limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func resolveGenres(ids []int64, names map[int64]string) []string {
	if len(ids) == 0 || len(names) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok && name != "" {
			resolved = append(resolved, name)
		}
	}
	return resolved
}
