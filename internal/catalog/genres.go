package catalog

import (
	"context"
	"fmt"
	"net/url"

	"marquee/internal/logging"
)

type genreListResponse struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// genreIndex returns the id→name genre table for a kind, loading and caching
// it on first use. A failed load is tolerated: items simply carry no genre
// names until a later call succeeds.
func (c *TMDBClient) genreIndex(ctx context.Context, kind Kind) map[int64]string {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()

	if cached, ok := c.genres[kind]; ok {
		return cached
	}

	segment := "movie"
	if kind == KindSeries {
		segment = "tv"
	}
	endpoint := fmt.Sprintf("%s/genre/%s/list", c.baseURL, segment)
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	var payload genreListResponse
	if err := c.getJSON(ctx, endpoint, params, &payload); err != nil {
		c.logger.Warn("genre list fetch failed",
			logging.String("kind", string(kind)),
			logging.Error(err))
		return nil
	}

	index := make(map[int64]string, len(payload.Genres))
	for _, g := range payload.Genres {
		index[g.ID] = g.Name
	}
	c.genres[kind] = index
	return index
}
