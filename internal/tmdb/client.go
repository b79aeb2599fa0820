// Package tmdb is a small client for The Movie Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

var ErrUpstream = errors.New("tmdb request failed")

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	details     *cache.Cache
}

// NewClient builds a client authenticating with a v4 bearer token. A
// positive cacheTTL keeps movie details in memory for that long.
func NewClient(baseURL, accessToken string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	if cacheTTL > 0 {
		c.details = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

func (c *Client) GetMovieDetails(ctx context.Context, id int64) (map[string]any, error) {
	key := strconv.FormatInt(id, 10)
	if c.details != nil {
		if v, ok := c.details.Get(key); ok {
			return v.(map[string]any), nil
		}
	}

	var out map[string]any
	if err := c.get(ctx, "/movie/"+key, nil, &out); err != nil {
		return nil, err
	}
	if c.details != nil {
		c.details.Set(key, out, cache.DefaultExpiration)
	}
	return out, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string) ([]map[string]any, error) {
	var out struct {
		Results []map[string]any `json:"results"`
	}
	if err := c.get(ctx, "/search/movie", url.Values{"query": {query}}, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []map[string]any{}
	}
	return out.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
