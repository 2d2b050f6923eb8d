// Package spacex implements model.Catalog on top of the public SpaceX v4 REST
// API. Listings go through the paginated query endpoints; detail screens use
// the plain GET endpoints.
package spacex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tinytelemetry/orbit/internal/model"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 * 1024 * 1024

// Config holds the client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the SpaceX API. Identical concurrent requests are
// collapsed into a single round trip.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	ua      string
	log     zerolog.Logger
	group   singleflight.Group
}

var _ model.Catalog = (*Client)(nil)

// New creates a client. Zero fields in cfg fall back to the model defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = model.DefaultSpaceXURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = model.DefaultHTTPTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "orbit"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		timeout: cfg.Timeout,
		ua:      cfg.UserAgent,
		log:     cfg.Logger.With().Str("component", "spacex").Logger(),
	}
}

// Launches returns the launch listing, newest first.
func (c *Client) Launches() model.PagedSource[model.Launch] {
	return model.PagedSourceFunc[model.Launch](func(ctx context.Context, f model.Filter, size, page int) (model.Page[model.Launch], error) {
		return query[model.Launch](ctx, c, "launches", model.LaunchSort, f, size, page)
	})
}

// Rockets returns the rocket listing, by name.
func (c *Client) Rockets() model.PagedSource[model.Rocket] {
	return model.PagedSourceFunc[model.Rocket](func(ctx context.Context, f model.Filter, size, page int) (model.Page[model.Rocket], error) {
		return query[model.Rocket](ctx, c, "rockets", model.RocketSort, f, size, page)
	})
}

// Launch fetches a single launch by id.
func (c *Client) Launch(ctx context.Context, id string) (model.Launch, error) {
	var l model.Launch
	err := c.get(ctx, "launches", id, &l)
	return l, err
}

// Rocket fetches a single rocket by id.
func (c *Client) Rocket(ctx context.Context, id string) (model.Rocket, error) {
	var r model.Rocket
	err := c.get(ctx, "rockets", id, &r)
	return r, err
}

func query[T any](ctx context.Context, c *Client, resource string, sort model.SortSpec, filter model.Filter, pageSize, page int) (model.Page[T], error) {
	if pageSize < 1 || page < 1 {
		return model.Page[T]{}, model.NewFetchError(model.InvalidResponseShape, resource,
			fmt.Errorf("page %d and page size %d must be positive", page, pageSize))
	}

	body, err := json.Marshal(queryRequest{
		Query:   filter,
		Options: queryOptions{Limit: pageSize, Page: page, Sort: sortDoc(sort)},
	})
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("spacex: marshal query: %w", err)
	}

	path := "/" + resource + "/query"
	raw, err := c.shared(ctx, resource, "POST "+path+" "+string(body), func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodPost, path, resource, body)
	})
	if err != nil {
		return model.Page[T]{}, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.Page[T]{}, model.NewFetchError(model.InvalidResponseShape, resource, err)
	}
	p, err := toPage[T](env, pageSize)
	if err != nil {
		return model.Page[T]{}, model.NewFetchError(model.InvalidResponseShape, resource, err)
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, resource, id string, dest interface{}) error {
	if strings.TrimSpace(id) == "" {
		return model.NewFetchError(model.NotFound, resource, fmt.Errorf("empty id"))
	}
	path := "/" + resource + "/" + url.PathEscape(id)
	raw, err := c.shared(ctx, resource, "GET "+path, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, resource, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return model.NewFetchError(model.InvalidResponseShape, resource, err)
	}
	return nil
}

// shared runs fn once per key among concurrent callers. A caller whose
// context ends stops waiting; the round trip itself keeps going for others,
// detached from that caller and bounded by the client timeout.
func (c *Client) shared(ctx context.Context, resource, key string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return fn(rctx)
	})
	select {
	case <-ctx.Done():
		return nil, model.NewFetchError(model.NetworkFailure, resource, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug().Str("key", key).Msg("shared in-flight response")
		}
		return res.Val.([]byte), nil
	}
}

// do performs one round trip and classifies failures.
func (c *Client) do(ctx context.Context, method, path, resource string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, fmt.Errorf("spacex: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, model.NewFetchError(model.NetworkFailure, resource, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, model.NewFetchError(model.NetworkFailure, resource, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request finished")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.NewFetchError(model.NotFound, resource, fmt.Errorf("%s %s: %s", method, path, resp.Status))
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		return nil, model.NewFetchError(model.NetworkFailure, resource, fmt.Errorf("%s %s: %s", method, path, resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, model.NewFetchError(model.InvalidResponseShape, resource, fmt.Errorf("%s %s: %s", method, path, resp.Status))
	}
	return data, nil
}
