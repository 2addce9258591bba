// Package httpstore implements the fetch collaborator against the
// document store's REST surface.
package httpstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/engine"
)

type Fetcher struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type document struct {
	Class  string         `json:"class"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
	Keys   []string       `json:"keys"`
}

func (f *Fetcher) Fetch(ctx context.Context, class, id string, keys []string) (*engine.FetchResult, error) {
	u := fmt.Sprintf("%s/api/v1/classes/%s/%s", f.baseURL, url.PathEscape(class), url.PathEscape(id))
	if len(keys) > 0 {
		u += "?keys=" + url.QueryEscape(strings.Join(keys, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetching object",
		zap.String("class", class),
		zap.String("id", id),
		zap.Strings("keys", keys))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", class, id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s/%s: %w", class, id, engine.ErrNotFound)
	default:
		return nil, fmt.Errorf("fetch %s/%s: unexpected status %d", class, id, resp.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", class, id, err)
	}

	return &engine.FetchResult{
		Fields: doc.Fields,
		Keys:   doc.Keys,
	}, nil
}

// List returns the ids of a class, for snapshot walks.
func (f *Fetcher) List(ctx context.Context, class string) ([]string, error) {
	u := fmt.Sprintf("%s/api/v1/classes/%s", f.baseURL, url.PathEscape(class))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", class, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s: unexpected status %d", class, resp.StatusCode)
	}

	var listing struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing of %s: %w", class, err)
	}
	return listing.IDs, nil
}
