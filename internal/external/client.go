// Package external fetches currency rates and stock quotes from third-party
// HTTP APIs. Failures are logged and surface as empty results.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 32 << 20

// Options configures a client.
type Options struct {
	BaseURL    string
	APIKey     string
	CacheTTL   time.Duration // zero disables caching
	HTTPClient *http.Client
}

// client holds what the rate and quote clients share.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.Cache
	log     zerolog.Logger
}

func newClient(opts Options, log zerolog.Logger) client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	c := client{baseURL: opts.BaseURL, apiKey: opts.APIKey, http: hc, log: log}
	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c
}

func (c *client) cached(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *client) store(key string, v any) {
	if c.cache != nil {
		c.cache.Set(key, v, cache.DefaultExpiration)
	}
}

// getJSON performs req and decodes a 2xx JSON body into out.
func (c *client) getJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("requesting %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("requesting %s: unexpected status %s", req.URL.Host, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Host, err)
	}
	return nil
}
