// Package metadata looks up movies in a TMDB compatible API to prefill
// the add-movie form.  Failures never block manual entry: Suggest and
// Details degrade to empty results and log the cause.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iliyamo/cineclub/internal/config"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("metadata search is not configured")

// ErrNotFound is returned by Lookup for an unknown movie id.
var ErrNotFound = errors.New("movie not found upstream")

const maxBodyBytes = 2 << 20

// Client provides access to the metadata API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	parsers     fastjson.ParserPool
	logger      *zap.SugaredLogger

	apiKey    string
	baseURL   string
	imageBase string
}

// NewClient creates a metadata client.  Outbound calls are throttled to
// cfg.RatePerSec with a burst of twice that rate.
func NewClient(cfg config.TMDBConfig, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 10
	}
	burst := int(2 * rps)
	if burst < 2 {
		burst = 2
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:      logger,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		imageBase:   cfg.ImageBaseURL,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// get performs one throttled GET and hands the parsed body to fn.
func (c *Client) get(ctx context.Context, path string, q url.Values, fn func(v *fastjson.Value) error) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	q.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata %s: unexpected status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		return fmt.Errorf("metadata %s: %w", path, err)
	}
	return fn(v)
}

// posterURL joins the image base with a poster path, or returns "".
func (c *Client) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBase + path
}
