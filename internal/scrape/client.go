package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"yardwatch/internal/scrape/util"
)

const defaultUserAgent = "yardwatch/1.0 (salvage yard monitor)"

// Client is the fetch helper every adapter shares: one user agent,
// per-host pacing, bounded retries with a doubling delay.
type Client struct {
	httpc      *http.Client
	limiter    *util.HostLimiter
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

type ClientConfig struct {
	Timeout        time.Duration // per request, not per Get
	RequestsPerSec float64
	MaxRetries     int
	RetryDelay     time.Duration
	UserAgent      string
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 0.33 // ~one request per 3s per host
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		httpc:      &http.Client{Timeout: cfg.Timeout},
		limiter:    util.NewHostLimiter(cfg.RequestsPerSec, 1),
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Get fetches one URL. Every attempt waits on the host limiter first, so
// retries cannot defeat the inter-request delay.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
			delay *= 2
		}

		if err := c.limiter.WaitURL(ctx, url); err != nil {
			return nil, err
		}

		body, err := c.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
