package spc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/config"
	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/retry"
	"github.com/paulmach/orb/geojson"
)

const (
	userAgent   = "storm-outlook-service (github.com/couchcryptid/storm-outlook-service)"
	maxBodySize = 32 << 20
)

// errRetryable marks failures worth another attempt: transport errors and 5xx.
var errRetryable = errors.New("retryable")

// Client fetches outlook layers and discussions from the SPC web services.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	mcdURL      string
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
}

// NewClient creates an SPC client from the feed settings in cfg.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.FeedTimeout},
		baseURL:     cfg.SPCBaseURL,
		mcdURL:      cfg.MCDURL,
		logger:      logger,
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
		maxBackoff:  4 * time.Second,
	}
}

// FetchLayer downloads and parses one outlook layer. Failures are *domain.FeedError.
func (c *Client) FetchLayer(ctx context.Context, id domain.LayerID) (*geojson.FeatureCollection, error) {
	u, err := LayerURL(c.baseURL, id)
	if err != nil {
		return nil, &domain.FeedError{Layer: id, Err: err}
	}

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, &domain.FeedError{Layer: id, URL: u, Err: err}
	}

	fc, skipped, err := DecodeLayer(body)
	if err != nil {
		return nil, &domain.FeedError{Layer: id, URL: u, Err: err}
	}
	if skipped > 0 {
		c.logger.Warn("skipped features with invalid geometry", "layer", id, "skipped", skipped)
	}
	c.logger.Debug("fetched layer", "layer", id, "features", len(fc.Features))
	return fc, nil
}

// FetchDiscussions downloads the active mesoscale discussion index.
func (c *Client) FetchDiscussions(ctx context.Context) ([]domain.MesoscaleDiscussion, error) {
	body, err := c.get(ctx, c.mcdURL)
	if err != nil {
		return nil, &domain.FeedError{Layer: domain.Discussions, URL: c.mcdURL, Err: err}
	}

	mds, err := DecodeDiscussions(body)
	if err != nil {
		return nil, &domain.FeedError{Layer: domain.Discussions, URL: c.mcdURL, Err: err}
	}
	c.logger.Debug("fetched discussions", "active", len(mds))
	return mds, nil
}

// get performs a GET with bounded retries on transient failures.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.getOnce(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !errors.Is(err, errRetryable) || attempt == c.maxAttempts || ctx.Err() != nil {
			break
		}

		c.logger.Warn("feed request failed, retrying", "url", u, "attempt", attempt, "error", err)
		if !retry.Sleep(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, c.maxBackoff)
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", errRetryable, err)
	}
	return body, nil
}
