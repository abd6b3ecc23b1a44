package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"somikra/internal/config"
	apperrors "somikra/internal/errors"
)

// Page is a fetched document.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Truncated   bool
	Duration    time.Duration
}

// Fetcher retrieves remote pages on behalf of browser tools that cannot make
// cross-origin requests. There is no retry and no caching.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    *slog.Logger
}

func NewFetcher(cfg config.ProxyConfig, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
		logger:    logger,
	}
}

// ValidateTarget accepts absolute http and https URLs only.
func ValidateTarget(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, apperrors.BadRequest("url parameter is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperrors.BadRequestWrap(err, "url parameter is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.BadRequest("url must use http or https")
	}
	if u.Host == "" {
		return nil, apperrors.BadRequest("url must include a host")
	}
	return u, nil
}

// Fetch GETs target. Transport failures and non-2xx responses come back as
// *apperrors.AppError carrying the status to report to the caller.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	u, err := ValidateTarget(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperrors.BadRequestWrap(err, "could not build request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperrors.Timeout(err, fmt.Sprintf("timed out fetching %s", u.Host))
		}
		return nil, apperrors.Upstream(err, 0, fmt.Sprintf("failed to fetch %s", u.Host))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, apperrors.Upstream(err, 0, fmt.Sprintf("failed to read response from %s", u.Host))
	}

	page := &Page{
		URL:         u.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Duration:    time.Since(start),
	}
	if int64(len(body)) > f.maxBody {
		page.Body = body[:f.maxBody]
		page.Truncated = true
	}

	f.logger.Debug("fetched url",
		"host", u.Host,
		"status", resp.StatusCode,
		"bytes", len(page.Body),
		"duration", page.Duration,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, apperrors.Upstream(nil, resp.StatusCode,
			fmt.Sprintf("%s responded with %s", u.Host, resp.Status))
	}
	return page, nil
}
