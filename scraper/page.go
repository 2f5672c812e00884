package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/bondscrape/models"
	"github.com/ysmood/gson"
)

// FetchHTML navigates the shared tab to url and returns the rendered HTML.
//
// Lifecycle:
//
//  1. Timeout guard   – NavigationTimeout bounds the whole call
//  2. Navigate        – triggers page load
//  3. Wait            – load event, DOM stable, then the settle steps
//  4. Status check    – HTTP status from the navigation timing entry
//  5. Extract         – page.HTML()
func (s *Scraper) FetchHTML(ctx context.Context, url string) (string, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	if s.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.NavigationTimeout)
		defer cancel()
	}
	p := s.page.Context(ctx)

	// ── 2. Navigate ───────────────────────────────────────────────────
	if err := p.Navigate(url); err != nil {
		return "", categorizeError(err, "navigation to "+url+" failed")
	}

	// ── 3. Wait strategy ──────────────────────────────────────────────
	if err := p.WaitLoad(); err != nil {
		return "", categorizeError(err, "page load of "+url+" did not complete")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", url, "error", err,
		)
	}
	s.settle(ctx, url)

	// ── 4. Status check (best-effort) ─────────────────────────────────
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		if status := res.Value.Int(); status >= 400 {
			return "", models.NewScrapeError(
				models.ErrCodeNavigation,
				fmt.Sprintf("%s answered HTTP %d", url, status),
				nil,
			)
		}
	}

	// ── 5. Extract rendered HTML ──────────────────────────────────────
	rawHTML, err := p.HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract page HTML")
	}
	return rawHTML, nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
