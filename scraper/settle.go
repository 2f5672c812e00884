package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// settleTimeout is the per-step deadline of the optional settle steps.
const settleTimeout = 10 * time.Second

// settle runs the optional post-load steps on the tab: dismiss a consent
// banner, then wait for the content selector. Both are best-effort; a page
// that never shows the selector is still read and judged by the extractor.
func (s *Scraper) settle(ctx context.Context, url string) {
	if sel := s.cfg.ConsentSelector; sel != "" {
		if err := clickIfPresent(ctx, s.page, sel); err != nil {
			slog.Debug("consent banner not dismissed", "url", url, "selector", sel, "error", err)
		}
	}
	if sel := s.cfg.WaitSelector; sel != "" {
		if err := waitForSelector(ctx, s.page, sel); err != nil {
			slog.Debug("wait selector never appeared", "url", url, "selector", sel, "error", err)
		}
	}
}

// clickIfPresent clicks the first element matching selector, if any.
func clickIfPresent(ctx context.Context, page *rod.Page, selector string) error {
	stepCtx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	has, el, err := page.Context(stepCtx).Has(selector)
	if err != nil || !has {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// waitForSelector blocks until at least one element matches selector.
func waitForSelector(ctx context.Context, page *rod.Page, selector string) error {
	stepCtx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	return page.Context(stepCtx).WaitElementsMoreThan(selector, 0)
}
