package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/bondscrape/config"
	"github.com/use-agent/bondscrape/extract"
	"github.com/use-agent/bondscrape/models"
)

// Fetcher returns the HTML of a page. scraper.Scraper (headless browser)
// and scraper.HTTPFetcher implement it.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// PageURL builds the URL of one listing page.
func PageURL(baseURL, pattern string, page int) string {
	return baseURL + fmt.Sprintf(pattern, page)
}

// ScrapeListing reads the first table of every listing page in
// cfg.FirstPage..cfg.LastPage, in page order. The first page that fails,
// or whose table is empty, stops the scrape; nothing is retried.
func ScrapeListing(ctx context.Context, f Fetcher, baseURL string, cfg config.ListingConfig) ([]*models.Table, error) {
	tables := make([]*models.Table, 0, cfg.LastPage-cfg.FirstPage+1)
	for page := cfg.FirstPage; page <= cfg.LastPage; page++ {
		url := PageURL(baseURL, cfg.PagePattern, page)
		slog.Info("reading listing page", "page", page, "url", url)

		rawHTML, err := f.FetchHTML(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}
		tbl, err := extract.FirstTable(rawHTML)
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}
		slog.Debug("listing page parsed", "page", page, "rows", tbl.Len(), "columns", len(tbl.Columns))
		tables = append(tables, tbl)
	}
	return tables, nil
}
