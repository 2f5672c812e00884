package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/bondscrape/config"
	"github.com/use-agent/bondscrape/extract"
	"github.com/use-agent/bondscrape/models"
)

// YieldEnricher adds the gross and net yield to maturity of every bond,
// read from the bond's detail page.
type YieldEnricher struct {
	fetcher       Fetcher
	extractor     *extract.DetailExtractor
	baseURL       string
	detailPattern string
	cfg           config.FilterConfig
}

// NewYieldEnricher prepares an enricher for the listing at baseURL.
func NewYieldEnricher(f Fetcher, baseURL string, listing config.ListingConfig, filter config.FilterConfig) (*YieldEnricher, error) {
	ex, err := extract.NewDetailExtractor(listing.ContainerClass, listing.TableClass)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "bad detail selectors", err)
	}
	return &YieldEnricher{
		fetcher:       f,
		extractor:     ex,
		baseURL:       baseURL,
		detailPattern: listing.DetailPattern,
		cfg:           filter,
	}, nil
}

// DetailURL returns the detail page of an instrument.
func (e *YieldEnricher) DetailURL(isin string) string {
	return e.baseURL + fmt.Sprintf(e.detailPattern, isin)
}

// Enrich fetches the detail page of each row, in row order, and appends
// the gross and net yield columns (as scraped text) to tbl.
//
// A detail page that lacks the expected record or keys fails the whole
// enrichment; no partial columns are added.
func (e *YieldEnricher) Enrich(ctx context.Context, tbl *models.Table) (*models.Table, error) {
	ids, err := tbl.Column(e.cfg.IDColumn)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMalformed, "listing has no identifier column", err)
	}

	gross := make([]any, len(ids))
	net := make([]any, len(ids))
	for i, id := range ids {
		if isMissing(id) {
			return nil, models.NewScrapeError(
				models.ErrCodeDetailMissing,
				fmt.Sprintf("row %d has no %s", tbl.Rows[i].Index, e.cfg.IDColumn),
				nil,
			)
		}
		url := e.DetailURL(fmt.Sprint(id))
		slog.Info("fetching instrument detail", "isin", id, "url", url)

		rawHTML, err := e.fetcher.FetchHTML(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("detail page of %v: %w", id, err)
		}
		records, err := e.extractor.Extract(rawHTML)
		if err != nil {
			return nil, fmt.Errorf("detail page of %v: %w", id, err)
		}
		g, n, err := e.lookup(records)
		if err != nil {
			return nil, fmt.Errorf("detail page of %v: %w", id, err)
		}
		gross[i], net[i] = g, n
	}

	if err := tbl.AddColumn(e.cfg.GrossYieldKey, gross); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMalformed, "cannot add gross yield", err)
	}
	if err := tbl.AddColumn(e.cfg.NetYieldKey, net); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMalformed, "cannot add net yield", err)
	}
	return tbl, nil
}

// lookup reads both yields from the detail records, by position or by key.
func (e *YieldEnricher) lookup(records []models.DetailRecord) (gross, net string, err error) {
	switch e.cfg.YieldLookup {
	case config.YieldLookupKey:
		for _, rec := range records {
			if g, ok := rec.Get(e.cfg.GrossYieldKey); ok {
				if n, ok := rec.Get(e.cfg.NetYieldKey); ok {
					return g, n, nil
				}
				if n, ok := findKey(records, e.cfg.NetYieldKey); ok {
					return g, n, nil
				}
				return "", "", missingKey(e.cfg.NetYieldKey)
			}
		}
		return "", "", missingKey(e.cfg.GrossYieldKey)

	default:
		if e.cfg.YieldIndex >= len(records) {
			return "", "", models.NewScrapeError(
				models.ErrCodeDetailMissing,
				fmt.Sprintf("detail page has %d tables, yield expected at %d", len(records), e.cfg.YieldIndex),
				nil,
			)
		}
		rec := records[e.cfg.YieldIndex]
		g, ok := rec.Get(e.cfg.GrossYieldKey)
		if !ok {
			return "", "", missingKey(e.cfg.GrossYieldKey)
		}
		n, ok := rec.Get(e.cfg.NetYieldKey)
		if !ok {
			return "", "", missingKey(e.cfg.NetYieldKey)
		}
		return g, n, nil
	}
}

func findKey(records []models.DetailRecord, key string) (string, bool) {
	for _, rec := range records {
		if v, ok := rec.Get(key); ok {
			return v, true
		}
	}
	return "", false
}

func missingKey(key string) error {
	return models.NewScrapeError(models.ErrCodeDetailMissing, fmt.Sprintf("detail page has no %q", key), nil)
}
