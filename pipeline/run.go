package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/bondscrape/config"
	"github.com/use-agent/bondscrape/output"
)

// borsaItaliana marks listing URLs this pipeline knows how to read.
const borsaItaliana = "borsaitaliana"

// Pipeline runs the whole scrape: listing pages → price filter → yield
// enrichment → yield filter → files, once per configured listing URL.
type Pipeline struct {
	fetcher Fetcher
	cfg     *config.Config
	writer  *output.Writer
	stdout  io.Writer
	now     func() time.Time
}

// New creates a Pipeline. Inspection tables are printed to stdout.
func New(f Fetcher, cfg *config.Config, stdout io.Writer) *Pipeline {
	return &Pipeline{
		fetcher: f,
		cfg:     cfg,
		writer:  output.NewWriter(cfg.Output),
		stdout:  stdout,
		now:     time.Now,
	}
}

// Run processes every listing URL in order and returns the directories it
// wrote. The first error stops the run before any later file is written.
func (p *Pipeline) Run(ctx context.Context) ([]string, error) {
	var dirs []string
	for _, baseURL := range p.cfg.Listing.URLs {
		if !strings.Contains(baseURL, borsaItaliana) {
			slog.Warn("skipping unsupported listing", "url", baseURL)
			continue
		}
		dir, err := p.runListing(ctx, baseURL)
		if err != nil {
			return dirs, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func (p *Pipeline) runListing(ctx context.Context, baseURL string) (string, error) {
	filter := p.cfg.Filter

	tables, err := ScrapeListing(ctx, p.fetcher, baseURL, p.cfg.Listing)
	if err != nil {
		return "", err
	}

	cheap, err := FilterByPrice(tables, filter.PriceColumn, filter.MaxPrice)
	if err != nil {
		return "", err
	}
	slog.Info("price filter applied", "maxPrice", filter.MaxPrice, "kept", cheap.Len())

	enricher, err := NewYieldEnricher(p.fetcher, baseURL, p.cfg.Listing, filter)
	if err != nil {
		return "", err
	}
	enriched, err := enricher.Enrich(ctx, cheap)
	if err != nil {
		return "", err
	}

	if err := output.PrintColumn(p.stdout, enriched, filter.GrossYieldKey); err != nil {
		return "", err
	}
	result, err := FilterByYield(enriched, filter.GrossYieldKey, filter.MinYield)
	if err != nil {
		return "", err
	}
	if err := output.PrintColumn(p.stdout, enriched, filter.GrossYieldKey); err != nil {
		return "", err
	}
	slog.Info("yield filter applied", "minYield", filter.MinYield, "kept", result.Len())

	dir, err := p.writer.Write(result, p.now())
	if err != nil {
		return "", err
	}
	slog.Info("results written", "dir", dir, "rows", result.Len())
	return dir, nil
}
