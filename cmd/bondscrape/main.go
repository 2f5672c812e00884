package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/bondscrape/config"
	"github.com/use-agent/bondscrape/engine"
	"github.com/use-agent/bondscrape/extract"
	"github.com/use-agent/bondscrape/models"
	"github.com/use-agent/bondscrape/pipeline"
	"github.com/use-agent/bondscrape/scraper"
	"github.com/use-agent/bondscrape/webhook"
)

const (
	// domainMemoryTTL outlives any single run.
	domainMemoryTTL = time.Hour

	// notifyTimeout bounds webhook delivery, retries included.
	notifyTimeout = 30 * time.Second
)

func main() {
	start := time.Now()
	code := run()
	fmt.Println("execution time in seconds:", time.Since(start).Seconds())
	os.Exit(code)
}

// run executes one scrape and returns the process exit code. Deferred
// cleanup (browser shutdown) completes before it returns.
func run() int {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	slog.Info("bondscrape starting",
		"urls", cfg.Listing.URLs,
		"pages", fmt.Sprintf("%d..%d", cfg.Listing.FirstPage, cfg.Listing.LastPage),
		"fetchMode", cfg.Scraper.FetchMode,
		"maxPrice", cfg.Filter.MaxPrice,
		"minYield", cfg.Filter.MinYield,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. Initialise fetcher (launches browser) ────────────────────
	fetcher, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		slog.Error("failed to initialise fetcher", "error", err)
		return 1
	}
	defer closeFetcher()

	// ── 4. Run the pipeline ─────────────────────────────────────────
	return runWith(ctx, cfg, fetcher, os.Stdout)
}

// runWith runs the pipeline over fetcher, sends the webhook, and maps the
// outcome to an exit code: 0 on success, 1 on any failure.
func runWith(ctx context.Context, cfg *config.Config, fetcher pipeline.Fetcher, stdout io.Writer) int {
	dirs, err := pipeline.New(fetcher, cfg, stdout).Run(ctx)

	notify(cfg.Notify, dirs, err)

	if err != nil {
		slog.Error("scrape failed", "code", models.ErrorCode(err), "error", err)
		return 1
	}
	slog.Info("bondscrape finished", "outputs", dirs)
	return 0
}

// notify posts the run outcome to the configured webhook, if any. Delivery
// problems are logged and never change the exit code.
func notify(cfg config.NotifyConfig, dirs []string, runErr error) {
	if cfg.WebhookURL == "" {
		return
	}
	event := &webhook.Event{
		Type:      webhook.EventCompleted,
		Timestamp: time.Now().Unix(),
		Outputs:   dirs,
	}
	if runErr != nil {
		event.Type = webhook.EventFailed
		event.Code = models.ErrorCode(runErr)
		event.Error = runErr.Error()
	}

	// Runs after a signal too, so it gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := webhook.Notify(ctx, cfg.WebhookURL, cfg.WebhookSecret, event); err != nil {
		slog.Error("webhook notification failed", "error", err)
	}
}

// newFetcher returns the configured page transport and its cleanup.
func newFetcher(cfg *config.Config) (pipeline.Fetcher, func(), error) {
	if cfg.Scraper.FetchMode == config.FetchModeHTTP {
		return scraper.NewHTTPFetcher(cfg.Scraper), func() {}, nil
	}
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Scraper.FetchMode == config.FetchModeAuto {
		d := engine.NewDispatcher(
			[]engine.Engine{scraper.NewHTTPFetcher(cfg.Scraper), sc},
			extract.RequireTable,
			engine.NewDomainMemory(domainMemoryTTL),
		)
		return d, sc.Close, nil
	}
	return sc, sc.Close, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
