package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig
	Scraper ScraperConfig
	Listing ListingConfig
	Filter  FilterConfig
	Output  OutputConfig
	Notify  NotifyConfig
	Log     LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox.
	NoSandbox bool // default: true

	// Proxy is the proxy URL for all requests.
	Proxy string

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// Fetch modes.
const (
	FetchModeBrowser = "browser"
	FetchModeHTTP    = "http"
	FetchModeAuto    = "auto"
)

// ScraperConfig controls page fetching.
type ScraperConfig struct {
	// FetchMode selects the transport: "browser" (default), "http", or
	// "auto" (HTTP first, browser when HTTP fails or returns no table).
	FetchMode string

	// Stealth injects anti-bot-detection evasions before every navigation.
	Stealth bool // default: false

	// NavigationTimeout bounds one navigation, including the DOM wait.
	NavigationTimeout time.Duration // default: 30s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// AcceptLanguage is sent with every request.
	AcceptLanguage string

	// ConsentSelector, when set, is clicked after load if present
	// (e.g. a cookie banner's accept button). Browser mode only.
	ConsentSelector string

	// WaitSelector, when set, is awaited after load for up to 10s.
	// Browser mode only.
	WaitSelector string
}

// ListingConfig describes where and how the bond listing is paged.
type ListingConfig struct {
	// URLs are the listing base URLs. Each must end with "/".
	URLs []string

	// FirstPage and LastPage bound the page range, both inclusive.
	FirstPage int // default: 1
	LastPage  int // default: 8

	// PagePattern is appended to the base URL; %d is the page number.
	PagePattern string // default: "lista.html?&page=%d"

	// DetailPattern is appended to the base URL; %s is the ISIN.
	DetailPattern string // default: "scheda/%s.html"

	// ContainerClass and TableClass locate the key/value tables on a detail page.
	ContainerClass string // default: "l-box"
	TableClass     string // default: "m-table"
}

// Yield lookup strategies.
const (
	YieldLookupIndex = "index"
	YieldLookupKey   = "key"
)

// FilterConfig holds the selection thresholds.
type FilterConfig struct {
	IDColumn    string  // default: "ISIN"
	PriceColumn string  // default: "ULTIMO"
	MaxPrice    float64 // default: 100

	GrossYieldKey string  // default: "Rendimento effettivo a scadenza lordo"
	NetYieldKey   string  // default: "Rendimento effettivo a scadenza netto"
	MinYield      float64 // default: 3.0

	// YieldLookup is "index" (read the record at YieldIndex) or "key"
	// (first record holding GrossYieldKey).
	YieldLookup string // default: "index"
	YieldIndex  int    // default: 6
}

// OutputConfig controls where result files are written.
type OutputConfig struct {
	// Dir is the parent of the per-run directory.
	Dir string // default: "../flussi"

	// Prefix is prepended to the run timestamp to name the run directory.
	Prefix string // default: "borsaitaliana_"

	// WriteMarkdown adds a table.md next to the csv/html/json files.
	WriteMarkdown bool // default: false
}

// NotifyConfig controls the end-of-run webhook.
type NotifyConfig struct {
	// WebhookURL receives a JSON event when a run completes or fails.
	// Empty disables notification.
	WebhookURL string

	// WebhookSecret signs the event body with HMAC-SHA256 when set.
	WebhookSecret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory, if present, is loaded first and
// never overrides variables already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Browser: BrowserConfig{
			Headless:   envBoolOr("BONDSCRAPE_HEADLESS", true),
			NoSandbox:  envBoolOr("BONDSCRAPE_NO_SANDBOX", true),
			Proxy:      os.Getenv("BONDSCRAPE_PROXY"),
			BrowserBin: os.Getenv("BONDSCRAPE_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			FetchMode:         envOr("BONDSCRAPE_FETCH_MODE", FetchModeBrowser),
			Stealth:           envBoolOr("BONDSCRAPE_STEALTH", false),
			NavigationTimeout: envDurationOr("BONDSCRAPE_NAV_TIMEOUT", 30*time.Second),
			BlockedResourceTypes: envSliceOr("BONDSCRAPE_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			AcceptLanguage:  envOr("BONDSCRAPE_ACCEPT_LANGUAGE", "it-IT,it;q=0.9,en;q=0.8"),
			ConsentSelector: os.Getenv("BONDSCRAPE_CONSENT_SELECTOR"),
			WaitSelector:    os.Getenv("BONDSCRAPE_WAIT_SELECTOR"),
		},
		Listing: ListingConfig{
			URLs: envSliceOr("BONDSCRAPE_URLS", []string{
				"https://www.borsaitaliana.it/borsa/obbligazioni/mot/btp/",
			}),
			FirstPage:      envIntOr("BONDSCRAPE_FIRST_PAGE", 1),
			LastPage:       envIntOr("BONDSCRAPE_LAST_PAGE", 8),
			PagePattern:    envOr("BONDSCRAPE_PAGE_PATTERN", "lista.html?&page=%d"),
			DetailPattern:  envOr("BONDSCRAPE_DETAIL_PATTERN", "scheda/%s.html"),
			ContainerClass: envOr("BONDSCRAPE_CONTAINER_CLASS", "l-box"),
			TableClass:     envOr("BONDSCRAPE_TABLE_CLASS", "m-table"),
		},
		Filter: FilterConfig{
			IDColumn:      envOr("BONDSCRAPE_ID_COLUMN", "ISIN"),
			PriceColumn:   envOr("BONDSCRAPE_PRICE_COLUMN", "ULTIMO"),
			MaxPrice:      envFloatOr("BONDSCRAPE_MAX_PRICE", 100),
			GrossYieldKey: envOr("BONDSCRAPE_GROSS_YIELD_KEY", "Rendimento effettivo a scadenza lordo"),
			NetYieldKey:   envOr("BONDSCRAPE_NET_YIELD_KEY", "Rendimento effettivo a scadenza netto"),
			MinYield:      envFloatOr("BONDSCRAPE_MIN_YIELD", 3.0),
			YieldLookup:   envOr("BONDSCRAPE_YIELD_LOOKUP", YieldLookupIndex),
			YieldIndex:    envIntOr("BONDSCRAPE_YIELD_INDEX", 6),
		},
		Output: OutputConfig{
			Dir:           envOr("BONDSCRAPE_OUTPUT_DIR", "../flussi"),
			Prefix:        envOr("BONDSCRAPE_OUTPUT_PREFIX", "borsaitaliana_"),
			WriteMarkdown: envBoolOr("BONDSCRAPE_OUTPUT_MARKDOWN", false),
		},
		Notify: NotifyConfig{
			WebhookURL:    os.Getenv("BONDSCRAPE_WEBHOOK_URL"),
			WebhookSecret: os.Getenv("BONDSCRAPE_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("BONDSCRAPE_LOG_LEVEL", "info"),
			Format: envOr("BONDSCRAPE_LOG_FORMAT", "text"),
		},
	}
}

// Validate reports the first setting that cannot drive a run.
func (c *Config) Validate() error {
	switch {
	case len(c.Listing.URLs) == 0:
		return fmt.Errorf("config: no listing URLs")
	case c.Listing.FirstPage < 1 || c.Listing.LastPage < c.Listing.FirstPage:
		return fmt.Errorf("config: invalid page range %d..%d", c.Listing.FirstPage, c.Listing.LastPage)
	case !strings.Contains(c.Listing.PagePattern, "%d") || badPattern(c.Listing.PagePattern, 1):
		return fmt.Errorf("config: page pattern %q must hold exactly one %%d verb", c.Listing.PagePattern)
	case !strings.Contains(c.Listing.DetailPattern, "%s") || badPattern(c.Listing.DetailPattern, "IT0000000000"):
		return fmt.Errorf("config: detail pattern %q must hold exactly one %%s verb", c.Listing.DetailPattern)
	case c.Scraper.FetchMode != FetchModeBrowser && c.Scraper.FetchMode != FetchModeHTTP &&
		c.Scraper.FetchMode != FetchModeAuto:
		return fmt.Errorf("config: unknown fetch mode %q", c.Scraper.FetchMode)
	case c.Filter.YieldLookup != YieldLookupIndex && c.Filter.YieldLookup != YieldLookupKey:
		return fmt.Errorf("config: unknown yield lookup %q", c.Filter.YieldLookup)
	case c.Filter.YieldIndex < 0:
		return fmt.Errorf("config: negative yield index %d", c.Filter.YieldIndex)
	}
	return nil
}

// badPattern reports whether formatting pattern with sample leaves fmt
// error markers (missing, extra or mismatched verbs) in the result.
func badPattern(pattern string, sample any) bool {
	return strings.Contains(fmt.Sprintf(pattern, sample), "%!")
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
