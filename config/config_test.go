package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, FetchModeBrowser, cfg.Scraper.FetchMode)
	assert.Equal(t, 30*time.Second, cfg.Scraper.NavigationTimeout)
	assert.Equal(t, []string{"Image", "Stylesheet", "Font", "Media"}, cfg.Scraper.BlockedResourceTypes)
	assert.Equal(t, []string{"https://www.borsaitaliana.it/borsa/obbligazioni/mot/btp/"}, cfg.Listing.URLs)
	assert.Equal(t, 1, cfg.Listing.FirstPage)
	assert.Equal(t, 8, cfg.Listing.LastPage)
	assert.Equal(t, 100.0, cfg.Filter.MaxPrice)
	assert.Equal(t, 3.0, cfg.Filter.MinYield)
	assert.Equal(t, YieldLookupIndex, cfg.Filter.YieldLookup)
	assert.Equal(t, 6, cfg.Filter.YieldIndex)
	assert.Equal(t, "../flussi", cfg.Output.Dir)
	assert.Equal(t, "borsaitaliana_", cfg.Output.Prefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BONDSCRAPE_FETCH_MODE", "http")
	t.Setenv("BONDSCRAPE_NAV_TIMEOUT", "5s")
	t.Setenv("BONDSCRAPE_URLS", " https://a.borsaitaliana.it/x/ ,, https://b.borsaitaliana.it/y/ ")
	t.Setenv("BONDSCRAPE_LAST_PAGE", "3")
	t.Setenv("BONDSCRAPE_MIN_YIELD", "2.5")
	t.Setenv("BONDSCRAPE_HEADLESS", "false")
	t.Setenv("BONDSCRAPE_OUTPUT_MARKDOWN", "true")
	t.Setenv("BONDSCRAPE_YIELD_INDEX", "not-a-number")

	cfg := Load()

	assert.Equal(t, FetchModeHTTP, cfg.Scraper.FetchMode)
	assert.Equal(t, 5*time.Second, cfg.Scraper.NavigationTimeout)
	assert.Equal(t, []string{"https://a.borsaitaliana.it/x/", "https://b.borsaitaliana.it/y/"}, cfg.Listing.URLs)
	assert.Equal(t, 3, cfg.Listing.LastPage)
	assert.Equal(t, 2.5, cfg.Filter.MinYield)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Output.WriteMarkdown)
	assert.Equal(t, 6, cfg.Filter.YieldIndex, "unparsable values fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no urls", func(c *Config) { c.Listing.URLs = nil }},
		{"page zero", func(c *Config) { c.Listing.FirstPage = 0 }},
		{"reversed range", func(c *Config) { c.Listing.FirstPage, c.Listing.LastPage = 5, 2 }},
		{"page pattern", func(c *Config) { c.Listing.PagePattern = "lista.html" }},
		{"detail pattern", func(c *Config) { c.Listing.DetailPattern = "scheda.html" }},
		{"page pattern extra verb", func(c *Config) { c.Listing.PagePattern = "lista.html?&page=%d&x=%s" }},
		{"page pattern wrong verb", func(c *Config) { c.Listing.PagePattern = "lista.html?&page=%d&d=%d" }},
		{"detail pattern extra verb", func(c *Config) { c.Listing.DetailPattern = "scheda/%s/%d.html" }},
		{"fetch mode", func(c *Config) { c.Scraper.FetchMode = "curl" }},
		{"yield lookup", func(c *Config) { c.Filter.YieldLookup = "xpath" }},
		{"yield index", func(c *Config) { c.Filter.YieldIndex = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_FetchModes(t *testing.T) {
	for _, mode := range []string{FetchModeBrowser, FetchModeHTTP, FetchModeAuto} {
		cfg := Load()
		cfg.Scraper.FetchMode = mode
		assert.NoError(t, cfg.Validate(), mode)
	}
}

func TestValidate_PatternWithEscapedPercent(t *testing.T) {
	cfg := Load()
	cfg.Listing.PagePattern = "lista.html?q=100%%&page=%d"
	assert.NoError(t, cfg.Validate())
}
