package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Dispatcher escalates through engines in order, lightest first, and
// returns the first page that passes the check. Engines run one at a time:
// the browser engine drives a single tab.
type Dispatcher struct {
	engines []Engine
	check   CheckFunc
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher. check may be nil.
func NewDispatcher(engines []Engine, check CheckFunc, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{engines: engines, check: check, memory: memory}
}

// FetchHTML fetches url with the engine remembered for its host, falling
// back to a full escalation when there is none or it fails. If every
// engine fails it returns the last error.
func (d *Dispatcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	host := extractHost(rawURL)

	if remembered := d.memory.Get(host); remembered != "" {
		for _, eng := range d.engines {
			if eng.Name() != remembered {
				continue
			}
			html, err := d.try(ctx, eng, rawURL)
			if err == nil {
				return html, nil
			}
			if ctx.Err() != nil {
				return "", err
			}
			slog.Info("remembered engine failed, escalating",
				"host", host, "engine", remembered, "error", err)
			d.memory.Delete(host)
			break
		}
	}

	return d.escalate(ctx, rawURL, host)
}

func (d *Dispatcher) escalate(ctx context.Context, rawURL, host string) (string, error) {
	var lastErr error
	for _, eng := range d.engines {
		html, err := d.try(ctx, eng, rawURL)
		if err != nil {
			slog.Debug("engine failed", "engine", eng.Name(), "url", rawURL, "error", err)
			lastErr = err
			if ctx.Err() != nil {
				return "", err
			}
			continue
		}
		if d.memory.Get(host) != eng.Name() {
			slog.Info("engine selected", "engine", eng.Name(), "host", host)
		}
		d.memory.Set(host, eng.Name())
		return html, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: no engines configured for %s", rawURL)
	}
	return "", lastErr
}

// try runs one engine and applies the page check.
func (d *Dispatcher) try(ctx context.Context, eng Engine, rawURL string) (string, error) {
	html, err := eng.FetchHTML(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", eng.Name(), err)
	}
	if d.check != nil {
		if err := d.check(html); err != nil {
			return "", fmt.Errorf("%s: %w", eng.Name(), err)
		}
	}
	return html, nil
}

// extractHost parses the hostname from a URL string.
func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
