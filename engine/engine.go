package engine

import "context"

// Engine is a page transport the Dispatcher can escalate through.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "rod").
	Name() string

	// FetchHTML returns the HTML of the page at url.
	FetchHTML(ctx context.Context, url string) (string, error)
}

// CheckFunc vets a fetched page; a non-nil error makes the Dispatcher try
// the next engine.
type CheckFunc func(html string) error
