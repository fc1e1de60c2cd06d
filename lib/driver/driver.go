// Package driver defines the page-render capability the retrieval
// engine depends on. The portal renders its result list with
// JavaScript; whoever owns a real browser session implements this
// interface, while tests and plain-HTTP pagination get by without one.
package driver

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Element is a located node that can receive interactions.
type Element interface {
	Click(ctx context.Context) error
	TypeText(ctx context.Context, text string) error
}

// Driver is one rendered browser session. Implementations are stateful
// and bound to a single portal session; they must not be shared across
// concurrent crawls.
type Driver interface {
	// Navigate loads the URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// CurrentDocument snapshots the rendered DOM.
	CurrentDocument(ctx context.Context) (*goquery.Document, error)
	// Locate finds the first element matching the selector, reporting
	// false when none is present.
	Locate(ctx context.Context, selector string) (Element, bool)
	// Screenshot captures the viewport, for offline debugging of
	// markup drift.
	Screenshot(ctx context.Context) ([]byte, error)
}
