// Package browser defines the automation surface the feed scanner drives.
// Implementations wrap a single live browser tab; the DOM state behind a
// Handle is only valid until the page re-renders or navigates.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout marks navigation and selector waits that ran out of time, so
// callers can distinguish them from hard automation failures.
var ErrTimeout = errors.New("browser: operation timed out")

// Handle is an opaque reference to a rendered DOM element.
type Handle struct {
	ID int64
}

// Expressions passed to Query/QueryAll are CSS selectors by default; prefix
// with "xpath=" for an XPath expression.
const XPathPrefix = "xpath="

// Session is a single authenticated browser tab. All calls are blocking and
// sequential; the session is not safe for concurrent use.
type Session interface {
	// Navigate loads url and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error

	// ScrollDown performs count scroll-one-viewport cycles with a settle
	// delay between each, letting lazy feed content load.
	ScrollDown(ctx context.Context, count int) error

	// QueryAll resolves every element matching expr, in document order.
	// An expression matching nothing yields an empty slice, not an error.
	QueryAll(ctx context.Context, expr string) ([]Handle, error)

	// Query resolves the first element matching expr, or (nil, nil) when
	// nothing matches.
	Query(ctx context.Context, expr string) (*Handle, error)

	// Evaluate runs script in page context and unmarshals its result into
	// out. Pass nil to discard the result.
	Evaluate(ctx context.Context, script string, out any) error

	// EvaluateOn calls a JS function declaration with the element bound to
	// this, unmarshalling the return value into out. This is the hook for
	// DOM-side graph walks (ancestor searches, bounding boxes) that cannot
	// be expressed host-side.
	EvaluateOn(ctx context.Context, h Handle, fnDecl string, out any) error

	Click(ctx context.Context, h Handle) error

	// Attribute returns the element's attribute value, or "" when absent.
	Attribute(ctx context.Context, h Handle, name string) (string, error)

	InnerText(ctx context.Context, h Handle) (string, error)

	// WaitVisible blocks until expr matches a visible element or the
	// timeout elapses, returning ErrTimeout in the latter case.
	WaitVisible(ctx context.Context, expr string, timeout time.Duration) error

	KeyPress(ctx context.Context, key string) error

	Screenshot(ctx context.Context, path string) error

	// SettleDelay sleeps a uniformly sampled duration between the
	// configured bounds, pacing actions to a human rhythm.
	SettleDelay()
}
