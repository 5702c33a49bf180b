// Package host is the hosting-environment boundary of the engine: element
// resolution by locator, allow-listed resolved-style reads, descendant
// enumeration and stylesheet access. Two implementations ship (a rod-backed
// live browser and a static HTML+CSS document); consumers may bring their
// own.
package host

import (
	"context"

	"github.com/hazyhaar/stylewatch/style"
)

// Environment exposes one document to the engine.
type Environment interface {
	// Resolve locates an element by selector. Returns ErrNotFound when the
	// locator matches nothing.
	Resolve(ctx context.Context, selector string) (Element, error)

	// Stylesheets enumerates the document's active stylesheets. Sheets that
	// cannot be introspected are still listed, carrying AccessErr and no
	// rules; the call itself only fails on transport errors.
	Stylesheets(ctx context.Context) ([]Stylesheet, error)

	// Close releases resources held by the environment.
	Close() error
}

// Element is a resolved element handle, valid only for the duration of the
// call sequence that obtained it.
type Element interface {
	// Ref describes the element as a reconstructable locator.
	Ref(ctx context.Context) (style.ElementRef, error)

	// Styles reads the resolved style restricted to props. Placeholder
	// values are omitted.
	Styles(ctx context.Context, props []style.Property) (style.Snapshot, error)

	// PseudoStyles reads the resolved style of the ::before or ::after
	// pseudo-element. which is "::before" or "::after".
	PseudoStyles(ctx context.Context, which string, props []style.Property) (style.Snapshot, error)

	// Descendants enumerates descendant elements with the visibility facts
	// and pre-read styles (restricted to props) the sampler scores on.
	// limit bounds enumeration; 0 means the implementation default.
	Descendants(ctx context.Context, props []style.Property, limit int) ([]Descendant, error)

	// Matches reports whether the element matches a selector. Returns
	// ErrBadSelector for malformed or unsupported selectors.
	Matches(ctx context.Context, selector string) (bool, error)

	// OuterHTML returns the element's serialized subtree.
	OuterHTML(ctx context.Context) (string, error)
}

// Simulator is an optional capability of an Environment: best-effort local
// dispatch of an interaction before a stateful capture. Absence of the
// capability is never an error; real state triggering belongs to the
// external driver.
type Simulator interface {
	Simulate(ctx context.Context, selector, action string) error
}

// Descendant carries the facts the subtree sampler needs about one
// descendant: identity, visibility, and its pre-read subtree-list styles.
type Descendant struct {
	Path      string         // short path relative to the sampled root, e.g. "span.label"
	Selector  string         // absolute selector resolvable via Environment.Resolve
	Tag       string
	Role      string
	AriaLabel string
	Text      string // trimmed visible text
	Rect      style.Rect
	Hidden    bool    // display:none or visibility:hidden
	Opacity   float64 // resolved opacity
	Styles    style.Snapshot
}

// Visible reports whether the descendant is worth considering at all:
// non-zero box, not hidden, opacity above zero.
func (d Descendant) Visible() bool {
	return !d.Hidden && d.Opacity > 0 && d.Rect.Area() > 0
}
