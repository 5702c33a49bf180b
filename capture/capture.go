// Package capture reads allow-listed style snapshots from a hosting
// environment: the element's own resolved style plus a bounded sample of
// its most visually significant descendants and pseudo-elements.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/style"
)

// DefaultSettle is the advisory wait after a locally dispatched interaction
// simulation, giving transitions a moment to apply before the read. It is
// never applied on plain capture paths.
const DefaultSettle = 100 * time.Millisecond

// Options configures one capture call. The zero value captures the
// element's own snapshot with subtree sampling enabled and defaults.
type Options struct {
	// SkipSubtree turns off descendant/pseudo sampling. Named in the
	// negative so the zero value samples.
	SkipSubtree bool

	// SampleLimit bounds descendant-derived subtree entries. 0 means
	// DefaultSampleLimit.
	SampleLimit int

	// Weights overrides the sampler scoring rubric. Zero value means
	// DefaultScoreWeights.
	Weights ScoreWeights

	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Result is one capture outcome. NotFound marks a locator that resolved to
// nothing: the snapshot is empty and no error is surfaced, per the recover-
// locally error model.
type Result struct {
	Ref      style.ElementRef `json:"ref"`
	Snapshot style.Snapshot   `json:"snapshot"`
	NotFound bool             `json:"not_found,omitempty"`
}

// Resolve is the typed boundary between caller-supplied locators and
// resolved elements: every capture path goes through it exactly once, so
// downstream code branches on one concrete result, never on input shape.
func Resolve(ctx context.Context, env host.Environment, selector string) (host.Element, style.ElementRef, error) {
	if selector == "" {
		return nil, style.ElementRef{}, fmt.Errorf("capture: resolve: empty selector: %w", host.ErrBadSelector)
	}
	el, err := env.Resolve(ctx, selector)
	if err != nil {
		return nil, style.ElementRef{}, fmt.Errorf("capture: resolve %q: %w", selector, err)
	}
	ref, err := el.Ref(ctx)
	if err != nil {
		return nil, style.ElementRef{}, fmt.Errorf("capture: describe %q: %w", selector, err)
	}
	if ref.Selector == "" {
		ref.Selector = selector
	}
	return el, ref, nil
}

// Element captures the flat state snapshot for one selector: the element's
// own allow-listed style, with subtree and pseudo-element samples folded in
// under namespaced keys. An unresolvable locator yields an empty NotFound
// result, not an error.
func Element(ctx context.Context, env host.Environment, selector string, opts Options) (Result, error) {
	el, ref, err := Resolve(ctx, env, selector)
	if err != nil {
		if errors.Is(err, host.ErrNotFound) {
			opts.logger().Debug("capture: element not found", "selector", selector)
			return Result{
				Ref:      style.ElementRef{Selector: selector},
				Snapshot: style.Snapshot{},
				NotFound: true,
			}, nil
		}
		return Result{}, err
	}

	snap, err := Snapshot(ctx, el, style.FullProperties)
	if err != nil {
		return Result{}, fmt.Errorf("capture: styles %q: %w", selector, err)
	}

	if !opts.SkipSubtree {
		folded, err := SampleSubtree(ctx, el, opts)
		if err != nil {
			// Subtree failures degrade to the bare element snapshot.
			opts.logger().Debug("capture: subtree sampling failed", "selector", selector, "error", err)
		} else {
			for k, v := range folded {
				snap[style.Property(k)] = v
			}
		}
	}

	return Result{Ref: ref, Snapshot: snap}, nil
}

// Snapshot reads the element's resolved style restricted to props,
// dropping placeholders and anything outside the list. Idempotent for an
// unchanged element; no side effects on the page.
func Snapshot(ctx context.Context, el host.Element, props []style.Property) (style.Snapshot, error) {
	if len(props) == 0 {
		props = style.FullProperties
	}
	snap, err := el.Styles(ctx, props)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return style.Snapshot{}, nil
	}
	allowed := make(map[style.Property]struct{}, len(props))
	for _, p := range props {
		allowed[p] = struct{}{}
	}
	return snap.Prune(func(p style.Property) bool {
		_, ok := allowed[p]
		return ok
	}), nil
}
