// CLAUDE:SUMMARY Main engine orchestrator: capture sessions, state snapshots, fallback inference, matrix assembly, diffs and summaries.
// Package stylewatch determines how a UI element's visual style changes
// across interaction states (hover, focus, active, disabled, checked,
// invalid) without a human triggering every state by hand.
//
// It reconciles two imperfect sources: live-triggered capture, accurate
// but dependent on an interaction driver, and static rule inference,
// always available but approximate. Both feed one per-element state
// matrix per session, from which diffs against the default state and
// human-readable summaries are derived.
package stylewatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/stylewatch/capture"
	"github.com/hazyhaar/stylewatch/connectivity"
	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/internal/browser"
	"github.com/hazyhaar/stylewatch/internal/idgen"
	"github.com/hazyhaar/stylewatch/internal/journal"
	"github.com/hazyhaar/stylewatch/internal/kit"
	"github.com/hazyhaar/stylewatch/internal/report"
	"github.com/hazyhaar/stylewatch/matrix"
	"github.com/hazyhaar/stylewatch/rulematch"
	"github.com/hazyhaar/stylewatch/style"
	"github.com/hazyhaar/stylewatch/workflow"
)

// Sentinel errors surfaced by engine operations. The HTTP layer maps them
// to status codes; MCP tools return them as tool errors.
var (
	ErrSessionNotFound   = errors.New("stylewatch: session not found")
	ErrBrowserNotStarted = errors.New("stylewatch: browser not started")
	ErrNotCaptured       = errors.New("stylewatch: no captured record")
)

// driverService is the connectivity service name of an in-process
// interaction driver. When routed, it is consulted before stateful
// captures; when absent, the hosting environment's own simulator (if
// any) is used instead.
const driverService = "styledriver"

// DefaultInventoryLimit bounds element inventory results.
const DefaultInventoryLimit = 24

// Engine manages capture sessions and runs every operation against them.
// One browser serves all live sessions; static sessions need none.
type Engine struct {
	cfg      *Config
	logger   *slog.Logger
	mgr      *browser.Manager
	router   *connectivity.Router
	journal  *journal.Journal
	reporter *report.Renderer
	newID    func() string

	mu       sync.RWMutex
	sessions map[string]*session
	started  bool
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithRouter sets the connectivity router consulted for the styledriver
// service and used by RegisterConnectivity.
func WithRouter(r *connectivity.Router) Option {
	return func(e *Engine) { e.router = r }
}

// WithJournal sets the capture event journal. A nil journal is a no-op.
func WithJournal(j *journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithIDGenerator sets a custom session ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// New creates an Engine. The browser is configured but not launched;
// call Start before opening live sessions.
func New(cfg *Config, logger *slog.Logger, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		reporter: report.New(),
		newID:    idgen.Prefixed("ses_", idgen.Default),
		sessions: make(map[string]*session),
	}
	for _, o := range opts {
		o(e)
	}
	e.mgr = browser.NewManager(browser.Config{
		RemoteURL:       cfg.Browser.Remote,
		MemoryLimit:     cfg.Browser.MemoryLimit,
		RecycleInterval: cfg.Browser.RecycleInterval,
		BlockResources:  cfg.Browser.ResourceBlocking,
		Stealth:         stealthLevel(cfg.Browser.Stealth),
		NavigateTimeout: cfg.Browser.NavigateTimeout,
		XvfbDisplay:     cfg.Browser.XvfbDisplay,
		Logger:          logger,
	})
	return e
}

func stealthLevel(s string) browser.StealthLevel {
	if s == "headful" {
		return browser.LevelHeadful
	}
	return browser.LevelHeadless
}

// Start launches the managed browser. ctx governs its monitor loop, so
// pass the process lifetime context. Callers that only open static
// sessions can skip Start entirely.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}
	if _, err := e.mgr.Start(ctx); err != nil {
		return fmt.Errorf("stylewatch: start browser: %w", err)
	}
	e.started = true
	return nil
}

// Close closes every session and shuts down the browser.
func (e *Engine) Close() error {
	e.mu.Lock()
	sessions := e.sessions
	e.sessions = make(map[string]*session)
	started := e.started
	e.started = false
	e.mu.Unlock()

	for id, s := range sessions {
		if err := s.env.Close(); err != nil {
			e.logger.Warn("stylewatch: session close failed", "session_id", id, "error", err)
		}
	}
	if started {
		return e.mgr.Close()
	}
	return nil
}

// CaptureOptions configures one Capture call.
type CaptureOptions struct {
	// State to capture; default state when empty.
	State style.State `json:"state,omitempty"`

	// Key overrides the store key. Empty derives selector plus a state
	// suffix the matrix suffix table understands.
	Key string `json:"key,omitempty"`

	// SkipSubtree turns off descendant/pseudo sampling.
	SkipSubtree bool `json:"skip_subtree,omitempty"`

	// NoSimulate captures the page as it currently stands, without
	// consulting the driver or the environment simulator first.
	NoSimulate bool `json:"no_simulate,omitempty"`
}

// CaptureResult is one capture outcome, stored and returned.
type CaptureResult struct {
	SessionID string           `json:"session_id"`
	Key       string           `json:"key"`
	State     style.State      `json:"state"`
	Simulated bool             `json:"simulated,omitempty"`
	Ref       style.ElementRef `json:"ref"`
	Snapshot  style.Snapshot   `json:"snapshot"`
	NotFound  bool             `json:"not_found,omitempty"`
}

// Capture reads the element's state snapshot and stores it in the
// session matrix under a live origin. For non-default states a local
// interaction simulation is dispatched first (driver service, then the
// environment's simulator), followed by the advisory settle; real state
// triggering stays the driver's job and absence of one is not an error.
// An unresolvable selector yields a NotFound result, never an error.
func (e *Engine) Capture(ctx context.Context, sessionID, selector string, opts CaptureOptions) (CaptureResult, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return CaptureResult{}, err
	}
	st := opts.State
	if st == "" {
		st = style.StateDefault
	}
	if !style.KnownState(st) {
		return CaptureResult{}, fmt.Errorf("stylewatch: capture %q: unknown state %q", selector, st)
	}

	simulated := false
	if st != style.StateDefault && !opts.NoSimulate {
		simulated = e.simulate(ctx, s, selector, st)
	}

	res, err := capture.Element(ctx, s.env, selector, capture.Options{
		SkipSubtree: opts.SkipSubtree,
		SampleLimit: e.cfg.Capture.SampleLimit,
		Logger:      e.logger,
	})
	if simulated {
		e.resetInteraction(ctx, s, selector, st)
	}
	if err != nil {
		return CaptureResult{}, err
	}

	key := opts.Key
	if key == "" {
		key = captureKey(selector, st)
	}

	if !res.NotFound {
		if _, err := s.store.Put(matrix.Entry{
			Key:      key,
			Selector: selector,
			State:    st,
			Origin:   style.OriginLive,
			Snapshot: res.Snapshot,
		}); err != nil {
			return CaptureResult{}, fmt.Errorf("stylewatch: capture %q: %w", selector, err)
		}
	}

	e.journal.Record(ctx, journal.Event{
		SessionID: sessionID,
		Kind:      journal.KindCapture,
		Selector:  selector,
		State:     string(st),
		Origin:    string(style.OriginLive),
		Detail: detailJSON(map[string]any{
			"key":        key,
			"properties": len(res.Snapshot),
			"not_found":  res.NotFound,
			"simulated":  simulated,
			"transport":  kit.GetTransport(ctx),
		}),
	})

	return CaptureResult{
		SessionID: sessionID,
		Key:       key,
		State:     st,
		Simulated: simulated,
		Ref:       res.Ref,
		Snapshot:  res.Snapshot,
		NotFound:  res.NotFound,
	}, nil
}

// FallbackResult reports one static inference scan.
type FallbackResult struct {
	SessionID string              `json:"session_id"`
	Selector  string              `json:"selector"`
	States    []style.State       `json:"states"`
	Stats     rulematch.ScanStats `json:"stats"`
}

// Fallback approximates the element's state styles from the document's
// stylesheets and stores every inferred state under a fallback origin.
// A live-captured default already in the matrix survives the scan.
func (e *Engine) Fallback(ctx context.Context, sessionID, selector string) (FallbackResult, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return FallbackResult{}, err
	}

	el, _, err := capture.Resolve(ctx, s.env, selector)
	if err != nil {
		return FallbackResult{}, err
	}
	defaults, err := capture.Snapshot(ctx, el, style.FullProperties)
	if err != nil {
		return FallbackResult{}, fmt.Errorf("stylewatch: fallback %q: %w", selector, err)
	}

	rec, stats, err := rulematch.Infer(ctx, s.env, el, selector, defaults, rulematch.Options{Logger: e.logger})
	if err != nil {
		return FallbackResult{}, err
	}

	var states []style.State
	for _, st := range style.States() {
		snap, ok := rec.States[st]
		if !ok {
			continue
		}
		if st == style.StateDefault {
			// The store is last-write-wins per key, so the live-default
			// guard has to be enforced before the write, not at assembly.
			if prev, ok := s.store.Get(captureKey(selector, st)); ok && prev.Origin == style.OriginLive {
				states = append(states, st)
				continue
			}
		}
		if _, err := s.store.Put(matrix.Entry{
			Key:      captureKey(selector, st),
			Selector: selector,
			State:    st,
			Origin:   rec.Origins[st],
			Snapshot: snap,
		}); err != nil {
			return FallbackResult{}, fmt.Errorf("stylewatch: fallback %q: %w", selector, err)
		}
		states = append(states, st)
	}

	e.journal.Record(ctx, journal.Event{
		SessionID: sessionID,
		Kind:      journal.KindFallback,
		Selector:  selector,
		Origin:    string(style.OriginFallback),
		Detail: detailJSON(map[string]any{
			"stats":     stats,
			"transport": kit.GetTransport(ctx),
		}),
	})

	return FallbackResult{
		SessionID: sessionID,
		Selector:  selector,
		States:    states,
		Stats:     stats,
	}, nil
}

// InventoryOptions configures element enumeration.
type InventoryOptions struct {
	// Scope is the container selector to enumerate under; "body" when empty.
	Scope string `json:"scope,omitempty"`

	// Limit bounds returned refs; DefaultInventoryLimit when zero.
	Limit int `json:"limit,omitempty"`
}

// Inventory enumerates capture-worthy elements under a scope: visible
// descendants ranked by the sampler's visual-significance rubric, each
// re-resolved into a full element ref so the planner predicates have
// cursor and attribute facts to work with.
func (e *Engine) Inventory(ctx context.Context, sessionID string, opts InventoryOptions) ([]style.ElementRef, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return nil, err
	}
	scope := opts.Scope
	if scope == "" {
		scope = "body"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultInventoryLimit
	}

	el, _, err := capture.Resolve(ctx, s.env, scope)
	if err != nil {
		return nil, err
	}
	ds, err := el.Descendants(ctx, style.SubtreeProperties, 0)
	if err != nil {
		return nil, fmt.Errorf("stylewatch: inventory %q: %w", scope, err)
	}

	refs := make([]style.ElementRef, 0, limit)
	for _, cand := range capture.Rank(ds, capture.DefaultScoreWeights) {
		if len(refs) >= limit {
			break
		}
		if cand.Descendant.Selector == "" {
			continue
		}
		target, err := s.env.Resolve(ctx, cand.Descendant.Selector)
		if err != nil {
			e.logger.Debug("stylewatch: inventory candidate dropped",
				"selector", cand.Descendant.Selector, "error", err)
			continue
		}
		ref, err := target.Ref(ctx)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}

	e.logger.Debug("stylewatch: inventory", "session_id", sessionID,
		"scope", scope, "candidates", len(ds), "returned", len(refs))
	return refs, nil
}

// Workflow builds an advisory step plan for the given selectors, or for
// the whole page (inventory first) when none are given. The plan is
// never executed here; an external driver walks the steps and calls
// Capture with each step's request.
func (e *Engine) Workflow(ctx context.Context, sessionID string, selectors []string) (workflow.Plan, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return workflow.Plan{}, err
	}

	if len(selectors) == 0 {
		refs, err := e.Inventory(ctx, sessionID, InventoryOptions{})
		if err != nil {
			return workflow.Plan{}, err
		}
		return workflow.ForPage(refs), nil
	}

	refs := make([]style.ElementRef, 0, len(selectors))
	for _, sel := range selectors {
		_, ref, err := capture.Resolve(ctx, s.env, sel)
		if err != nil {
			if errors.Is(err, host.ErrNotFound) {
				e.logger.Debug("stylewatch: workflow selector skipped", "selector", sel)
				continue
			}
			return workflow.Plan{}, err
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return workflow.Plan{}, fmt.Errorf("stylewatch: workflow: no selector resolved: %w", host.ErrNotFound)
	}
	return workflow.ForElements(refs), nil
}

// Matrix assembles the session's per-selector state records.
func (e *Engine) Matrix(sessionID string) (map[string]*style.Record, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.store.AssembleMatrix(), nil
}

// DiffStates computes the property-level diff between two captured
// states of one selector. An empty from means the default state.
func (e *Engine) DiffStates(sessionID, selector string, from, to style.State) (style.Diff, error) {
	rec, err := e.record(sessionID, selector)
	if err != nil {
		return nil, err
	}
	if from == "" {
		from = style.StateDefault
	}
	a, ok := rec.States[from]
	if !ok {
		return nil, fmt.Errorf("stylewatch: diff %q: state %q: %w", selector, from, ErrNotCaptured)
	}
	b, ok := rec.States[to]
	if !ok {
		return nil, fmt.Errorf("stylewatch: diff %q: state %q: %w", selector, to, ErrNotCaptured)
	}
	return style.Compute(a, b), nil
}

// Summary renders the selector's record as per-state phrases.
func (e *Engine) Summary(sessionID, selector string) ([]style.StateSummary, error) {
	rec, err := e.record(sessionID, selector)
	if err != nil {
		return nil, err
	}
	return style.Summarize(rec), nil
}

// ContextResult is an element's agent-facing context: its locator facts
// plus a sanitized markdown rendition of its subtree.
type ContextResult struct {
	SessionID string           `json:"session_id"`
	Ref       style.ElementRef `json:"ref"`
	Markdown  string           `json:"markdown"`
}

// ElementContext captures the element's subtree as sanitized markdown,
// for reading alongside summaries.
func (e *Engine) ElementContext(ctx context.Context, sessionID, selector string) (ContextResult, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return ContextResult{}, err
	}
	el, ref, err := capture.Resolve(ctx, s.env, selector)
	if err != nil {
		return ContextResult{}, err
	}
	raw, err := el.OuterHTML(ctx)
	if err != nil {
		return ContextResult{}, fmt.Errorf("stylewatch: context %q: %w", selector, err)
	}
	return ContextResult{
		SessionID: sessionID,
		Ref:       ref,
		Markdown:  e.reporter.Markdown(raw, s.info.URL, ref.Text),
	}, nil
}

// ResetMatrix empties the session's matrix store. The only way entries
// disappear before the session closes.
func (e *Engine) ResetMatrix(ctx context.Context, sessionID string) error {
	s, err := e.session(sessionID)
	if err != nil {
		return err
	}
	s.store.Reset()
	e.journal.Record(ctx, journal.Event{SessionID: sessionID, Kind: journal.KindMatrixReset})
	e.logger.Info("stylewatch: matrix reset", "session_id", sessionID)
	return nil
}

// record looks up the assembled record for one selector.
func (e *Engine) record(sessionID, selector string) (*style.Record, error) {
	recs, err := e.Matrix(sessionID)
	if err != nil {
		return nil, err
	}
	rec, ok := recs[selector]
	if !ok {
		return nil, fmt.Errorf("stylewatch: selector %q: %w", selector, ErrNotCaptured)
	}
	return rec, nil
}

// simulate dispatches a best-effort local interaction for the state and
// waits the advisory settle. The driver service wins when routed; the
// environment's own simulator is the built-in stand-in. Reports whether
// anything was dispatched.
func (e *Engine) simulate(ctx context.Context, s *session, selector string, st style.State) bool {
	action := actionFor(st)
	if action == "" {
		return false
	}

	dispatched := false
	switch {
	case e.router != nil && e.router.Has(driverService):
		payload := detailJSON(map[string]string{
			"session_id": s.info.ID,
			"selector":   selector,
			"action":     action,
		})
		if _, err := e.router.Call(ctx, driverService, []byte(payload)); err != nil {
			e.logger.Debug("stylewatch: driver dispatch failed",
				"selector", selector, "action", action, "error", err)
			return false
		}
		dispatched = true
	default:
		sim, ok := s.env.(host.Simulator)
		if !ok {
			return false
		}
		if err := sim.Simulate(ctx, selector, action); err != nil {
			e.logger.Debug("stylewatch: simulation failed",
				"selector", selector, "action", action, "error", err)
			return false
		}
		dispatched = true
	}

	e.journal.Record(ctx, journal.Event{
		SessionID: s.info.ID,
		Kind:      journal.KindSimulate,
		Selector:  selector,
		State:     string(st),
		Detail:    detailJSON(map[string]string{"action": action}),
	})
	e.settle(ctx)
	return dispatched
}

// resetInteraction undoes a simulated press or focus after the read so
// the next capture starts from a quiet page.
func (e *Engine) resetInteraction(ctx context.Context, s *session, selector string, st style.State) {
	action := resetActionFor(st)
	if action == "" {
		return
	}
	sim, ok := s.env.(host.Simulator)
	if !ok {
		return
	}
	if err := sim.Simulate(ctx, selector, action); err != nil {
		e.logger.Debug("stylewatch: interaction reset failed",
			"selector", selector, "action", action, "error", err)
	}
}

// actionFor maps a state to the driver verb that can approximate it.
// Attribute-driven states (disabled, checked, invalid) have none.
func actionFor(st style.State) string {
	switch st {
	case style.StateHover:
		return "hover"
	case style.StateActive:
		return "press"
	case style.StateFocus, style.StateFocusVisible, style.StateFocusWithin:
		return "focus"
	default:
		return ""
	}
}

func resetActionFor(st style.State) string {
	switch st {
	case style.StateActive:
		return "release"
	case style.StateFocus, style.StateFocusVisible, style.StateFocusWithin:
		return "blur"
	default:
		return ""
	}
}

// settle waits the advisory post-simulation delay, honoring cancellation.
func (e *Engine) settle(ctx context.Context) {
	d := e.cfg.Capture.Settle
	if d <= 0 {
		d = capture.DefaultSettle
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// captureKey derives the store key for a selector+state pair: the bare
// selector for default, otherwise selector-state in the suffix
// vocabulary the matrix store infers from.
func captureKey(selector string, st style.State) string {
	if st == style.StateDefault {
		return selector
	}
	return selector + "-" + string(st)
}

func detailJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
