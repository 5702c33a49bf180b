// Package rulematch approximates interaction-state styles by static
// stylesheet analysis: rules whose selectors carry pseudo-class state
// tokens are matched against an element via their residual base selector,
// and their declarations are overlaid onto the default snapshot.
//
// Conflicts between matching rules resolve in document order (later rules
// win). True specificity and !important ordering are deliberately not
// modeled; this is a documented approximation, good enough to seed a state
// matrix when no driver can trigger the real states.
package rulematch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/style"
)

// ScanStats accumulates what one scan skipped and matched, replacing
// silent per-rule error swallowing with inspectable counts.
type ScanStats struct {
	Sheets        int `json:"sheets"`
	SheetsSkipped int `json:"sheets_skipped"`
	Rules         int `json:"rules"`
	RulesSkipped  int `json:"rules_skipped"`
	RulesMatched  int `json:"rules_matched"`
}

// stateTokens maps pseudo-class tokens to states. Longest tokens first so
// ":focus-visible" is consumed before its ":focus" substring.
var stateTokens = []struct {
	token string
	state style.State
}{
	{":focus-visible", style.StateFocusVisible},
	{":focus-within", style.StateFocusWithin},
	{":disabled", style.StateDisabled},
	{":checked", style.StateChecked},
	{":invalid", style.StateInvalid},
	{":active", style.StateActive},
	{":hover", style.StateHover},
	{":focus", style.StateFocus},
}

// Options configures a scan.
type Options struct {
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Infer scans the environment's stylesheets and builds a fallback state
// record for the element: for every state with at least one matching rule,
// the default snapshot is copied and the rule declarations are overlaid in
// document order. States without matches are omitted; the default state is
// always present. Inaccessible sheets and unsupported residual selectors
// are skipped and counted, never fatal.
func Infer(ctx context.Context, env host.Environment, el host.Element, selector string, defaults style.Snapshot, opts Options) (*style.Record, ScanStats, error) {
	var stats ScanStats

	rec := style.NewRecord(selector)
	rec.Apply(style.StateDefault, defaults, style.OriginFallback)

	sheets, err := env.Stylesheets(ctx)
	if err != nil {
		return rec, stats, fmt.Errorf("rulematch: stylesheets: %w", err)
	}

	log := opts.logger()
	overlays := make(map[style.State]style.Snapshot)

	for _, sheet := range sheets {
		stats.Sheets++
		if sheet.AccessErr != nil {
			stats.SheetsSkipped++
			log.Debug("rulematch: sheet skipped", "url", sheet.URL, "error", sheet.AccessErr)
			continue
		}
		for _, rule := range sheet.Rules {
			stats.Rules++
			matched, skipped := applyRule(ctx, el, rule, defaults, overlays)
			if skipped {
				stats.RulesSkipped++
			}
			if matched {
				stats.RulesMatched++
			}
		}
	}

	for st, snap := range overlays {
		rec.Apply(st, snap, style.OriginFallback)
	}

	log.Debug("rulematch: scan complete", "selector", selector,
		"sheets", stats.Sheets, "sheets_skipped", stats.SheetsSkipped,
		"rules", stats.Rules, "rules_skipped", stats.RulesSkipped,
		"rules_matched", stats.RulesMatched)

	return rec, stats, nil
}

// applyRule probes one rule against the element. A rule is "matched" when
// at least one of its comma-grouped selectors carries a state token and
// the element matches the residual; "skipped" when a residual selector was
// empty or unsupported by the matcher.
func applyRule(ctx context.Context, el host.Element, rule host.Rule, defaults style.Snapshot, overlays map[style.State]style.Snapshot) (matched, skipped bool) {
	for _, part := range strings.Split(rule.Selector, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		residual, states := splitStates(part)
		if len(states) == 0 {
			continue
		}
		if residual == "" {
			// Bare state selector like ":hover"; the environments cannot
			// resolve it, matching the original's skip behavior.
			skipped = true
			continue
		}

		ok, err := el.Matches(ctx, residual)
		if err != nil {
			skipped = true
			continue
		}
		if !ok {
			continue
		}

		matched = true
		for _, st := range states {
			snap, exists := overlays[st]
			if !exists {
				snap = defaults.Clone()
				overlays[st] = snap
			}
			overlay(snap, rule.Declarations)
		}
	}
	return matched, skipped
}

// splitStates removes every state token from a selector and returns the
// residual structural selector plus the states seen. Tokens are consumed
// longest-first so ":focus-visible" never also registers ":focus".
func splitStates(part string) (string, []style.State) {
	residual := part
	var states []style.State
	for _, t := range stateTokens {
		for strings.Contains(residual, t.token) {
			residual = strings.Replace(residual, t.token, "", 1)
			states = appendState(states, t.state)
		}
	}
	return strings.TrimSpace(residual), states
}

func appendState(states []style.State, st style.State) []style.State {
	for _, s := range states {
		if s == st {
			return states
		}
	}
	return append(states, st)
}

// overlay writes the rule's allow-listed declarations over the snapshot:
// declared properties replace, undeclared properties keep their default. A
// declared placeholder (e.g. "background: none") clears the slot.
func overlay(snap style.Snapshot, decls []host.Declaration) {
	for _, d := range decls {
		p := style.CanonicalProperty(d.Property)
		if !style.InFullList(p) {
			continue
		}
		snap.Set(p, NormalizeValue(p, d.Value))
	}
}
