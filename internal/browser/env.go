// CLAUDE:SUMMARY Implements the hosting-environment contract over a live Rod tab: JS-evaluated style reads, sheet enumeration, interaction simulation.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/style"
)

// Env exposes one live tab as a hosting environment. Elements are
// re-resolved by selector on every read, so a returned handle never goes
// stale; it just starts reporting not-found once the node is gone.
type Env struct {
	tab    *Tab
	logger *slog.Logger
}

var (
	_ host.Environment = (*Env)(nil)
	_ host.Simulator   = (*Env)(nil)
)

// NewEnv wraps a tab.
func NewEnv(tab *Tab, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{tab: tab, logger: logger}
}

// URL returns the address the tab was opened on.
func (e *Env) URL() string { return e.tab.URL }

func (e *Env) Resolve(ctx context.Context, selector string) (host.Element, error) {
	var status string
	if err := e.eval(ctx, jsProbe, &status, selector); err != nil {
		return nil, fmt.Errorf("browser: resolve %q: %w", selector, err)
	}
	switch status {
	case "found":
		return &liveElement{env: e, selector: selector}, nil
	case "bad":
		return nil, fmt.Errorf("browser: resolve %q: %w", selector, host.ErrBadSelector)
	default:
		return nil, fmt.Errorf("browser: resolve %q: %w", selector, host.ErrNotFound)
	}
}

func (e *Env) Stylesheets(ctx context.Context) ([]host.Stylesheet, error) {
	var dtos []sheetDTO
	if err := e.eval(ctx, jsStylesheets, &dtos); err != nil {
		return nil, fmt.Errorf("browser: stylesheets: %w", err)
	}
	out := make([]host.Stylesheet, 0, len(dtos))
	for _, d := range dtos {
		sheet := host.Stylesheet{URL: d.URL, Inline: d.Inline}
		if d.Blocked {
			sheet.AccessErr = fmt.Errorf("browser: sheet %s: %w", d.URL, host.ErrSheetAccess)
		} else {
			for _, r := range d.Rules {
				rule := host.Rule{Selector: r.Selector}
				for _, decl := range r.Declarations {
					rule.Declarations = append(rule.Declarations, host.Declaration{
						Property:  decl.Property,
						Value:     decl.Value,
						Important: decl.Important,
					})
				}
				sheet.Rules = append(sheet.Rules, rule)
			}
		}
		out = append(out, sheet)
	}
	return out, nil
}

func (e *Env) Close() error { return e.tab.Close() }

// Simulate dispatches a best-effort local interaction through CDP input
// events. Synthetic DOM events cannot flip pseudo-class state, so hover
// and press go through the real mouse path.
func (e *Env) Simulate(ctx context.Context, selector, action string) error {
	page := e.tab.Page.Context(ctx)
	switch action {
	case "hover":
		el, err := e.rodElement(page, selector)
		if err != nil {
			return err
		}
		return el.Hover()
	case "focus":
		el, err := e.rodElement(page, selector)
		if err != nil {
			return err
		}
		return el.Focus()
	case "blur":
		return e.eval(ctx, jsBlur, nil, selector)
	case "click":
		el, err := e.rodElement(page, selector)
		if err != nil {
			return err
		}
		return el.Click(proto.InputMouseButtonLeft, 1)
	case "press":
		el, err := e.rodElement(page, selector)
		if err != nil {
			return err
		}
		if err := el.Hover(); err != nil {
			return err
		}
		return page.Mouse.Down(proto.InputMouseButtonLeft, 1)
	case "release":
		return page.Mouse.Up(proto.InputMouseButtonLeft, 1)
	}
	return fmt.Errorf("browser: simulate: unknown action %q", action)
}

func (e *Env) rodElement(page *rod.Page, selector string) (*rod.Element, error) {
	el, err := page.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: element %q: %w", selector, host.ErrNotFound)
	}
	return el, nil
}

// eval runs a snippet and decodes its JSON result into out. A nil out
// discards the result.
func (e *Env) eval(ctx context.Context, js string, out any, args ...any) error {
	res, err := e.tab.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type liveElement struct {
	env      *Env
	selector string
}

var _ host.Element = (*liveElement)(nil)

func (l *liveElement) Ref(ctx context.Context) (style.ElementRef, error) {
	var dto *refDTO
	if err := l.env.eval(ctx, jsRef, &dto, l.selector); err != nil {
		return style.ElementRef{}, fmt.Errorf("browser: ref %q: %w", l.selector, err)
	}
	if dto == nil {
		return style.ElementRef{}, fmt.Errorf("browser: ref %q: %w", l.selector, host.ErrNotFound)
	}
	return style.ElementRef{
		Selector:  dto.Selector,
		Tag:       dto.Tag,
		Rect:      dto.Rect.rect(),
		ID:        dto.ID,
		Classes:   dto.Classes,
		Role:      dto.Role,
		AriaLabel: dto.AriaLabel,
		Text:      dto.Text,
		Cursor:    dto.Cursor,
		Attrs:     dto.Attrs,
	}, nil
}

func (l *liveElement) Styles(ctx context.Context, props []style.Property) (style.Snapshot, error) {
	if props == nil {
		props = style.FullProperties
	}
	var m map[string]string
	if err := l.env.eval(ctx, jsStyles, &m, l.selector, propNames(props)); err != nil {
		return nil, fmt.Errorf("browser: styles %q: %w", l.selector, err)
	}
	if m == nil {
		return nil, fmt.Errorf("browser: styles %q: %w", l.selector, host.ErrNotFound)
	}
	return toSnapshot(m, props), nil
}

func (l *liveElement) PseudoStyles(ctx context.Context, which string, props []style.Property) (style.Snapshot, error) {
	if which != "::before" && which != "::after" {
		return nil, fmt.Errorf("browser: pseudo %q: %w", which, host.ErrBadSelector)
	}
	if props == nil {
		props = style.SubtreeProperties
	}
	var m map[string]string
	if err := l.env.eval(ctx, jsPseudoStyles, &m, l.selector, which, propNames(props)); err != nil {
		return nil, fmt.Errorf("browser: pseudo %q %s: %w", l.selector, which, err)
	}
	if m == nil {
		return nil, fmt.Errorf("browser: pseudo %q: %w", l.selector, host.ErrNotFound)
	}
	return toSnapshot(m, props), nil
}

func (l *liveElement) Descendants(ctx context.Context, props []style.Property, limit int) ([]host.Descendant, error) {
	if limit <= 0 {
		limit = 200
	}
	if props == nil {
		props = style.SubtreeProperties
	}
	var dtos []descDTO
	if err := l.env.eval(ctx, jsDescendants, &dtos, l.selector, propNames(props), limit); err != nil {
		return nil, fmt.Errorf("browser: descendants %q: %w", l.selector, err)
	}
	if dtos == nil {
		return nil, fmt.Errorf("browser: descendants %q: %w", l.selector, host.ErrNotFound)
	}
	out := make([]host.Descendant, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, host.Descendant{
			Path:      d.Path,
			Selector:  d.Selector,
			Tag:       d.Tag,
			Role:      d.Role,
			AriaLabel: d.AriaLabel,
			Text:      d.Text,
			Rect:      d.Rect.rect(),
			Hidden:    d.Hidden,
			Opacity:   d.Opacity,
			Styles:    toSnapshot(d.Styles, props),
		})
	}
	return out, nil
}

func (l *liveElement) Matches(ctx context.Context, selector string) (bool, error) {
	var status string
	if err := l.env.eval(ctx, jsMatches, &status, l.selector, selector); err != nil {
		return false, fmt.Errorf("browser: match %q: %w", selector, err)
	}
	switch status {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	case "bad":
		return false, fmt.Errorf("browser: match %q: %w", selector, host.ErrBadSelector)
	default:
		return false, fmt.Errorf("browser: match %q: %w", l.selector, host.ErrNotFound)
	}
}

func (l *liveElement) OuterHTML(ctx context.Context) (string, error) {
	var out *string
	if err := l.env.eval(ctx, jsOuterHTML, &out, l.selector); err != nil {
		return "", fmt.Errorf("browser: outer html %q: %w", l.selector, err)
	}
	if out == nil {
		return "", fmt.Errorf("browser: outer html %q: %w", l.selector, host.ErrNotFound)
	}
	return *out, nil
}

func propNames(props []style.Property) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = string(p)
	}
	return names
}

// toSnapshot filters a raw style read to the requested properties;
// placeholder values drop out in Set.
func toSnapshot(m map[string]string, props []style.Property) style.Snapshot {
	snap := make(style.Snapshot)
	for _, p := range props {
		if v, ok := m[string(p)]; ok {
			snap.Set(p, v)
		}
	}
	return snap
}

type rectDTO struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r rectDTO) rect() style.Rect {
	return style.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type refDTO struct {
	Selector  string            `json:"selector"`
	Tag       string            `json:"tag"`
	Rect      rectDTO           `json:"rect"`
	ID        string            `json:"id"`
	Classes   []string          `json:"classes"`
	Role      string            `json:"role"`
	AriaLabel string            `json:"aria_label"`
	Text      string            `json:"text"`
	Cursor    string            `json:"cursor"`
	Attrs     map[string]string `json:"attrs"`
}

type descDTO struct {
	Path      string            `json:"path"`
	Selector  string            `json:"selector"`
	Tag       string            `json:"tag"`
	Role      string            `json:"role"`
	AriaLabel string            `json:"aria_label"`
	Text      string            `json:"text"`
	Rect      rectDTO           `json:"rect"`
	Hidden    bool              `json:"hidden"`
	Opacity   float64           `json:"opacity"`
	Styles    map[string]string `json:"styles"`
}

type sheetDTO struct {
	URL     string    `json:"url"`
	Inline  bool      `json:"inline"`
	Rules   []ruleDTO `json:"rules"`
	Blocked bool      `json:"blocked"`
}

type ruleDTO struct {
	Selector     string    `json:"selector"`
	Declarations []declDTO `json:"declarations"`
}

type declDTO struct {
	Property  string `json:"property"`
	Value     string `json:"value"`
	Important bool   `json:"important"`
}
