package staticdom

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/rulematch"
	"github.com/hazyhaar/stylewatch/style"
)

const defaultEnumLimit = 200

type element struct {
	doc      *Document
	node     *html.Node
	selector string
}

var _ host.Element = (*element)(nil)

// Ref describes the element. With no layout engine, visible elements get
// a nominal 1x1 box so downstream scoring runs on structure and text
// rather than geometry.
func (e *element) Ref(ctx context.Context) (style.ElementRef, error) {
	fold := e.computed()
	attrs := make(map[string]string, len(e.node.Attr))
	for _, a := range e.node.Attr {
		attrs[a.Key] = a.Val
	}
	var classes []string
	if c := attrVal(e.node, "class"); c != "" {
		classes = strings.Fields(c)
	}
	return style.ElementRef{
		Selector:  e.selector,
		Tag:       e.node.Data,
		Rect:      e.rect(fold),
		ID:        attrVal(e.node, "id"),
		Classes:   classes,
		Role:      attrVal(e.node, "role"),
		AriaLabel: attrVal(e.node, "aria-label"),
		Text:      collapseText(textContent(e.node), 80),
		Cursor:    fold["cursor"],
		Attrs:     attrs,
	}, nil
}

func (e *element) Styles(ctx context.Context, props []style.Property) (style.Snapshot, error) {
	if props == nil {
		props = style.FullProperties
	}
	return pick(e.computed(), props), nil
}

func (e *element) PseudoStyles(ctx context.Context, which string, props []style.Property) (style.Snapshot, error) {
	if which != "::before" && which != "::after" {
		return nil, fmt.Errorf("staticdom: pseudo %q: %w", which, host.ErrBadSelector)
	}
	if props == nil {
		props = style.SubtreeProperties
	}
	return pick(e.pseudoComputed(which), props), nil
}

func (e *element) Descendants(ctx context.Context, props []style.Property, limit int) ([]host.Descendant, error) {
	if limit <= 0 {
		limit = defaultEnumLimit
	}
	if props == nil {
		props = style.SubtreeProperties
	}
	var out []host.Descendant
	e.collectDescendants(e.node, nil, e.selector, props, limit, &out)
	return out, nil
}

func (e *element) Matches(ctx context.Context, selector string) (bool, error) {
	sel, err := e.doc.selector(selector)
	if err != nil {
		return false, fmt.Errorf("staticdom: match %q: %w: %v", selector, host.ErrBadSelector, err)
	}
	return sel.Match(e.node), nil
}

func (e *element) OuterHTML(ctx context.Context) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, e.node); err != nil {
		return "", fmt.Errorf("staticdom: render: %w", err)
	}
	return b.String(), nil
}

// skipTags never contribute visual descendants.
var skipTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Head: true, atom.Meta: true,
	atom.Link: true, atom.Title: true,
}

func (e *element) collectDescendants(n *html.Node, path []string, sel string, props []style.Property, limit int, out *[]host.Descendant) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if len(*out) >= limit {
			return
		}
		if c.Type != html.ElementNode || skipTags[c.DataAtom] {
			continue
		}
		childPath := append(path, pathSegment(c))
		childSel := extendSelector(sel, c)
		child := &element{doc: e.doc, node: c, selector: childSel}
		fold := child.computed()
		*out = append(*out, host.Descendant{
			Path:      strings.Join(childPath, ">"),
			Selector:  childSel,
			Tag:       c.Data,
			Role:      attrVal(c, "role"),
			AriaLabel: attrVal(c, "aria-label"),
			Text:      collapseText(textContent(c), 80),
			Rect:      child.rect(fold),
			Hidden:    child.hidden(fold),
			Opacity:   opacityOf(fold),
			Styles:    pick(fold, props),
		})
		e.collectDescendants(c, childPath, childSel, props, limit, out)
	}
}

// computed folds authored declarations over the node: sheet rules in
// document order, then the inline style attribute, normal declarations
// before !important ones. Dynamic pseudo-class selectors compile to
// never-match, so resting style falls out without filtering them.
func (e *element) computed() map[style.Property]string {
	inline := e.inlineDeclarations()
	return foldInOrder(func(emit func(name, value string, important bool)) {
		for _, sheet := range e.doc.sheets {
			if sheet.AccessErr != nil {
				continue
			}
			for _, rule := range sheet.Rules {
				if !e.doc.groupMatches(rule.Selector, e.node) {
					continue
				}
				for _, d := range rule.Declarations {
					emit(d.Property, d.Value, d.Important)
				}
			}
		}
		for _, d := range inline {
			emit(d.Property, d.Value, d.Important)
		}
	})
}

// inlineDeclarations parses the node's style attribute. douceur only
// closes a declaration on a semicolon, so an unterminated final
// declaration ("cursor: pointer") parses with an empty value; a trailing
// semicolon is appended before parsing to close it.
func (e *element) inlineDeclarations() []*css.Declaration {
	raw := strings.TrimSpace(attrVal(e.node, "style"))
	if raw == "" {
		return nil
	}
	if !strings.HasSuffix(raw, ";") {
		raw += ";"
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		e.doc.logger.Debug("staticdom: bad inline style", "selector", e.selector, "error", err)
		return nil
	}
	return decls
}

// pseudoComputed folds declarations of rules targeting the node's
// ::before or ::after.
func (e *element) pseudoComputed(which string) map[style.Property]string {
	single := ":" + strings.TrimPrefix(which, "::")
	return foldInOrder(func(emit func(name, value string, important bool)) {
		for _, sheet := range e.doc.sheets {
			if sheet.AccessErr != nil {
				continue
			}
			for _, rule := range sheet.Rules {
				if !e.pseudoRuleMatches(rule.Selector, which, single) {
					continue
				}
				for _, d := range rule.Declarations {
					emit(d.Property, d.Value, d.Important)
				}
			}
		}
	})
}

func (e *element) pseudoRuleMatches(group, double, single string) bool {
	for _, part := range strings.Split(group, ",") {
		base, ok := trimPseudo(strings.TrimSpace(part), double, single)
		if !ok || base == "" {
			continue
		}
		if e.doc.partMatches(base, e.node) {
			return true
		}
	}
	return false
}

func trimPseudo(part, double, single string) (string, bool) {
	if base, ok := strings.CutSuffix(part, double); ok {
		return strings.TrimSpace(base), true
	}
	if base, ok := strings.CutSuffix(part, single); ok && !strings.HasSuffix(base, ":") {
		return strings.TrimSpace(base), true
	}
	return "", false
}

// foldInOrder runs the emitter twice, applying normal declarations on the
// first pass and !important ones on the second, so importance beats
// document order and later declarations win within a pass.
func foldInOrder(emitAll func(emit func(name, value string, important bool))) map[style.Property]string {
	out := make(map[style.Property]string)
	for _, wantImportant := range []bool{false, true} {
		emitAll(func(name, value string, important bool) {
			if important != wantImportant {
				return
			}
			p := style.CanonicalProperty(name)
			out[p] = rulematch.NormalizeValue(p, value)
		})
	}
	return out
}

// groupMatches reports whether any comma-separated part of the selector
// group matches the node. Unsupported parts are skipped, not fatal.
func (d *Document) groupMatches(group string, n *html.Node) bool {
	for _, part := range strings.Split(group, ",") {
		if d.partMatches(strings.TrimSpace(part), n) {
			return true
		}
	}
	return false
}

func (d *Document) partMatches(part string, n *html.Node) bool {
	if part == "" {
		return false
	}
	sel, err := d.selector(part)
	if err != nil {
		return false
	}
	return sel.Match(n)
}

func (e *element) rect(fold map[style.Property]string) style.Rect {
	if e.hidden(fold) {
		return style.Rect{}
	}
	return style.Rect{Width: 1, Height: 1}
}

func (e *element) hidden(fold map[style.Property]string) bool {
	return fold["display"] == "none" || fold["visibility"] == "hidden" || hasAttr(e.node, "hidden")
}

func opacityOf(fold map[style.Property]string) float64 {
	raw, ok := fold["opacity"]
	if !ok {
		return 1
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 1
	}
	return v
}

// pick builds a snapshot of the requested properties; placeholder values
// drop out in Set.
func pick(fold map[style.Property]string, props []style.Property) style.Snapshot {
	snap := make(style.Snapshot)
	for _, p := range props {
		if v, ok := fold[p]; ok {
			snap.Set(p, v)
		}
	}
	return snap
}

// pathSegment names a node the short way: id when present, first class
// otherwise, bare tag as a last resort.
func pathSegment(n *html.Node) string {
	if id := attrVal(n, "id"); id != "" {
		return n.Data + "#" + id
	}
	if c := attrVal(n, "class"); c != "" {
		if fields := strings.Fields(c); len(fields) > 0 {
			return n.Data + "." + fields[0]
		}
	}
	return n.Data
}

// extendSelector grows an absolute selector by one child step. An id
// restarts the chain, anything else appends a positional step.
func extendSelector(base string, n *html.Node) string {
	if id := attrVal(n, "id"); id != "" {
		return "#" + id
	}
	return base + " > " + n.Data + ":nth-of-type(" + strconv.Itoa(nthOfType(n)) + ")"
}

func nthOfType(n *html.Node) int {
	k := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == n.Data {
			k++
		}
	}
	return k
}

func collapseText(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
