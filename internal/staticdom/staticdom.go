// Package staticdom hosts a parsed HTML document with no rendering
// engine behind it. Resolved style approximates the cascade as authored
// declarations folded in document order with !important precedence;
// specificity, inheritance and user-agent defaults are not modeled. It is
// the environment behind static sessions and most tests.
package staticdom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/stylewatch/host"
)

// Options configure document parsing.
type Options struct {
	// BaseURL labels the document. It resolves nothing; linked sheet
	// hrefs reach Fetch verbatim.
	BaseURL string

	// Fetch retrieves the text of a linked stylesheet. When nil, linked
	// sheets are listed as inaccessible instead of fetched.
	Fetch func(ctx context.Context, href string) (string, error)

	Logger *slog.Logger
}

// Document is a static host.Environment over one parsed HTML tree.
type Document struct {
	root    *html.Node
	baseURL string
	sheets  []host.Stylesheet
	logger  *slog.Logger

	mu       sync.Mutex
	compiled map[string]cascadia.Selector
}

var _ host.Environment = (*Document)(nil)

// Parse reads an HTML document and collects its <style> elements and
// <link rel="stylesheet"> references. Sheet-level failures never fail the
// parse; they surface as AccessErr entries in the sheet list.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("staticdom: parse: %w", err)
	}
	d := &Document{
		root:     root,
		baseURL:  opts.BaseURL,
		logger:   logger,
		compiled: make(map[string]cascadia.Selector),
	}
	d.collectSheets(ctx, opts)
	return d, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(ctx context.Context, doc string, opts Options) (*Document, error) {
	return Parse(ctx, strings.NewReader(doc), opts)
}

func (d *Document) collectSheets(ctx context.Context, opts Options) {
	walk(d.root, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Style:
			sheet := host.Stylesheet{Inline: true}
			if rules, err := parseCSS(textContent(n)); err != nil {
				sheet.AccessErr = fmt.Errorf("staticdom: style element: %w: %v", host.ErrSheetAccess, err)
			} else {
				sheet.Rules = rules
			}
			d.sheets = append(d.sheets, sheet)
		case atom.Link:
			if !strings.EqualFold(attrVal(n, "rel"), "stylesheet") {
				return true
			}
			href := attrVal(n, "href")
			if href == "" {
				return true
			}
			sheet := host.Stylesheet{URL: href}
			switch {
			case opts.Fetch == nil:
				sheet.AccessErr = fmt.Errorf("staticdom: sheet %s: %w: no fetcher configured", href, host.ErrSheetAccess)
			default:
				text, err := opts.Fetch(ctx, href)
				if err != nil {
					sheet.AccessErr = fmt.Errorf("staticdom: fetch %s: %w: %v", href, host.ErrSheetAccess, err)
				} else if rules, perr := parseCSS(text); perr != nil {
					sheet.AccessErr = fmt.Errorf("staticdom: parse %s: %w: %v", href, host.ErrSheetAccess, perr)
				} else {
					sheet.Rules = rules
				}
			}
			if sheet.AccessErr != nil {
				d.logger.Debug("staticdom: sheet inaccessible", "href", href, "error", sheet.AccessErr)
			}
			d.sheets = append(d.sheets, sheet)
		}
		return true
	})
}

// Resolve locates the first element matching selector.
func (d *Document) Resolve(ctx context.Context, selector string) (host.Element, error) {
	sel, err := d.selector(selector)
	if err != nil {
		return nil, fmt.Errorf("staticdom: resolve %q: %w: %v", selector, host.ErrBadSelector, err)
	}
	node := sel.MatchFirst(d.root)
	if node == nil {
		return nil, fmt.Errorf("staticdom: resolve %q: %w", selector, host.ErrNotFound)
	}
	return &element{doc: d, node: node, selector: selector}, nil
}

// Stylesheets lists the document's sheets, inaccessible ones included.
func (d *Document) Stylesheets(ctx context.Context) ([]host.Stylesheet, error) {
	out := make([]host.Stylesheet, len(d.sheets))
	copy(out, d.sheets)
	return out, nil
}

// Close is a no-op; the document holds no external resources.
func (d *Document) Close() error { return nil }

// selector compiles and caches a selector. Compilation failures are not
// cached; they only occur on caller-supplied selectors.
func (d *Document) selector(s string) (cascadia.Selector, error) {
	d.mu.Lock()
	sel, ok := d.compiled[s]
	d.mu.Unlock()
	if ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(s)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.compiled[s] = sel
	d.mu.Unlock()
	return sel, nil
}

func parseCSS(text string) ([]host.Rule, error) {
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return flattenRules(parsed.Rules), nil
}

// flattenRules lifts qualified rules out of @media and @supports blocks;
// conditional group queries are assumed to apply since no viewport
// exists. Other at-rules carry no matchable selectors and are dropped.
func flattenRules(in []*css.Rule) []host.Rule {
	var out []host.Rule
	for _, r := range in {
		switch r.Kind {
		case css.QualifiedRule:
			out = append(out, toRule(r))
		case css.AtRule:
			if r.Name == "@media" || r.Name == "@supports" {
				out = append(out, flattenRules(r.Rules)...)
			}
		}
	}
	return out
}

func toRule(r *css.Rule) host.Rule {
	rule := host.Rule{Selector: strings.Join(r.Selectors, ", ")}
	for _, decl := range r.Declarations {
		rule.Declarations = append(rule.Declarations, host.Declaration{
			Property:  decl.Property,
			Value:     decl.Value,
			Important: decl.Important,
		})
	}
	return rule
}

// walk visits n and its subtree in document order. The visitor returns
// false to prune a branch.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
