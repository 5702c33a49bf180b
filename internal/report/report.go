// CLAUDE:SUMMARY Renders captured element markup as sanitized markdown for agent-facing context.
// Package report converts captured element subtrees into markdown.
//
// Raw outer HTML from a live page is untrusted: it can carry scripts,
// event handlers, and style blocks that are noise (or worse) for an
// agent reading a capture summary. The renderer sanitizes first, then
// converts what survives to markdown.
package report

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer sanitizes element HTML and converts it to markdown.
// Construct with New; the zero value is not usable.
type Renderer struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

// New creates a Renderer with a user-generated-content sanitization
// policy and a commonmark converter with table support.
func New() *Renderer {
	return &Renderer{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Markdown sanitizes rawHTML and converts it to markdown. pageURL, when
// non-empty, is used to resolve relative links in the output.
// If conversion fails or produces empty output, the fallback plain text
// is returned instead.
func (r *Renderer) Markdown(rawHTML, pageURL, fallback string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return strings.TrimSpace(fallback)
	}
	clean := r.policy.Sanitize(rawHTML)
	result, err := r.conv.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return strings.TrimSpace(fallback)
	}
	return strings.TrimSpace(result)
}
