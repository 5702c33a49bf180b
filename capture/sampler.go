package capture

import (
	"context"
	"fmt"
	"sort"

	"github.com/hazyhaar/stylewatch/host"
	"github.com/hazyhaar/stylewatch/style"
)

// DefaultSampleLimit bounds descendant-derived entries per sample. Hover
// and focus effects usually touch one or two inner nodes; six slots keep
// the signal without dragging whole subtrees into every snapshot.
const DefaultSampleLimit = 6

// enumLimit bounds descendant enumeration before scoring.
const enumLimit = 200

// ScoreWeights is the additive scoring rubric for descendant candidates.
// The defaults are empirically chosen; treat them as tuning constants, not
// derived values.
type ScoreWeights struct {
	Graphics int // svg primitives: the strongest hover-effect carriers
	Media    int // img, video, canvas
	Control  int // nested interactive controls
	TextTag  int // text-bearing inline/heading tags

	Semantic int // role or aria-label present

	TextLong  int // text length >= textLongLen
	TextMid   int // text length >= textMidLen
	TextShort int // any non-empty text

	AreaLarge int // box area >= areaLargePx
	AreaMid   int // box area >= areaMidPx
	AreaSmall int // any non-zero box
}

const (
	textLongLen = 24
	textMidLen  = 8
	areaLargePx = 10000
	areaMidPx   = 2500
)

// DefaultScoreWeights preserves the original rubric: graphics primitives
// highest, then media and controls, then text tags; +12 for semantic
// attributes, up to +16 for text, +3/+6/+10 area tiers.
var DefaultScoreWeights = ScoreWeights{
	Graphics:  20,
	Media:     15,
	Control:   15,
	TextTag:   10,
	Semantic:  12,
	TextLong:  16,
	TextMid:   10,
	TextShort: 5,
	AreaLarge: 10,
	AreaMid:   6,
	AreaSmall: 3,
}

func (w ScoreWeights) orDefault() ScoreWeights {
	if w == (ScoreWeights{}) {
		return DefaultScoreWeights
	}
	return w
}

var graphicsTags = tagSet("svg", "path", "circle", "rect", "line", "polyline", "polygon", "ellipse", "use", "g")
var mediaTags = tagSet("img", "picture", "video", "canvas", "image")
var controlTags = tagSet("a", "button", "input", "select", "textarea", "label")
var textTags = tagSet("span", "p", "strong", "em", "b", "i", "small", "li", "td", "code",
	"h1", "h2", "h3", "h4", "h5", "h6")

func tagSet(tags ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return m
}

// Candidate is one scored descendant. Only candidates with Score > 0 are
// eligible for sampling.
type Candidate struct {
	Descendant host.Descendant
	Score      int
}

// Score applies the rubric to one descendant. Invisible descendants always
// score zero.
func Score(d host.Descendant, w ScoreWeights) int {
	if !d.Visible() {
		return 0
	}
	w = w.orDefault()

	score := 0
	switch {
	case in(graphicsTags, d.Tag):
		score += w.Graphics
	case in(mediaTags, d.Tag):
		score += w.Media
	case in(controlTags, d.Tag):
		score += w.Control
	case in(textTags, d.Tag):
		score += w.TextTag
	}

	if d.Role != "" || d.AriaLabel != "" {
		score += w.Semantic
	}

	switch n := len(d.Text); {
	case n >= textLongLen:
		score += w.TextLong
	case n >= textMidLen:
		score += w.TextMid
	case n > 0:
		score += w.TextShort
	}

	switch a := d.Rect.Area(); {
	case a >= areaLargePx:
		score += w.AreaLarge
	case a >= areaMidPx:
		score += w.AreaMid
	case a > 0:
		score += w.AreaSmall
	}

	return score
}

func in(set map[string]struct{}, tag string) bool {
	_, ok := set[tag]
	return ok
}

// Rank filters to visible positive-score descendants and stable-sorts them
// by descending score, preserving document order among equals.
func Rank(ds []host.Descendant, w ScoreWeights) []Candidate {
	var out []Candidate
	for _, d := range ds {
		if s := Score(d, w); s > 0 {
			out = append(out, Candidate{Descendant: d, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// SampleSubtree scores the element's visible descendants and returns a
// namespaced map "<path>.<property>" → value holding at most SampleLimit
// descendant-derived entries, filled highest score first. The root's
// ::before and ::after are always probed and kept only when they declare
// content; their entries do not count against the limit.
func SampleSubtree(ctx context.Context, el host.Element, opts Options) (map[string]string, error) {
	limit := opts.SampleLimit
	if limit <= 0 {
		limit = DefaultSampleLimit
	}

	ds, err := el.Descendants(ctx, style.SubtreeProperties, enumLimit)
	if err != nil {
		return nil, fmt.Errorf("capture: descendants: %w", err)
	}

	out := make(map[string]string)
	filled := 0
	for _, cand := range Rank(ds, opts.Weights) {
		if filled >= limit {
			break
		}
		snap := cand.Descendant.Styles.Clone().Prune(style.InSubtreeList)
		for _, p := range snap.Properties() {
			if filled >= limit {
				break
			}
			key := style.SubtreeKey(cand.Descendant.Path, p)
			if _, dup := out[string(key)]; dup {
				continue
			}
			out[string(key)] = snap[p]
			filled++
		}
	}

	for _, pseudo := range []string{"::before", "::after"} {
		snap, err := el.PseudoStyles(ctx, pseudo, style.SubtreeProperties)
		if err != nil {
			continue
		}
		content, ok := snap["content"]
		if !ok || style.IsPlaceholder(content) {
			continue
		}
		snap = snap.Clone().Prune(style.InSubtreeList)
		for _, p := range snap.Properties() {
			out[string(style.SubtreeKey(pseudo, p))] = snap[p]
		}
	}

	return out, nil
}
