package style

import (
	"fmt"
	"strings"
)

// StateSummary is the human-readable rendition of one state's diff against
// the default snapshot.
type StateSummary struct {
	State   State    `json:"state"`
	Phrases []string `json:"phrases"`
}

// Summarize renders a record into short phrases, one per changed property,
// for every non-default state whose diff against default is non-empty.
// States appear in vocabulary order, phrases in property order. Purely
// presentational: it never fails, and without a captured default it returns
// no summaries because no diff is computable.
func Summarize(rec *Record) []StateSummary {
	if rec == nil {
		return nil
	}
	base := rec.Default()
	if base == nil {
		return nil
	}
	var out []StateSummary
	for _, st := range States() {
		if st == StateDefault {
			continue
		}
		snap, ok := rec.States[st]
		if !ok {
			continue
		}
		d := Compute(base, snap)
		if len(d) == 0 {
			continue
		}
		sum := StateSummary{State: st}
		for _, p := range d.Properties() {
			sum.Phrases = append(sum.Phrases, phraseFor(p, d[p]))
		}
		out = append(out, sum)
	}
	return out
}

// phraseFor applies the fixed property→phrasing table. Unknown properties
// fall through to "<property>: <to-value>".
func phraseFor(p Property, c Change) string {
	from := deref(c.From)
	to := deref(c.To)

	switch p {
	case "backgroundColor":
		if c.From == nil {
			return fmt.Sprintf("background becomes %s", to)
		}
		if c.To == nil {
			return "background is removed"
		}
		return fmt.Sprintf("background changes from %s to %s", from, to)
	case "color":
		if c.From == nil {
			return fmt.Sprintf("text color becomes %s", to)
		}
		return fmt.Sprintf("text color changes from %s to %s", from, to)
	case "borderColor":
		return fmt.Sprintf("border color changes from %s to %s", orNone(from), orNone(to))
	case "borderWidth":
		return fmt.Sprintf("border width changes from %s to %s", orNone(from), orNone(to))
	case "borderRadius":
		return fmt.Sprintf("corner radius changes from %s to %s", orNone(from), orNone(to))
	case "boxShadow":
		if c.From == nil {
			return "shadow appears"
		}
		if c.To == nil {
			return "shadow is removed"
		}
		return "shadow changes"
	case "transform":
		switch {
		case strings.Contains(to, "scale"):
			return "element scales"
		case strings.Contains(to, "translate"):
			return "element moves"
		case strings.Contains(to, "rotate"):
			return "element rotates"
		case c.To == nil:
			return "transform is removed"
		}
		return fmt.Sprintf("transform: %s", to)
	case "opacity":
		return fmt.Sprintf("opacity changes from %s to %s", orDefault(from, "1"), orDefault(to, "1"))
	case "outlineColor", "outlineWidth", "outlineStyle":
		if c.From == nil {
			return "outline appears"
		}
		if c.To == nil {
			return "outline is removed"
		}
		return "outline changes"
	case "textDecoration":
		if strings.Contains(to, "underline") {
			return "text becomes underlined"
		}
		if c.To == nil && strings.Contains(from, "underline") {
			return "underline is removed"
		}
		return fmt.Sprintf("text decoration: %s", orNone(to))
	case "cursor":
		return fmt.Sprintf("cursor becomes %s", orDefault(to, "default"))
	case "fontWeight":
		return fmt.Sprintf("text weight changes from %s to %s", orDefault(from, "normal"), orDefault(to, "normal"))
	case "visibility":
		if to == "hidden" {
			return "element becomes hidden"
		}
		return fmt.Sprintf("visibility: %s", orDefault(to, "visible"))
	case "filter":
		if c.To == nil {
			return "filter is removed"
		}
		return fmt.Sprintf("filter applied: %s", to)
	}

	if c.To == nil {
		return fmt.Sprintf("%s removed", p)
	}
	return fmt.Sprintf("%s: %s", p, to)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
