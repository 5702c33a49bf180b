// Package style defines the data contract of the state-and-diff engine.
// Consumers (MCP tools, HTTP handlers, downstream formatters) import this
// package to receive snapshots, state records, diffs and summaries.
package style

import "strings"

// Property is a visual style property in canonical camelCase form
// ("backgroundColor", "boxShadow"). Snapshots only ever contain properties
// from one of the two fixed allow-lists below.
type Property string

// FullProperties is the allow-list for an element's own snapshot.
var FullProperties = []Property{
	"backgroundColor",
	"backgroundImage",
	"backgroundSize",
	"backgroundPosition",
	"backgroundRepeat",
	"color",
	"borderColor",
	"borderWidth",
	"borderStyle",
	"borderRadius",
	"boxShadow",
	"outlineColor",
	"outlineWidth",
	"outlineStyle",
	"outlineOffset",
	"opacity",
	"transform",
	"transition",
	"textDecoration",
	"textShadow",
	"textTransform",
	"fontSize",
	"fontWeight",
	"fontFamily",
	"fontStyle",
	"lineHeight",
	"letterSpacing",
	"filter",
	"cursor",
	"visibility",
}

// SubtreeProperties is the narrower allow-list used when sampling
// descendants and pseudo-elements. Descendant noise must be filtered more
// aggressively, so layout-ish properties are excluded and the graphics
// properties content/fill/stroke are added.
var SubtreeProperties = []Property{
	"color",
	"backgroundColor",
	"borderColor",
	"borderWidth",
	"borderRadius",
	"boxShadow",
	"outlineColor",
	"opacity",
	"transform",
	"textDecoration",
	"textShadow",
	"fontSize",
	"fontWeight",
	"fontStyle",
	"letterSpacing",
	"filter",
	"visibility",
	"display",
	"content",
	"fill",
	"stroke",
}

var (
	fullSet    = makeSet(FullProperties)
	subtreeSet = makeSet(SubtreeProperties)
)

func makeSet(list []Property) map[Property]struct{} {
	m := make(map[Property]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return m
}

// InFullList reports whether p belongs to the full snapshot allow-list.
func InFullList(p Property) bool {
	_, ok := fullSet[p]
	return ok
}

// InSubtreeList reports whether p belongs to the subtree allow-list.
func InSubtreeList(p Property) bool {
	_, ok := subtreeSet[p]
	return ok
}

// CanonicalProperty converts a CSS property name to canonical camelCase:
// "background-color" → "backgroundColor". Names already in camelCase pass
// through unchanged.
func CanonicalProperty(name string) Property {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, "-") {
		return Property(name)
	}
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return Property(b.String())
}

// CSSName converts a canonical camelCase property back to its CSS
// kebab-case form: "backgroundColor" → "background-color".
func CSSName(p Property) string {
	var b strings.Builder
	b.Grow(len(p) + 4)
	for _, r := range string(p) {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsPlaceholder reports whether a resolved value carries no visual
// information. Placeholder values are omitted from snapshots.
func IsPlaceholder(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "none", "auto", "normal":
		return true
	}
	return false
}

// SubtreeKey builds the namespaced snapshot key for a sampled descendant or
// pseudo-element property: "span.label" + "color" → "span.label.color".
func SubtreeKey(path string, p Property) Property {
	return Property(path + "." + string(p))
}

// SplitKey splits a snapshot key into its descendant path and property.
// Plain element properties return ("", key). Property names contain no
// dots, so the final dot is the namespace boundary.
func SplitKey(k Property) (string, Property) {
	i := strings.LastIndex(string(k), ".")
	if i < 0 {
		return "", k
	}
	return string(k)[:i], Property(string(k)[i+1:])
}

// ValidSnapshotKey reports whether a stored key respects allow-list
// closure: plain keys must belong to the full list, namespaced keys must
// end in a subtree-list property.
func ValidSnapshotKey(k Property) bool {
	path, p := SplitKey(k)
	if path == "" {
		return InFullList(p)
	}
	return InSubtreeList(p)
}
