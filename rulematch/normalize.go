package rulematch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/stylewatch/style"
)

// colorProps are the properties whose whole value is a single color and
// may be rewritten into rgb()/rgba() form.
var colorProps = map[style.Property]struct{}{
	"backgroundColor": {},
	"color":           {},
	"borderColor":     {},
	"outlineColor":    {},
	"fill":            {},
	"stroke":          {},
}

// namedColors covers the basic CSS keywords. Anything outside this table
// passes through unchanged.
var namedColors = map[string]string{
	"black":       "rgb(0, 0, 0)",
	"white":       "rgb(255, 255, 255)",
	"red":         "rgb(255, 0, 0)",
	"lime":        "rgb(0, 255, 0)",
	"blue":        "rgb(0, 0, 255)",
	"yellow":      "rgb(255, 255, 0)",
	"cyan":        "rgb(0, 255, 255)",
	"aqua":        "rgb(0, 255, 255)",
	"magenta":     "rgb(255, 0, 255)",
	"fuchsia":     "rgb(255, 0, 255)",
	"silver":      "rgb(192, 192, 192)",
	"gray":        "rgb(128, 128, 128)",
	"grey":        "rgb(128, 128, 128)",
	"maroon":      "rgb(128, 0, 0)",
	"olive":       "rgb(128, 128, 0)",
	"green":       "rgb(0, 128, 0)",
	"navy":        "rgb(0, 0, 128)",
	"teal":        "rgb(0, 128, 128)",
	"purple":      "rgb(128, 0, 128)",
	"orange":      "rgb(255, 165, 0)",
	"transparent": "rgba(0, 0, 0, 0)",
}

// NormalizeValue rewrites an authored declaration value toward the form a
// rendering engine reports for resolved styles, so fallback-derived
// snapshots are comparable with live captures: "rgb(255,0,0)" becomes
// "rgb(255, 0, 0)", hex and basic color keywords become rgb(). Full
// computed-value resolution (lengths, var(), calc()) is out of scope.
func NormalizeValue(p style.Property, raw string) string {
	v := strings.TrimSpace(raw)
	if i := strings.Index(strings.ToLower(v), "!important"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	v = collapseSpaces(v)
	v = spaceCommas(v)

	if _, ok := colorProps[p]; ok {
		if c := canonicalColor(v); c != "" {
			return c
		}
	}
	return v
}

// collapseSpaces reduces whitespace runs to single spaces outside quotes.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote byte
	pending := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		if c == '"' || c == '\'' {
			quote = c
		}
		b.WriteByte(c)
	}
	return b.String()
}

// spaceCommas ensures exactly one space after each comma outside quotes.
func spaceCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
			b.WriteByte(c)
		case ',':
			b.WriteByte(',')
			b.WriteByte(' ')
			for i+1 < len(s) && s[i+1] == ' ' {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// canonicalColor converts a whole-value color (hex or basic keyword) to
// rgb()/rgba(). Returns "" when the value is not a convertible color.
func canonicalColor(v string) string {
	lower := strings.ToLower(v)
	if c, ok := namedColors[lower]; ok {
		return c
	}
	if !strings.HasPrefix(lower, "#") {
		return ""
	}
	hex := lower[1:]
	switch len(hex) {
	case 3:
		r, g, b, ok := hexNibbles(hex)
		if !ok {
			return ""
		}
		return fmt.Sprintf("rgb(%d, %d, %d)", r*17, g*17, b*17)
	case 6:
		r, okR := hexByte(hex[0:2])
		g, okG := hexByte(hex[2:4])
		b, okB := hexByte(hex[4:6])
		if !okR || !okG || !okB {
			return ""
		}
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	case 8:
		r, okR := hexByte(hex[0:2])
		g, okG := hexByte(hex[2:4])
		b, okB := hexByte(hex[4:6])
		a, okA := hexByte(hex[6:8])
		if !okR || !okG || !okB || !okA {
			return ""
		}
		if a == 255 {
			return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(a))
	}
	return ""
}

func hexNibbles(s string) (r, g, b int64, ok bool) {
	var vals [3]int64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseInt(s[i:i+1], 16, 32)
		if err != nil {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], true
}

func hexByte(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

// formatAlpha renders an 8-bit alpha the way rendering engines do: up to
// three decimals, trailing zeros trimmed.
func formatAlpha(a int64) string {
	if a == 255 {
		return "1"
	}
	if a == 0 {
		return "0"
	}
	s := strconv.FormatFloat(float64(a)/255, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
