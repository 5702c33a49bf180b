package matrix

import (
	"strings"

	"github.com/hazyhaar/stylewatch/style"
)

// suffixStates maps lowercased key suffixes to states. Two-segment
// suffixes ("focus-visible") are looked up with the separator removed, so
// one table covers "btn-focus-visible", "btn_focusVisible" and ".btn:focus".
var suffixStates = map[string]style.State{
	"default":      style.StateDefault,
	"hover":        style.StateHover,
	"active":       style.StateActive,
	"focus":        style.StateFocus,
	"focusvisible": style.StateFocusVisible,
	"focuswithin":  style.StateFocusWithin,
	"disabled":     style.StateDisabled,
	"checked":      style.StateChecked,
	"invalid":      style.StateInvalid,
}

func isKeySep(r rune) bool {
	switch r {
	case '-', '_', '.', ':', '@', '/', ' ':
		return true
	}
	return false
}

// SplitKeyState splits a store key into a base selector and the state
// named by its suffix, if any. Only whole trailing segments count:
// "btn-hover" infers hover, "btn-shover" does not. Keys that are nothing
// but a state name are returned unchanged so the selector never goes
// empty.
func SplitKeyState(key string) (string, style.State) {
	type span struct{ start, end int }
	var segs []span
	start := -1
	for i, r := range key {
		if isKeySep(r) {
			if start >= 0 {
				segs = append(segs, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		segs = append(segs, span{start, len(key)})
	}
	if len(segs) < 2 {
		// A bare state name has no base, so it stays a plain key.
		return key, style.StateDefault
	}

	base := func(cut int) string {
		b := strings.TrimRightFunc(key[:cut], isKeySep)
		if b == "" {
			return key
		}
		return b
	}

	// Longest suffix first: "focus-visible" before "visible" would ever
	// be consulted, and before the single-segment "focus".
	last := segs[len(segs)-1]
	prev := segs[len(segs)-2]
	two := strings.ToLower(key[prev.start:prev.end] + key[last.start:last.end])
	if st, ok := suffixStates[two]; ok {
		return base(prev.start), st
	}
	one := strings.ToLower(key[last.start:last.end])
	if st, ok := suffixStates[one]; ok {
		return base(last.start), st
	}
	return key, style.StateDefault
}

// InferState reports the state a key's suffix names, or the default state
// when the suffix is not a state name.
func InferState(key string) style.State {
	_, st := SplitKeyState(key)
	return st
}
