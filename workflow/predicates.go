package workflow

import (
	"strings"

	"github.com/hazyhaar/stylewatch/style"
)

// interactiveTags are pointer-reachable by nature.
var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true,
	"textarea": true, "label": true, "summary": true, "option": true,
}

// interactiveRoles are ARIA roles that advertise pointer interaction.
var interactiveRoles = map[string]bool{
	"button": true, "link": true, "checkbox": true, "radio": true,
	"switch": true, "tab": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "option": true, "combobox": true,
	"slider": true, "spinbutton": true, "searchbox": true, "textbox": true,
}

// focusableTags take keyboard focus without needing a tabindex.
var focusableTags = map[string]bool{
	"input": true, "select": true, "textarea": true, "button": true,
	"summary": true,
}

// Interactive reports whether the element looks pointer-reachable: an
// interactive tag or role, a pointer cursor, or a click handler wired in
// markup. Disabled controls still count, since hover rules keep matching
// them.
func Interactive(ref style.ElementRef) bool {
	if interactiveTags[strings.ToLower(ref.Tag)] {
		return true
	}
	if interactiveRoles[strings.ToLower(ref.Role)] {
		return true
	}
	if strings.ToLower(ref.Cursor) == "pointer" {
		return true
	}
	if ref.HasAttr("onclick") {
		return true
	}
	return false
}

// Focusable reports whether the element looks keyboard-reachable. A
// disabled control is not, whatever its tag says; a tabindex of "-1"
// removes an element from the tab order.
func Focusable(ref style.ElementRef) bool {
	if ref.HasAttr("disabled") {
		return false
	}
	if ti, ok := ref.Attr("tabindex"); ok {
		return strings.TrimSpace(ti) != "-1"
	}
	tag := strings.ToLower(ref.Tag)
	if focusableTags[tag] {
		return true
	}
	if tag == "a" {
		return ref.HasAttr("href")
	}
	if ce, ok := ref.Attr("contenteditable"); ok {
		v := strings.ToLower(strings.TrimSpace(ce))
		return v == "" || v == "true" || v == "plaintext-only"
	}
	return false
}
