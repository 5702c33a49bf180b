package style

// State names an interaction state of an element. StateDefault is always
// the diff baseline; the rest correspond to the pseudo-classes the fallback
// matcher understands and the states a driver can trigger.
type State string

const (
	StateDefault      State = "default"
	StateHover        State = "hover"
	StateActive       State = "active"
	StateFocus        State = "focus"
	StateFocusVisible State = "focusVisible"
	StateFocusWithin  State = "focusWithin"
	StateDisabled     State = "disabled"
	StateChecked      State = "checked"
	StateInvalid      State = "invalid"
)

// States returns the fixed state vocabulary, default first.
func States() []State {
	return []State{
		StateDefault,
		StateHover,
		StateActive,
		StateFocus,
		StateFocusVisible,
		StateFocusWithin,
		StateDisabled,
		StateChecked,
		StateInvalid,
	}
}

// KnownState reports whether s belongs to the fixed vocabulary.
func KnownState(s State) bool {
	for _, k := range States() {
		if s == k {
			return true
		}
	}
	return false
}

// Origin records which information source produced a stored state snapshot.
// Live captures are authoritative; fallback inference is approximate.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginFallback Origin = "fallback"
)
