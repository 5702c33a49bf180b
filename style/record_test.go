package style

import "testing"

func TestRecordApplyLastWriteWins(t *testing.T) {
	r := NewRecord(".btn")
	r.Apply(StateHover, Snapshot{"color": "red"}, OriginFallback)
	r.Apply(StateHover, Snapshot{"color": "blue"}, OriginFallback)

	if got := r.States[StateHover]["color"]; got != "blue" {
		t.Errorf("hover color: got %q, want %q", got, "blue")
	}
}

func TestRecordLiveDefaultProtected(t *testing.T) {
	r := NewRecord(".btn")
	live := Snapshot{"backgroundColor": "rgb(0, 0, 0)"}
	if !r.Apply(StateDefault, live, OriginLive) {
		t.Fatal("live default apply rejected")
	}

	fallback := Snapshot{"backgroundColor": "rgb(9, 9, 9)"}
	if r.Apply(StateDefault, fallback, OriginFallback) {
		t.Error("fallback default overwrote a live default")
	}
	if got := r.States[StateDefault]["backgroundColor"]; got != "rgb(0, 0, 0)" {
		t.Errorf("default backgroundColor: got %q, want live value", got)
	}

	// Non-default states stay last-write-wins regardless of origin.
	r.Apply(StateHover, Snapshot{"color": "red"}, OriginLive)
	if !r.Apply(StateHover, Snapshot{"color": "blue"}, OriginFallback) {
		t.Error("fallback hover apply rejected; only default is protected")
	}
}

func TestRecordFallbackDefaultUpgradedByLive(t *testing.T) {
	r := NewRecord(".btn")
	r.Apply(StateDefault, Snapshot{"color": "red"}, OriginFallback)
	if !r.Apply(StateDefault, Snapshot{"color": "blue"}, OriginLive) {
		t.Fatal("live default must replace a fallback default")
	}
	if got := r.Origins[StateDefault]; got != OriginLive {
		t.Errorf("origin: got %q, want %q", got, OriginLive)
	}
}

func TestRecordApplyClones(t *testing.T) {
	r := NewRecord(".btn")
	snap := Snapshot{"color": "red"}
	r.Apply(StateDefault, snap, OriginLive)
	snap["color"] = "mutated"

	if got := r.States[StateDefault]["color"]; got != "red" {
		t.Errorf("record shares caller's map: got %q", got)
	}
}

func TestRecordCloneIndependent(t *testing.T) {
	r := NewRecord(".btn")
	r.Apply(StateDefault, Snapshot{"color": "red"}, OriginLive)
	c := r.Clone()
	c.States[StateDefault]["color"] = "blue"

	if got := r.States[StateDefault]["color"]; got != "red" {
		t.Errorf("clone mutated original: got %q", got)
	}
}
