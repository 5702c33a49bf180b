package style

import "testing"

func TestSnapshotSetDropsPlaceholders(t *testing.T) {
	s := Snapshot{}
	s.Set("backgroundColor", "rgb(255, 0, 0)")
	s.Set("transform", "none")
	s.Set("boxShadow", "")

	if len(s) != 1 {
		t.Fatalf("got %d properties, want 1: %v", len(s), s)
	}
	if s["backgroundColor"] != "rgb(255, 0, 0)" {
		t.Errorf("backgroundColor: got %q", s["backgroundColor"])
	}
}

func TestSnapshotSetRemovesOnPlaceholder(t *testing.T) {
	s := Snapshot{"transform": "scale(1.1)"}
	s.Set("transform", "none")
	if _, ok := s["transform"]; ok {
		t.Error("placeholder write should remove the property")
	}
}

func TestSnapshotPruneEnforcesAllowList(t *testing.T) {
	s := Snapshot{
		"backgroundColor": "rgb(0, 0, 0)",
		"content":         `"→"`,
		"zIndex":          "10",
		"opacity":         "auto",
	}
	s.Prune(InFullList)

	if _, ok := s["zIndex"]; ok {
		t.Error("zIndex is outside the full allow-list and must be pruned")
	}
	if _, ok := s["content"]; ok {
		t.Error("content is outside the full allow-list and must be pruned")
	}
	if _, ok := s["opacity"]; ok {
		t.Error("placeholder value must be pruned")
	}
	if s["backgroundColor"] != "rgb(0, 0, 0)" {
		t.Errorf("backgroundColor lost: %v", s)
	}
}

func TestSnapshotCloneIndependent(t *testing.T) {
	a := Snapshot{"color": "rgb(1, 2, 3)"}
	b := a.Clone()
	b["color"] = "rgb(9, 9, 9)"
	if a["color"] != "rgb(1, 2, 3)" {
		t.Error("clone mutated the original")
	}

	var nilSnap Snapshot
	if got := nilSnap.Clone(); got == nil || len(got) != 0 {
		t.Errorf("nil clone: got %v, want empty", got)
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{"color": "red", "opacity": "0.5"}
	b := Snapshot{"opacity": "0.5", "color": "red"}
	if !a.Equal(b) {
		t.Error("identical snapshots reported unequal")
	}
	b["opacity"] = "1"
	if a.Equal(b) {
		t.Error("differing snapshots reported equal")
	}
	if a.Equal(Snapshot{"color": "red"}) {
		t.Error("snapshots of different size reported equal")
	}
}
