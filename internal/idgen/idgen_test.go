package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7Unique(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen()
		if len(id) != 36 {
			t.Fatalf("id %q: unexpected length %d", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("ses_", Default)
	id := gen()
	if !strings.HasPrefix(id, "ses_") {
		t.Fatalf("id %q missing prefix", id)
	}
	if len(id) != len("ses_")+36 {
		t.Fatalf("id %q: unexpected length", id)
	}
}
