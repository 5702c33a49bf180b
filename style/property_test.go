package style

import "testing"

func TestCanonicalProperty(t *testing.T) {
	cases := []struct {
		in   string
		want Property
	}{
		{"background-color", "backgroundColor"},
		{"backgroundColor", "backgroundColor"},
		{"color", "color"},
		{"outline-offset", "outlineOffset"},
		{" box-shadow ", "boxShadow"},
		{"border-top-left-radius", "borderTopLeftRadius"},
	}
	for _, c := range cases {
		if got := CanonicalProperty(c.in); got != c.want {
			t.Errorf("CanonicalProperty(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCSSName(t *testing.T) {
	cases := []struct {
		in   Property
		want string
	}{
		{"backgroundColor", "background-color"},
		{"color", "color"},
		{"outlineOffset", "outline-offset"},
	}
	for _, c := range cases {
		if got := CSSName(c.in); got != c.want {
			t.Errorf("CSSName(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	for _, p := range FullProperties {
		if got := CanonicalProperty(CSSName(p)); got != p {
			t.Errorf("round trip %q: got %q", p, got)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "none", "auto", "normal", "  none  "} {
		if !IsPlaceholder(v) {
			t.Errorf("IsPlaceholder(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"rgb(0, 0, 0)", "0px", "hidden", "nonexistent"} {
		if IsPlaceholder(v) {
			t.Errorf("IsPlaceholder(%q) = true, want false", v)
		}
	}
}

func TestSplitKey(t *testing.T) {
	cases := []struct {
		in       Property
		wantPath string
		wantProp Property
	}{
		{"backgroundColor", "", "backgroundColor"},
		{"span.label.color", "span.label", "color"},
		{"::before.content", "::before", "content"},
		{"svg.fill", "svg", "fill"},
	}
	for _, c := range cases {
		path, prop := SplitKey(c.in)
		if path != c.wantPath || prop != c.wantProp {
			t.Errorf("SplitKey(%q): got (%q, %q), want (%q, %q)",
				c.in, path, prop, c.wantPath, c.wantProp)
		}
	}
}

func TestValidSnapshotKey(t *testing.T) {
	valid := []Property{"backgroundColor", "span.label.color", "::before.content", "svg.icon.fill"}
	for _, k := range valid {
		if !ValidSnapshotKey(k) {
			t.Errorf("ValidSnapshotKey(%q) = false, want true", k)
		}
	}
	invalid := []Property{"zIndex", "span.label.zIndex", "content", "svg.transition"}
	for _, k := range invalid {
		if ValidSnapshotKey(k) {
			t.Errorf("ValidSnapshotKey(%q) = true, want false", k)
		}
	}
}

func TestAllowListMembership(t *testing.T) {
	if !InFullList("backgroundColor") {
		t.Error("backgroundColor should be in the full list")
	}
	if InFullList("content") {
		t.Error("content must not be in the full list")
	}
	for _, p := range []Property{"content", "fill", "stroke"} {
		if !InSubtreeList(p) {
			t.Errorf("%s should be in the subtree list", p)
		}
	}
	if InSubtreeList("transition") {
		t.Error("transition must not be in the subtree list")
	}
}
