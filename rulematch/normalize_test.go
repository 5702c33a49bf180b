package rulematch

import "testing"

func TestNormalizeValueCommaSpacing(t *testing.T) {
	cases := []struct{ in, want string }{
		{"rgb(255,0,0)", "rgb(255, 0, 0)"},
		{"rgb(255, 0, 0)", "rgb(255, 0, 0)"},
		{"rgba(0,0,0,0.5)", "rgba(0, 0, 0, 0.5)"},
		{"rgb(255,   0,0)", "rgb(255, 0, 0)"},
	}
	for _, c := range cases {
		if got := NormalizeValue("backgroundColor", c.in); got != c.want {
			t.Errorf("NormalizeValue(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeValueHexColors(t *testing.T) {
	cases := []struct{ in, want string }{
		{"#ff0000", "rgb(255, 0, 0)"},
		{"#F00", "rgb(255, 0, 0)"},
		{"#00ff0080", "rgba(0, 255, 0, 0.502)"},
		{"#ffffffff", "rgb(255, 255, 255)"},
	}
	for _, c := range cases {
		if got := NormalizeValue("color", c.in); got != c.want {
			t.Errorf("NormalizeValue(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeValueNamedColors(t *testing.T) {
	if got := NormalizeValue("color", "red"); got != "rgb(255, 0, 0)" {
		t.Errorf("red: got %q", got)
	}
	if got := NormalizeValue("color", "Transparent"); got != "rgba(0, 0, 0, 0)" {
		t.Errorf("transparent: got %q", got)
	}
	// Non-color properties keep keywords as written.
	if got := NormalizeValue("fontWeight", "bold"); got != "bold" {
		t.Errorf("bold: got %q", got)
	}
	// Unknown keywords pass through on color properties too.
	if got := NormalizeValue("color", "rebeccapurple"); got != "rebeccapurple" {
		t.Errorf("rebeccapurple: got %q", got)
	}
}

func TestNormalizeValueImportantStripped(t *testing.T) {
	if got := NormalizeValue("color", "red !important"); got != "rgb(255, 0, 0)" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeValue("fontFamily", "Arial,sans-serif !IMPORTANT"); got != "Arial, sans-serif" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeValueWhitespaceCollapse(t *testing.T) {
	if got := NormalizeValue("boxShadow", "0  2px   4px\trgba(0,0,0,0.2)"); got != "0 2px 4px rgba(0, 0, 0, 0.2)" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeValueQuotedContentUntouched(t *testing.T) {
	in := `"a,  b"`
	if got := NormalizeValue("fontFamily", in); got != in {
		t.Errorf("quoted text rewritten: got %q, want %q", got, in)
	}
}

func TestFormatAlpha(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{255, "1"},
		{0, "0"},
		{128, "0.502"},
		{51, "0.2"},
	}
	for _, c := range cases {
		if got := formatAlpha(c.in); got != c.want {
			t.Errorf("formatAlpha(%d): got %q, want %q", c.in, got, c.want)
		}
	}
}
