package style

import "testing"

func TestAttrDistinguishesEmptyFromAbsent(t *testing.T) {
	ref := ElementRef{Attrs: map[string]string{
		"contenteditable": "",
		"tabindex":        "0",
	}}

	if v, ok := ref.Attr("contenteditable"); !ok || v != "" {
		t.Errorf("Attr(contenteditable) = %q, %v, want empty present", v, ok)
	}
	if v, ok := ref.Attr("tabindex"); !ok || v != "0" {
		t.Errorf("Attr(tabindex) = %q, %v, want \"0\" present", v, ok)
	}
	if v, ok := ref.Attr("href"); ok || v != "" {
		t.Errorf("Attr(href) = %q, %v, want absent", v, ok)
	}
}

func TestAttrNilMap(t *testing.T) {
	var ref ElementRef
	if v, ok := ref.Attr("tabindex"); ok || v != "" {
		t.Errorf("Attr on nil map = %q, %v, want absent", v, ok)
	}
	if ref.HasAttr("tabindex") {
		t.Error("HasAttr on nil map = true, want false")
	}
}

func TestRectArea(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want float64
	}{
		{"normal box", Rect{Width: 10, Height: 4}, 40},
		{"zero width", Rect{Width: 0, Height: 4}, 0},
		{"negative height", Rect{Width: 10, Height: -1}, 0},
	}
	for _, tt := range tests {
		if got := tt.rect.Area(); got != tt.want {
			t.Errorf("%s: Area = %v, want %v", tt.name, got, tt.want)
		}
	}
}
