package style

// Rect is an element's border box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area, zero for degenerate boxes.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// ElementRef is a reconstructable locator for one element plus the
// descriptive facts the planner predicates need. It is never a live handle:
// the hosting environment re-resolves the selector on every use.
type ElementRef struct {
	Selector  string            `json:"selector"`
	Tag       string            `json:"tag"`
	Rect      Rect              `json:"rect"`
	ID        string            `json:"id,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	Role      string            `json:"role,omitempty"`
	AriaLabel string            `json:"aria_label,omitempty"`
	Text      string            `json:"text,omitempty"`      // trimmed, truncated visible text
	Cursor    string            `json:"cursor,omitempty"`    // resolved cursor style
	Attrs     map[string]string `json:"attrs,omitempty"`     // sparse: href, tabindex, disabled, type, contenteditable, onclick
}

// Attr returns the named attribute and whether it is present. Presence
// matters: an empty contenteditable is focusable, an absent one is not.
func (e ElementRef) Attr(name string) (string, bool) {
	if e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[name]
	return v, ok
}

// HasAttr reports attribute presence regardless of value.
func (e ElementRef) HasAttr(name string) bool {
	if e.Attrs == nil {
		return false
	}
	_, ok := e.Attrs[name]
	return ok
}
