package workflow

import (
	"testing"

	"github.com/hazyhaar/stylewatch/matrix"
	"github.com/hazyhaar/stylewatch/style"
)

func TestForElementPlainDivOnlyCapturesDefault(t *testing.T) {
	ref := style.ElementRef{Selector: "div.box", Tag: "div"}

	p := ForElement(ref)
	if len(p.Steps) != 1 {
		t.Fatalf("plan has %d steps, want 1: %+v", len(p.Steps), p.Steps)
	}
	step := p.Steps[0]
	if step.Action != ActionCapture || step.State != style.StateDefault {
		t.Errorf("step = %+v, want a default capture", step)
	}
	if step.Request == nil || step.Request.Selector != "div.box" {
		t.Errorf("request = %+v", step.Request)
	}
}

func TestForElementFullAffordances(t *testing.T) {
	ref := style.ElementRef{Selector: "#save", Tag: "button", ID: "save"}

	p := ForElement(ref)
	wantActions := []Action{
		ActionCapture, ActionHover, ActionCapture,
		ActionFocus, ActionCapture, ActionBlur,
	}
	if len(p.Steps) != len(wantActions) {
		t.Fatalf("plan has %d steps, want %d: %+v", len(p.Steps), len(wantActions), p.Steps)
	}
	for i, want := range wantActions {
		got := p.Steps[i]
		if got.Action != want {
			t.Errorf("step %d action = %q, want %q", i, got.Action, want)
		}
		if got.Index != i+1 {
			t.Errorf("step %d index = %d, want %d", i, got.Index, i+1)
		}
		if want == ActionCapture && got.Request == nil {
			t.Errorf("capture step %d carries no request", i)
		}
		if want != ActionCapture && got.Request != nil {
			t.Errorf("interaction step %d carries a request: %+v", i, got.Request)
		}
	}
	if p.Steps[2].State != style.StateHover {
		t.Errorf("hover capture state = %q", p.Steps[2].State)
	}
	if p.Steps[4].State != style.StateFocus {
		t.Errorf("focus capture state = %q", p.Steps[4].State)
	}
}

func TestForElementHoverOnly(t *testing.T) {
	ref := style.ElementRef{Selector: "span.chip", Tag: "span", Cursor: "pointer"}

	p := ForElement(ref)
	wantActions := []Action{ActionCapture, ActionHover, ActionCapture, ActionBlur}
	if len(p.Steps) != len(wantActions) {
		t.Fatalf("plan = %+v", p.Steps)
	}
	for _, s := range p.Steps {
		if s.Action == ActionFocus {
			t.Error("focus step planned for a non-focusable element")
		}
	}
}

func TestForElementFocusOnly(t *testing.T) {
	ref := style.ElementRef{
		Selector: "div.cell", Tag: "div",
		Attrs: map[string]string{"tabindex": "0"},
	}

	p := ForElement(ref)
	wantActions := []Action{ActionCapture, ActionFocus, ActionCapture, ActionBlur}
	if len(p.Steps) != len(wantActions) {
		t.Fatalf("plan = %+v", p.Steps)
	}
	for _, s := range p.Steps {
		if s.Action == ActionHover {
			t.Error("hover step planned for a non-interactive element")
		}
	}
}

func TestForPagePrependsInventoryAndKeepsIndicesContiguous(t *testing.T) {
	refs := []style.ElementRef{
		{Selector: "#a", Tag: "button", ID: "a"},
		{Selector: "div.box", Tag: "div"},
	}

	p := ForPage(refs)
	if p.Steps[0].Action != ActionInventory {
		t.Fatalf("first step = %+v", p.Steps[0])
	}
	// 1 inventory + 6 for the button + 1 for the div.
	if len(p.Steps) != 8 {
		t.Fatalf("plan has %d steps: %+v", len(p.Steps), p.Steps)
	}
	for i, s := range p.Steps {
		if s.Index != i+1 {
			t.Errorf("step %d index = %d", i, s.Index)
		}
	}
}

func TestCaptureKeysRoundTripThroughSuffixInference(t *testing.T) {
	ref := style.ElementRef{Selector: ".btn.primary", Tag: "button"}

	for _, step := range ForElement(ref).Steps {
		if step.Request == nil {
			continue
		}
		if got := matrix.InferState(step.Request.Key); got != step.Request.State {
			t.Errorf("key %q infers %q, request says %q",
				step.Request.Key, got, step.Request.State)
		}
	}
}

func TestInteractive(t *testing.T) {
	tests := []struct {
		name string
		ref  style.ElementRef
		want bool
	}{
		{"button tag", style.ElementRef{Tag: "button"}, true},
		{"anchor tag", style.ElementRef{Tag: "a"}, true},
		{"aria button role", style.ElementRef{Tag: "div", Role: "button"}, true},
		{"pointer cursor", style.ElementRef{Tag: "div", Cursor: "pointer"}, true},
		{"onclick attr", style.ElementRef{Tag: "div", Attrs: map[string]string{"onclick": "go()"}}, true},
		{"plain div", style.ElementRef{Tag: "div"}, false},
		{"paragraph", style.ElementRef{Tag: "p", Cursor: "text"}, false},
		{"uppercase tag", style.ElementRef{Tag: "BUTTON"}, true},
	}
	for _, tt := range tests {
		if got := Interactive(tt.ref); got != tt.want {
			t.Errorf("%s: Interactive = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFocusable(t *testing.T) {
	tests := []struct {
		name string
		ref  style.ElementRef
		want bool
	}{
		{"input", style.ElementRef{Tag: "input"}, true},
		{"button", style.ElementRef{Tag: "button"}, true},
		{"anchor with href", style.ElementRef{Tag: "a", Attrs: map[string]string{"href": "/x"}}, true},
		{"anchor without href", style.ElementRef{Tag: "a"}, false},
		{"div with tabindex", style.ElementRef{Tag: "div", Attrs: map[string]string{"tabindex": "0"}}, true},
		{"tabindex -1 removed", style.ElementRef{Tag: "button", Attrs: map[string]string{"tabindex": "-1"}}, false},
		{"disabled control", style.ElementRef{Tag: "input", Attrs: map[string]string{"disabled": ""}}, false},
		{"contenteditable", style.ElementRef{Tag: "div", Attrs: map[string]string{"contenteditable": "true"}}, true},
		{"empty contenteditable", style.ElementRef{Tag: "div", Attrs: map[string]string{"contenteditable": ""}}, true},
		{"contenteditable false", style.ElementRef{Tag: "div", Attrs: map[string]string{"contenteditable": "false"}}, false},
		{"plain div", style.ElementRef{Tag: "div"}, false},
	}
	for _, tt := range tests {
		if got := Focusable(tt.ref); got != tt.want {
			t.Errorf("%s: Focusable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
