// Package workflow plans interaction sequences for an external driver.
// A plan alternates page interactions (hover, focus, blur) with capture
// calls back into this module; the planner itself never touches the page,
// the steps are advisory and the driver may skip or reorder them.
package workflow

import (
	"fmt"

	"github.com/hazyhaar/stylewatch/style"
)

// Action tags what kind of step this is.
type Action string

const (
	ActionInventory Action = "inventory"
	ActionCapture   Action = "capture"
	ActionHover     Action = "hover"
	ActionFocus     Action = "focus"
	ActionBlur      Action = "blur"
)

// CaptureRequest carries ready-to-use parameters for the capture entry
// point. Only capture steps have one; interaction steps are descriptive
// because the driver contract is not an RPC protocol.
type CaptureRequest struct {
	Selector string      `json:"selector"`
	State    style.State `json:"state"`
	Key      string      `json:"key"`
}

// Step is one planned action. Indices are contiguous and start at 1.
type Step struct {
	Index       int             `json:"index"`
	Action      Action          `json:"action"`
	Selector    string          `json:"selector,omitempty"`
	State       style.State     `json:"state,omitempty"`
	Instruction string          `json:"instruction"`
	Request     *CaptureRequest `json:"request,omitempty"`
}

// Plan is an ordered step sequence for one or more elements.
type Plan struct {
	Steps []Step `json:"steps"`
}

func (p *Plan) add(s Step) {
	s.Index = len(p.Steps) + 1
	p.Steps = append(p.Steps, s)
}

func (p *Plan) capture(ref style.ElementRef, st style.State, instruction string) {
	p.add(Step{
		Action:      ActionCapture,
		Selector:    ref.Selector,
		State:       st,
		Instruction: instruction,
		Request: &CaptureRequest{
			Selector: ref.Selector,
			State:    st,
			Key:      keyFor(ref, st),
		},
	})
}

// ForElement plans the capture sequence for one element: the resting
// capture always, then hover and focus rounds gated by the element's
// affordances, then a blur to restore the page when anything was
// triggered.
func ForElement(ref style.ElementRef) Plan {
	var p Plan
	p.forElement(ref)
	return p
}

func (p *Plan) forElement(ref style.ElementRef) {
	label := labelFor(ref)
	p.capture(ref, style.StateDefault,
		fmt.Sprintf("Capture the resting style of %s before any interaction.", label))

	touched := false
	if Interactive(ref) {
		p.add(Step{
			Action:      ActionHover,
			Selector:    ref.Selector,
			State:       style.StateHover,
			Instruction: fmt.Sprintf("Move the pointer over %s and keep it there.", label),
		})
		p.capture(ref, style.StateHover,
			"Wait roughly 100ms for transitions to settle, then capture the hovered style.")
		touched = true
	}
	if Focusable(ref) {
		p.add(Step{
			Action:      ActionFocus,
			Selector:    ref.Selector,
			State:       style.StateFocus,
			Instruction: fmt.Sprintf("Give %s keyboard focus, by tabbing to it or clicking it.", label),
		})
		p.capture(ref, style.StateFocus, "Capture the focused style.")
		touched = true
	}
	if touched {
		p.add(Step{
			Action:      ActionBlur,
			Selector:    ref.Selector,
			Instruction: fmt.Sprintf("Blur %s and move the pointer away to restore the resting state.", label),
		})
	}
}

// ForElements concatenates per-element plans with contiguous indices.
func ForElements(refs []style.ElementRef) Plan {
	var p Plan
	for _, ref := range refs {
		p.forElement(ref)
	}
	return p
}

// ForPage opens with an inventory step, then plans every given element.
// Call with no refs to get just the inventory prompt.
func ForPage(refs []style.ElementRef) Plan {
	var p Plan
	p.add(Step{
		Action:      ActionInventory,
		Instruction: "List the page's interactive elements and choose the targets worth capturing.",
	})
	for _, ref := range refs {
		p.forElement(ref)
	}
	return p
}

// labelFor names the element in instructions, shortest stable handle
// first.
func labelFor(ref style.ElementRef) string {
	switch {
	case ref.ID != "":
		return "#" + ref.ID
	case ref.Selector != "":
		return ref.Selector
	case ref.Tag != "":
		return "<" + ref.Tag + ">"
	}
	return "the element"
}

// keyFor builds the store key a capture under this plan should use. The
// suffix matches the store's inference vocabulary, so keyed entries land
// under the right state even when stored without an explicit one.
func keyFor(ref style.ElementRef, st style.State) string {
	base := ref.Selector
	if ref.ID != "" {
		base = "#" + ref.ID
	}
	if base == "" {
		base = ref.Tag
	}
	return base + "-" + string(st)
}
