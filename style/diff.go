package style

import "sort"

// Change is one property-level difference. A nil From means the property
// was absent in the baseline; a nil To means it disappeared. Pointers keep
// the absent side as JSON null rather than an empty string.
type Change struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// Diff maps each changed property to its from/to pair. Properties whose
// value is identical on both sides never appear.
type Diff map[Property]Change

// Compute returns the property-level differences between two snapshots.
// It is pure and total: nil inputs are treated as empty snapshots, and
// missing-vs-present counts as a difference.
func Compute(from, to Snapshot) Diff {
	d := make(Diff)
	for p, fv := range from {
		tv, ok := to[p]
		if !ok {
			d[p] = Change{From: strptr(fv)}
			continue
		}
		if tv != fv {
			d[p] = Change{From: strptr(fv), To: strptr(tv)}
		}
	}
	for p, tv := range to {
		if _, ok := from[p]; !ok {
			d[p] = Change{To: strptr(tv)}
		}
	}
	return d
}

// Properties returns the changed property names in sorted order.
func (d Diff) Properties() []Property {
	out := make([]Property, 0, len(d))
	for p := range d {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func strptr(s string) *string { return &s }
