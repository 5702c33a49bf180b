package style

import "sort"

// Snapshot is a sparse mapping of allow-listed properties to their resolved
// values. Placeholder values (none, auto, normal, empty) are never stored.
// Snapshots are created per call and carry no persistent identity.
type Snapshot map[Property]string

// Set stores a value unless it is a placeholder, in which case the property
// is removed. Returns the snapshot for chaining.
func (s Snapshot) Set(p Property, value string) Snapshot {
	if IsPlaceholder(value) {
		delete(s, p)
		return s
	}
	s[p] = value
	return s
}

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Prune removes placeholder values and, when keep is non-nil, any property
// it rejects. Used at the extraction boundary to enforce allow-list closure.
func (s Snapshot) Prune(keep func(Property) bool) Snapshot {
	for k, v := range s {
		if IsPlaceholder(v) || (keep != nil && !keep(k)) {
			delete(s, k)
		}
	}
	return s
}

// Equal reports whether two snapshots hold exactly the same properties and
// values.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Properties returns the property names in sorted order, for deterministic
// iteration in summaries and tests.
func (s Snapshot) Properties() []Property {
	out := make([]Property, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
