package style

// Record is the per-element state matrix: one selector mapped to the
// snapshots captured or inferred for each interaction state. Origins track
// which source produced each state so live captures are never degraded by
// fallback inference.
type Record struct {
	Selector string             `json:"selector"`
	States   map[State]Snapshot `json:"states"`
	Origins  map[State]Origin   `json:"origins,omitempty"`
}

// NewRecord creates an empty record for a selector.
func NewRecord(selector string) *Record {
	return &Record{
		Selector: selector,
		States:   make(map[State]Snapshot),
		Origins:  make(map[State]Origin),
	}
}

// Apply merges one state snapshot into the record and reports whether it
// was applied. Later writes win, with one exception: a live-captured
// default is never overwritten by a fallback-derived one.
func (r *Record) Apply(state State, snap Snapshot, origin Origin) bool {
	if r.States == nil {
		r.States = make(map[State]Snapshot)
	}
	if r.Origins == nil {
		r.Origins = make(map[State]Origin)
	}
	if state == StateDefault && origin == OriginFallback && r.Origins[StateDefault] == OriginLive {
		return false
	}
	r.States[state] = snap.Clone()
	r.Origins[state] = origin
	return true
}

// Default returns the baseline snapshot, nil if default was never captured.
func (r *Record) Default() Snapshot {
	if r == nil || r.States == nil {
		return nil
	}
	return r.States[StateDefault]
}

// Clone returns an independent deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := NewRecord(r.Selector)
	for s, snap := range r.States {
		out.States[s] = snap.Clone()
	}
	for s, o := range r.Origins {
		out.Origins[s] = o
	}
	return out
}
