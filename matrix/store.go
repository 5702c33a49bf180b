// Package matrix is the session-lifetime state store: captured and
// inferred snapshots keyed by caller-chosen strings, folded on demand into
// per-selector state records. Stores are explicit objects created per
// session and passed by reference; there is no ambient global store.
package matrix

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hazyhaar/stylewatch/style"
)

// Entry is one stored snapshot. State may be empty, in which case
// AssembleMatrix infers it from the key suffix; Selector defaults to the
// key with any recognized state suffix removed.
type Entry struct {
	Key      string         `json:"key"`
	Selector string         `json:"selector"`
	State    style.State    `json:"state,omitempty"`
	Origin   style.Origin   `json:"origin"`
	Snapshot style.Snapshot `json:"snapshot"`
	StoredAt time.Time      `json:"stored_at"`
}

type stored struct {
	Entry
	seq uint64
}

// Store holds entries for one session. Writes are last-write-wins per key
// with no isolation guarantee between callers; the mutex only keeps the
// map safe under the overlapping MCP/HTTP surfaces, it adds no ordering.
type Store struct {
	mu      sync.RWMutex
	entries map[string]stored
	nextSeq uint64
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]stored),
		now:     time.Now,
	}
}

// Put inserts or replaces the entry under its key, stamping the insertion
// time. Unknown explicit states are rejected; everything else is accepted
// as-is.
func (s *Store) Put(e Entry) (Entry, error) {
	if e.Key == "" {
		return Entry{}, fmt.Errorf("matrix: put: empty key")
	}
	if e.State != "" && !style.KnownState(e.State) {
		return Entry{}, fmt.Errorf("matrix: put %q: unknown state %q", e.Key, e.State)
	}
	if e.Origin == "" {
		e.Origin = style.OriginLive
	}
	if e.Selector == "" {
		base, _ := SplitKeyState(e.Key)
		e.Selector = base
	}
	e.Snapshot = e.Snapshot.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	e.StoredAt = s.now()
	s.nextSeq++
	s.entries[e.Key] = stored{Entry: e, seq: s.nextSeq}
	return e, nil
}

// Get returns a copy of the entry under key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	e := st.Entry
	e.Snapshot = e.Snapshot.Clone()
	return e, true
}

// All returns copies of every entry in insertion order.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]stored, 0, len(s.entries))
	for _, st := range s.entries {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	entries := make([]Entry, len(out))
	for i, st := range out {
		entries[i] = st.Entry
		entries[i].Snapshot = st.Snapshot.Clone()
	}
	return entries
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset empties the store. The only way entries disappear before the
// session ends.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]stored)
}

// AssembleMatrix folds all entries into per-selector records, keyed by
// selector. Entries merge state-by-state in insertion order, so later
// writes win on conflicts, with one exception enforced by the record: a
// live-captured default survives fallback-derived defaults. Entries
// without an explicit state get one inferred from their key suffix.
func (s *Store) AssembleMatrix() map[string]*style.Record {
	out := make(map[string]*style.Record)
	for _, e := range s.All() {
		st := e.State
		if st == "" {
			_, st = SplitKeyState(e.Key)
		}
		rec, ok := out[e.Selector]
		if !ok {
			rec = style.NewRecord(e.Selector)
			out[e.Selector] = rec
		}
		rec.Apply(st, e.Snapshot, e.Origin)
	}
	return out
}
