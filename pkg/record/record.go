package record

import (
	"fmt"
	"sort"
)

// Identity names a remote object: class name plus id. The id is empty
// iff the object was created locally and never saved.
type Identity struct {
	Class string
	ID    string
}

func (i Identity) String() string {
	return fmt.Sprintf("%s/%s", i.Class, i.ID)
}

func (i Identity) IsZero() bool {
	return i.Class == "" && i.ID == ""
}

// Record is a local instance representing one remote object. Field
// values may be scalars, embedded *Record values, or *Reference values.
//
// A Record assumes single-threaded access; callers that share one
// instance across goroutines must serialize externally.
type Record struct {
	identity Identity
	fields   map[string]any
	state    FetchState
	known    map[string]struct{}
}

// NewUnfetched constructs a bare pointer: identity known, no fields.
func NewUnfetched(class, id string) *Record {
	return &Record{
		identity: Identity{Class: class, ID: id},
		fields:   make(map[string]any),
		state:    StateUnfetched,
	}
}

// NewSelective constructs a record from a partial materialization. The
// known set is taken from the keys of fields.
func NewSelective(class, id string, fields map[string]any) *Record {
	r := &Record{
		identity: Identity{Class: class, ID: id},
		fields:   make(map[string]any, len(fields)),
		state:    StateSelective,
		known:    make(map[string]struct{}, len(fields)),
	}
	for k, v := range fields {
		r.fields[k] = v
		r.known[k] = struct{}{}
	}
	return r
}

// NewFull constructs a record from a complete materialization.
func NewFull(class, id string, fields map[string]any) *Record {
	r := &Record{
		identity: Identity{Class: class, ID: id},
		fields:   make(map[string]any, len(fields)),
		state:    StateFull,
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

func (r *Record) Class() string      { return r.identity.Class }
func (r *Record) ID() string         { return r.identity.ID }
func (r *Record) Identity() Identity { return r.identity }
func (r *Record) State() FetchState  { return r.state }

// Value returns the raw cached value for field. It never triggers a
// fetch; resolution lives in the engine.
func (r *Record) Value(field string) (any, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// Set stores a raw value. Bookkeeping (known set, dirty tracking) is
// the engine's job.
func (r *Record) Set(field string, v any) {
	r.fields[field] = v
}

// Knows reports whether field is materialized from this record's point
// of view. On a Full record every declared field is known.
func (r *Record) Knows(field string) bool {
	switch r.state {
	case StateFull:
		return true
	case StateSelective:
		_, ok := r.known[field]
		return ok
	default:
		return false
	}
}

// FetchNeeded reports whether reading field requires a round trip to
// the remote store.
func (r *Record) FetchNeeded(field string) bool {
	switch r.state {
	case StateUnfetched:
		return true
	case StateSelective:
		return !r.Knows(field)
	default:
		return false
	}
}

// MarkKnown adds field to the selective known set. No-op unless the
// record is selective.
func (r *Record) MarkKnown(field string) {
	if r.state != StateSelective {
		return
	}
	r.known[field] = struct{}{}
}

// Known returns the sorted known field set of a selective record.
func (r *Record) Known() []string {
	keys := make([]string, 0, len(r.known))
	for k := range r.known {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetState transitions the fetch state. Moving backwards (e.g. Full to
// Unfetched) is rejected.
func (r *Record) SetState(to FetchState) error {
	next, err := r.state.transition(to)
	if err != nil {
		return err
	}
	if next == StateSelective && r.known == nil {
		r.known = make(map[string]struct{})
	}
	if next == StateFull {
		r.known = nil
	}
	r.state = next
	return nil
}

// Len returns the number of materialized fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Map returns a copy of the materialized fields.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		m[k] = v
	}
	return m
}
