// Package track ships a default in-memory change tracker for the
// engine's Tracker capability: dirty-field bookkeeping with old-value
// snapshots since the last synchronization point.
package track

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/record"
)

// Tracker records which fields changed per record and the value each
// field held before its first change. Assumes the same single-threaded
// ownership model as the records it observes.
type Tracker struct {
	logger    *zap.Logger
	originals map[record.Identity]map[string]any
	dirty     map[record.Identity]map[string]struct{}
}

type Option func(*Tracker)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		logger:    zap.NewNop(),
		originals: make(map[record.Identity]map[string]any),
		dirty:     make(map[record.Identity]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WillChange snapshots the current value. Only the first snapshot per
// field is kept; the original survives repeated writes until Reset.
func (t *Tracker) WillChange(ctx context.Context, r *record.Record, field string) {
	id := r.Identity()
	if t.originals[id] == nil {
		t.originals[id] = make(map[string]any)
	}
	if _, ok := t.originals[id][field]; ok {
		return
	}
	v, _ := r.Value(field)
	t.originals[id][field] = v
}

// DidChange marks field dirty.
func (t *Tracker) DidChange(ctx context.Context, r *record.Record, field string) {
	id := r.Identity()
	if t.dirty[id] == nil {
		t.dirty[id] = make(map[string]struct{})
	}
	t.dirty[id][field] = struct{}{}
	t.logger.Debug("field changed",
		zap.String("class", id.Class),
		zap.String("id", id.ID),
		zap.String("field", field))
}

// Changed returns the sorted dirty field names for r.
func (t *Tracker) Changed(r *record.Record) []string {
	fields := make([]string, 0, len(t.dirty[r.Identity()]))
	for f := range t.dirty[r.Identity()] {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// IsDirty reports whether field changed since the last Reset.
func (t *Tracker) IsDirty(r *record.Record, field string) bool {
	_, ok := t.dirty[r.Identity()][field]
	return ok
}

// Original returns the value field held before its first change.
func (t *Tracker) Original(r *record.Record, field string) (any, bool) {
	v, ok := t.originals[r.Identity()][field]
	return v, ok
}

// Reset forgets all bookkeeping for r, e.g. after a successful save.
func (t *Tracker) Reset(r *record.Record) {
	delete(t.originals, r.Identity())
	delete(t.dirty, r.Identity())
}
