package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/record"
	"github.com/kordat/lazyref/pkg/registry"
)

// Assign is the write path. track distinguishes direct user mutation
// (true) from a merge originating in a network response (false); the
// two differ in how they treat existing data and whether the change
// tracker is involved.
//
// Incoming identity-shaped payloads are normalized into references
// using the declared association target (a class tag embedded in the
// payload wins). Values of the wrong type are dropped with a non-fatal
// diagnostic and the record is left untouched.
func (e *Engine) Assign(ctx context.Context, r *record.Record, field string, incoming any, track bool) error {
	if record.IsUnset(incoming) {
		return e.store(ctx, r, field, nil, track)
	}

	desc, declared := e.registry.Lookup(r.Class(), field)
	if !declared {
		// not an association: plain scalar assignment
		return e.store(ctx, r, field, incoming, track)
	}

	value, ok := normalize(incoming, desc)
	if !ok {
		e.bump(func(s *Stats) { s.AssignmentsDropped++ })
		e.diags.Emit(Diagnostic{
			Kind:   DiagInvalidAssignment,
			Class:  r.Class(),
			ID:     r.ID(),
			Field:  field,
			Detail: fmt.Sprintf("%T is not assignable to association target %s", incoming, desc.Target),
		})
		return nil
	}

	// Merge-preserve rule: a network merge delivering a bare pointer
	// must not clobber a same-identity reference that already carries
	// embedded data. User-directed reassignment (track) always wins.
	if !track && e.suppressed(r, field, value) {
		e.bump(func(s *Stats) { s.MergesSuppressed++ })
		e.logger.Debug("bare pointer merge suppressed",
			zap.String("class", r.Class()),
			zap.String("id", r.ID()),
			zap.String("field", field))
		return nil
	}

	return e.store(ctx, r, field, value, track)
}

func (e *Engine) suppressed(r *record.Record, field string, incoming any) bool {
	existing, ok := r.Value(field)
	if !ok {
		return false
	}
	existingRef, ok := existing.(*record.Reference)
	if !ok || !existingRef.HasData() {
		return false
	}
	incomingRef, ok := incoming.(*record.Reference)
	if !ok {
		return false
	}
	return !incomingRef.HasData() && incomingRef.Identity() == existingRef.Identity()
}

// store commits the value. On the tracked path the ordering contract is
// resolve-before-snapshot: any fetch the field still requires happens
// before the tracker's WillChange hook, so the hook's old-value capture
// cannot trigger a resolution whose own bookkeeping races the capture.
func (e *Engine) store(ctx context.Context, r *record.Record, field string, v any, track bool) error {
	if !track {
		r.Set(field, v)
		return nil
	}

	if r.FetchNeeded(field) && e.effectivePolicy() == Autofetch && e.fetcher != nil {
		if err := e.fetch(ctx, r, field); err != nil {
			return err
		}
	}

	e.tracker.WillChange(ctx, r, field)
	r.Set(field, v)
	// known-by-assignment: a later read must not fetch to "confirm" a
	// value the caller just supplied
	r.MarkKnown(field)
	e.tracker.DidChange(ctx, r, field)
	return nil
}

// normalize coerces incoming into a storable association value: nil, a
// reference, or a typed record.
func normalize(incoming any, desc registry.Descriptor) (any, bool) {
	switch v := incoming.(type) {
	case nil:
		return nil, true
	case *record.Reference:
		return v, true
	case *record.Record:
		return v, true
	default:
		if ref, ok := record.ReferenceFromPayload(incoming, desc.Target); ok {
			return ref, true
		}
		return nil, false
	}
}
