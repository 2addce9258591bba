package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/record"
)

// Resolve is the read path. Cached concrete values are returned with no
// network call. A fetch is required when the record is unfetched, or
// selectively fetched without the field in its known set; what happens
// then depends on the engine's policy. The fetch, when it occurs, is
// synchronous: Resolve blocks until it completes or fails.
func (e *Engine) Resolve(ctx context.Context, r *record.Record, field string) (any, error) {
	return e.ResolveWith(ctx, r, field, e.effectivePolicy())
}

// ResolveWith is Resolve under an explicit per-call policy.
func (e *Engine) ResolveWith(ctx context.Context, r *record.Record, field string, policy Policy) (any, error) {
	if !r.FetchNeeded(field) {
		v, _ := r.Value(field)
		return surface(v), nil
	}

	if policy == RaiseOnMissing {
		e.bump(func(s *Stats) { s.StrictMisses++ })
		return nil, &AutofetchError{
			Class:     r.Class(),
			ID:        r.ID(),
			Field:     field,
			IsPointer: r.State() == record.StateUnfetched,
		}
	}

	if err := e.fetch(ctx, r, field); err != nil {
		return nil, err
	}

	v, _ := r.Value(field)
	return surface(v), nil
}

// Materialize forces one full fetch of r and merges the response,
// regardless of policy. Convenience for callers that want the whole
// object rather than one field.
func (e *Engine) Materialize(ctx context.Context, r *record.Record) error {
	if e.fetcher == nil {
		return fmt.Errorf("materialize %s/%s: no fetcher configured", r.Class(), r.ID())
	}

	e.bump(func(s *Stats) { s.Fetches++ })

	res, err := e.fetcher.Fetch(ctx, r.Class(), r.ID(), nil)
	if err != nil {
		return fmt.Errorf("fetch %s/%s: %w", r.Class(), r.ID(), err)
	}
	return e.applyResult(ctx, r, res)
}

// fetch performs one blocking round trip for r and merges the response.
// Unfetched records request the full object; selective records request
// the specific missing column. Either way the collaborator may answer
// with more or less than asked, and the fetch state follows what
// actually came back.
func (e *Engine) fetch(ctx context.Context, r *record.Record, field string) error {
	if e.fetcher == nil {
		return fmt.Errorf("resolve %s/%s: no fetcher configured", r.Class(), r.ID())
	}

	var keys []string
	if r.State() == record.StateSelective {
		keys = []string{e.registry.ColumnFor(r.Class(), field)}
	}

	e.logger.Debug("autofetch",
		zap.String("class", r.Class()),
		zap.String("id", r.ID()),
		zap.String("field", field),
		zap.Strings("keys", keys))

	e.bump(func(s *Stats) { s.Fetches++ })

	res, err := e.fetcher.Fetch(ctx, r.Class(), r.ID(), keys)
	if err != nil {
		return fmt.Errorf("fetch %s/%s: %w", r.Class(), r.ID(), err)
	}

	return e.applyResult(ctx, r, res)
}

// applyResult merges a fetch response into r and advances the fetch
// state: Full when the collaborator answered with the complete object,
// Selective extended by the returned keys otherwise.
func (e *Engine) applyResult(ctx context.Context, r *record.Record, res *FetchResult) error {
	for column, v := range res.Fields {
		local := e.registry.FieldFor(r.Class(), column)
		if err := e.Assign(ctx, r, local, v, false); err != nil {
			return err
		}
	}

	if res.Keys == nil {
		return r.SetState(record.StateFull)
	}

	if r.State() == record.StateUnfetched {
		if err := r.SetState(record.StateSelective); err != nil {
			return err
		}
	}
	for _, column := range res.Keys {
		r.MarkKnown(e.registry.FieldFor(r.Class(), column))
	}
	return nil
}

// surface hides raw references from callers: reference-valued fields
// are observed as typed records, so a later read on the result either
// hits the embedded snapshot or triggers autofetch consistently.
func surface(v any) any {
	if ref, ok := v.(*record.Reference); ok {
		return ref.Materialize()
	}
	return v
}
