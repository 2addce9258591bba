package registry

import (
	"context"
	"fmt"

	"github.com/kordat/lazyref/pkg/record"
)

// Resolver is the read/write entry point pair the accessors bind to.
// Implemented by the engine.
type Resolver interface {
	Resolve(ctx context.Context, r *record.Record, field string) (any, error)
	Assign(ctx context.Context, r *record.Record, field string, v any, track bool) error
}

// Association declares one reference-valued field on a model.
type Association struct {
	Field        string
	Target       string
	RemoteColumn string
}

// Model is a class with its declared associations and the per-field
// accessors built at registration time.
type Model struct {
	Class string

	registry *Registry
}

// RegisterModel declares a class and its associations in one call. A
// failed association registration fails the whole call; associations
// registered before the failure stay registered.
func (r *Registry) RegisterModel(class string, assocs ...Association) (*Model, error) {
	for _, a := range assocs {
		if err := r.Register(class, a.Field, a.Target, a.RemoteColumn); err != nil {
			return nil, fmt.Errorf("register model %s: %w", class, err)
		}
	}
	return &Model{Class: class, registry: r}, nil
}

// Accessor is the thin per-field read/write pair. Ordinary attribute
// access in the embedding application goes through Get and Set; both
// delegate to the engine's explicit entry points.
type Accessor struct {
	field    string
	resolver Resolver
}

// Accessor returns the accessor pair for a declared field, bound to the
// given resolver.
func (m *Model) Accessor(field string, resolver Resolver) (Accessor, bool) {
	if _, ok := m.registry.Lookup(m.Class, field); !ok {
		return Accessor{}, false
	}
	return Accessor{field: field, resolver: resolver}, true
}

// Get reads the field through the engine's read path. May trigger an
// autofetch depending on policy.
func (a Accessor) Get(ctx context.Context, r *record.Record) (any, error) {
	return a.resolver.Resolve(ctx, r, a.field)
}

// Set writes the field through the engine's write path with dirty
// tracking enabled.
func (a Accessor) Set(ctx context.Context, r *record.Record, v any) error {
	return a.resolver.Assign(ctx, r, a.field, v, true)
}
