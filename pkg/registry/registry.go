package registry

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrRegistrationConflict is returned when association metadata is
// re-registered with a conflicting target or remote column. Prior
// metadata is always retained unchanged.
var ErrRegistrationConflict = errors.New("association registration conflict")

// Descriptor is the immutable per (class, field) association metadata:
// the target class and the remote column name, which may differ from
// the local field name.
type Descriptor struct {
	Class        string
	Field        string
	Target       string
	RemoteColumn string
}

// Registry maps local association fields to their descriptors. Write
// once per field; registration is idempotent, conflicts are rejected
// with a diagnostic and leave prior state intact.
type Registry struct {
	mu       sync.RWMutex
	byField  map[string]Descriptor
	byColumn map[string]string // class/column -> field

	logger *zap.Logger
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		byField:  make(map[string]Descriptor),
		byColumn: make(map[string]string),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func key(class, name string) string {
	return class + "/" + name
}

// Register declares an association on class. remoteColumn defaults to
// the field name. Registering the exact same descriptor twice is a
// no-op; a conflicting re-registration or a remote column already
// aliased by a different field fails with ErrRegistrationConflict.
func (r *Registry) Register(class, field, target, remoteColumn string) error {
	if remoteColumn == "" {
		remoteColumn = field
	}
	desc := Descriptor{
		Class:        class,
		Field:        field,
		Target:       target,
		RemoteColumn: remoteColumn,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byField[key(class, field)]; ok {
		if prev == desc {
			return nil
		}
		r.logger.Warn("conflicting association registration",
			zap.String("class", class),
			zap.String("field", field),
			zap.String("existing_target", prev.Target),
			zap.String("target", target))
		return fmt.Errorf("%s.%s already registered with target %s: %w",
			class, field, prev.Target, ErrRegistrationConflict)
	}

	if owner, ok := r.byColumn[key(class, remoteColumn)]; ok && owner != field {
		r.logger.Warn("remote column already aliased",
			zap.String("class", class),
			zap.String("column", remoteColumn),
			zap.String("owner", owner))
		return fmt.Errorf("column %s on %s already aliased by field %s: %w",
			remoteColumn, class, owner, ErrRegistrationConflict)
	}

	r.byField[key(class, field)] = desc
	r.byColumn[key(class, remoteColumn)] = field
	return nil
}

// Lookup returns the descriptor for (class, field).
func (r *Registry) Lookup(class, field string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byField[key(class, field)]
	return d, ok
}

// FieldFor translates a remote column name back to the local field
// name. Unmapped columns translate to themselves.
func (r *Registry) FieldFor(class, column string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.byColumn[key(class, column)]; ok {
		return f
	}
	return column
}

// ColumnFor translates a local field name to its remote column name.
func (r *Registry) ColumnFor(class, field string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.byField[key(class, field)]; ok {
		return d.RemoteColumn
	}
	return field
}

// Associations returns the descriptors declared on class.
func (r *Registry) Associations(class string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Descriptor
	for _, d := range r.byField {
		if d.Class == class {
			out = append(out, d)
		}
	}
	return out
}
