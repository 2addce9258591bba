// Package engine implements lazy reference resolution and
// selective-fetch reconciliation for records of a remote document
// store. The read path (Resolve) decides when a missing field triggers
// a network fetch; the write path (Assign) decides when an incoming
// value may overwrite cached data.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/registry"
)

// Policy governs what happens when a field read requires a network
// round trip.
type Policy string

const (
	// Autofetch performs the round trip transparently.
	Autofetch Policy = "autofetch"
	// RaiseOnMissing never fetches implicitly; the read fails with an
	// AutofetchError instead.
	RaiseOnMissing Policy = "raise"
)

var (
	defaultPolicyMu sync.RWMutex
	defaultPolicy   = Autofetch
)

// SetDefaultPolicy sets the process-wide policy consulted by engines
// without an explicit policy of their own. Takes effect for subsequent
// resolutions only.
func SetDefaultPolicy(p Policy) {
	defaultPolicyMu.Lock()
	defaultPolicy = p
	defaultPolicyMu.Unlock()
}

// DefaultPolicy returns the process-wide policy.
func DefaultPolicy() Policy {
	defaultPolicyMu.RLock()
	defer defaultPolicyMu.RUnlock()
	return defaultPolicy
}

// Engine ties resolver and reconciler to their collaborators. All
// per-record operations assume the caller owns the record for the
// duration of the call; the engine does no per-record locking.
type Engine struct {
	registry *registry.Registry
	fetcher  Fetcher
	tracker  Tracker
	policy   Policy // empty: consult the process-wide default
	diags    Diagnostics
	logger   *zap.Logger

	statsMu sync.RWMutex
	stats   Stats
}

type Option func(*Engine)

func WithFetcher(f Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

func WithTracker(t Tracker) Option {
	return func(e *Engine) {
		e.tracker = t
	}
}

// WithPolicy pins the engine to a policy, overriding the process-wide
// default.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) {
		e.diags = d
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		tracker:  NopTracker{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.diags == nil {
		e.diags = NewZapDiagnostics(e.logger)
	}
	return e
}

// Registry returns the association metadata this engine consults.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) effectivePolicy() Policy {
	if e.policy != "" {
		return e.policy
	}
	return DefaultPolicy()
}
