package engine

import (
	"sync"

	"go.uber.org/zap"
)

// Diagnostic is a non-fatal soft-failure event: the operation degraded
// gracefully instead of raising.
type Diagnostic struct {
	Kind   string
	Class  string
	ID     string
	Field  string
	Detail string
}

const (
	DiagInvalidAssignment = "invalid_assignment"
)

// Diagnostics is the soft-failure channel, distinct from the hard-error
// path so callers and tests can observe degraded operations without
// exception control flow.
type Diagnostics interface {
	Emit(d Diagnostic)
}

type zapDiagnostics struct {
	logger *zap.Logger
}

// NewZapDiagnostics emits diagnostics as structured warnings.
func NewZapDiagnostics(logger *zap.Logger) Diagnostics {
	return &zapDiagnostics{logger: logger}
}

func (z *zapDiagnostics) Emit(d Diagnostic) {
	z.logger.Warn("diagnostic",
		zap.String("kind", d.Kind),
		zap.String("class", d.Class),
		zap.String("id", d.ID),
		zap.String("field", d.Field),
		zap.String("detail", d.Detail))
}

// Recorder captures diagnostics for inspection in tests.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *Recorder) Emit(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}
