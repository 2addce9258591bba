package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by fetchers when the remote store has no
// object for the requested identity. The engine propagates it as-is.
var ErrNotFound = errors.New("object not found")

// AutofetchError is raised when policy is RaiseOnMissing and reading a
// field would require a network fetch. No collaborator call occurs.
// Never retried internally.
type AutofetchError struct {
	Class string
	ID    string
	Field string

	// IsPointer distinguishes "this record is itself unresolved" from
	// "this record is selectively fetched and the field was excluded".
	IsPointer bool
}

func (e *AutofetchError) Error() string {
	if e.IsPointer {
		return fmt.Sprintf("autofetch required for unresolved pointer %s/%s (field %q)", e.Class, e.ID, e.Field)
	}
	return fmt.Sprintf("autofetch required for field %q excluded from selective fetch of %s/%s", e.Field, e.Class, e.ID)
}
