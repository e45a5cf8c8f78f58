package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by all missing-document conditions.
	ErrNotFound = errors.New("not found")

	// ErrUnknownScope is matched by [ScopeError].
	ErrUnknownScope = errors.New("unknown scope")
)

// NotFoundError reports a missing registry, charter, or ego document.
// All not-found conditions are fatal; callers never continue with a
// partial result.
type NotFoundError struct {
	// Kind names the missing thing, e.g. `Policy registry`.
	Kind string
	// Path is the path that was checked.
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ScopeError reports a scope name in the requested chain that has no
// corresponding charter entry.
type ScopeError struct {
	// Scope is the offending scope name.
	Scope string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("unknown scope %q in scope chain", e.Scope)
}

func (e *ScopeError) Unwrap() error {
	return ErrUnknownScope
}
