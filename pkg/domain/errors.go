package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrDuplicateEntity          = errors.New("duplicate entity")
	ErrUnresolvedReference      = errors.New("unresolved reference")
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
	ErrModelContradiction       = errors.New("model contradiction")
)

// DuplicateEntityError is returned when a catalog already holds an entity
// under the same internal id or (type, original id).
type DuplicateEntityError struct {
	Entity     EntityKind
	Type       string
	ID         int
	OriginalID int
}

func (e DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s %s (id %d, original id %d) already in the model", e.Entity, e.Type, e.ID, e.OriginalID)
}

// Is allows errors.Is(err, ErrDuplicateEntity).
func (e DuplicateEntityError) Is(target error) bool { return target == ErrDuplicateEntity }

// UnresolvedReferenceError reports a reference that could not be resolved.
// It is usually logged and the referencing entity skipped.
type UnresolvedReferenceError struct {
	Entity    EntityKind
	Reference string
	From      string
}

func (e UnresolvedReferenceError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("%s %s not found", e.Entity, e.Reference)
	}
	return fmt.Sprintf("%s %s referenced by %s not found", e.Entity, e.Reference, e.From)
}

// Is allows errors.Is(err, ErrUnresolvedReference).
func (e UnresolvedReferenceError) Is(target error) bool { return target == ErrUnresolvedReference }

// UnsupportedConfigurationError is fatal: the translator does not implement
// the requested feature for the given input.
type UnsupportedConfigurationError struct {
	Entity EntityKind
	ID     int
	Reason string
}

func (e UnsupportedConfigurationError) Error() string {
	if e.Entity == "" {
		return "unsupported: " + e.Reason
	}
	return fmt.Sprintf("unsupported %s %d: %s", e.Entity, e.ID, e.Reason)
}

// Is allows errors.Is(err, ErrUnsupportedConfiguration).
func (e UnsupportedConfigurationError) Is(target error) bool {
	return target == ErrUnsupportedConfiguration
}

// ModelContradictionError is fatal: the input states two incompatible facts.
type ModelContradictionError struct {
	Entity EntityKind
	ID     int
	Reason string
}

func (e ModelContradictionError) Error() string {
	return fmt.Sprintf("contradiction in %s %d: %s", e.Entity, e.ID, e.Reason)
}

// Is allows errors.Is(err, ErrModelContradiction).
func (e ModelContradictionError) Is(target error) bool { return target == ErrModelContradiction }

// Unsupported is a shorthand for building an UnsupportedConfigurationError.
func Unsupported(kind EntityKind, id int, format string, args ...any) error {
	return UnsupportedConfigurationError{Entity: kind, ID: id, Reason: fmt.Sprintf(format, args...)}
}
