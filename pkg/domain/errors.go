package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedReference is returned when a document references an id no
	// registry knows about.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrMissingTexture is wrapped by ResolutionError when strict resolution
	// finds no texture for a mapping.
	ErrMissingTexture = errors.New("no associated texture")
	// ErrZeroDimension is wrapped when a bound image has no pixels.
	ErrZeroDimension = errors.New("image has zero dimension")
)

// ScanError reports that the resource source could not be read. It aborts
// the whole reload cycle.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// DecodeError reports a single malformed document. The document is skipped.
type DecodeError struct {
	Category Category
	ID       ResourceID
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %s: %v", e.Category, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ResolutionError reports a colormap/texture mismatch. Expected names the
// texture id that was looked for, when there is one.
type ResolutionError struct {
	ID       ResourceID
	Expected ResourceID
	Channel  int
	Err      error
}

// NewResolutionError builds a channel-less ResolutionError.
func NewResolutionError(id, expected ResourceID, err error) *ResolutionError {
	return &ResolutionError{ID: id, Expected: expected, Channel: -1, Err: err}
}

func (e *ResolutionError) Error() string {
	msg := "resolve " + e.ID.String()
	if e.Channel >= 0 {
		msg += fmt.Sprintf(" channel %d", e.Channel)
	}
	if !e.Expected.IsZero() {
		msg += " (expected " + e.Expected.String() + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// DuplicateDefinitionError is never returned to callers; it is logged when a
// later definition replaces an earlier one.
type DuplicateDefinitionError struct {
	Category Category
	ID       ResourceID
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("duplicate %s definition %s: later definition wins", e.Category, e.ID)
}

// ApplyError reports that mutating one host target failed.
type ApplyError struct {
	Category Category
	Target   ResourceID
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s to %s: %v", e.Category, e.Target, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
