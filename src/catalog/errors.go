package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("source file not found")
	ErrCollision = errors.New("destination name already taken")
	ErrIO        = errors.New("file operation failed")
)

// MoveErrorKind classifies why a move did not happen.
type MoveErrorKind string

const (
	KindNotFound  MoveErrorKind = "not_found"
	KindCollision MoveErrorKind = "collision"
	KindIO        MoveErrorKind = "io"
)

// MoveError describes a failed move of Path. errors.Is matches it against
// ErrNotFound, ErrCollision or ErrIO depending on Kind, and errors.As/Unwrap
// reach the underlying cause.
type MoveError struct {
	Kind MoveErrorKind
	Path string
	Err  error
	// Destination is set when a complete copy of Path already exists there
	// and only removing Path failed.
	Destination string
}

func (e *MoveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("move %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("move %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func (e *MoveError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrCollision:
		return e.Kind == KindCollision
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

// NewMoveError wraps err as a MoveError of the given kind.
func NewMoveError(kind MoveErrorKind, path string, err error) *MoveError {
	return &MoveError{Kind: kind, Path: path, Err: err}
}

// KindOf returns the MoveErrorKind carried by err, or KindIO for any other
// non-nil error.
func KindOf(err error) MoveErrorKind {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindIO
}
