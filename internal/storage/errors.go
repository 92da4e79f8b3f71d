package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAmbiguous       = errors.New("more than one record matched")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnavailable     = errors.New("record store unavailable")
)

// LookupError is returned when a guest lookup cannot produce exactly one guest.
type LookupError struct {
	Slug string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("guest lookup %q failed: %v", e.Slug, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// LoadError is returned when the submission scan fails or yields a row that does not decode.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load submissions: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InsertError is returned when the store rejects a new submission.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("failed to insert submission: %v", e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }
