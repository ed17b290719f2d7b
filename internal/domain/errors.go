package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingStaged means staging holds no batch to analyse. It is not a failure.
	ErrNothingStaged = errors.New("no staged batches")
	// ErrInvalidInput is the target every ValidationError unwraps to.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports input of the wrong shape handed to a pipeline stage.
type ValidationError struct {
	Stage  string
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
	}
	if e.Index < 0 {
		return fmt.Sprintf("%s: field %q: %s", e.Stage, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: field %q at row %d: %s", e.Stage, e.Field, e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// FetchError wraps a failure to retrieve a single URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
