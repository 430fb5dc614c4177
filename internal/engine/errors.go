package engine

import "errors"

var (
	// ErrNotFound indicates a plan record was not found.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousID indicates an ID prefix matches more than one record.
	ErrAmbiguousID = errors.New("ambiguous ID")

	// ErrPerception indicates the scene or instruction could not be obtained.
	ErrPerception = errors.New("perception failed")

	// ErrMissingInput indicates the request carries neither text nor a
	// structured instruction.
	ErrMissingInput = errors.New("missing instruction")
)
