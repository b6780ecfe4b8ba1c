package store

import "errors"

// Validation and lookup errors reported synchronously by store mutators.
// None of them leaves any state mutated behind.
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrHighlightNotFound  = errors.New("highlight not found")
	ErrInvalidPage        = errors.New("page number out of range")
	ErrInvalidTotalPages  = errors.New("total pages must be a positive number")
	ErrInvalidStatus      = errors.New("unknown reading status")
	ErrEmptyHighlightText = errors.New("highlight text must not be empty")
	ErrUnknownBook        = errors.New("highlight references a book that does not exist")
	ErrLastBook           = errors.New("the last remaining book cannot be deleted")
)
