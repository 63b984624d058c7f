package models

import "errors"

var (
	// ErrSchemaMismatch means a loaded table lacks a required field.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrMalformedCode means a join key could not be normalized.
	ErrMalformedCode = errors.New("malformed code")
	// ErrDuplicateKey means a key that must be unique appeared twice.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInconsistentRegion means one region code maps to several names.
	ErrInconsistentRegion = errors.New("inconsistent region")
	// ErrComputation means a derived value is undefined for the input.
	ErrComputation = errors.New("computation error")
)
