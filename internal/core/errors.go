package core

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedInput is returned when a dataset has no non-blank lines.
	ErrMalformedInput = errors.New("malformed input: empty file")

	// ErrNoValidRows is returned by imports when every data row was rejected.
	ErrNoValidRows = errors.New("no valid rows found")

	// ErrRecordNotFound is returned by a Store when an id does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// MissingColumnsError reports required header columns absent from a dataset.
type MissingColumnsError struct {
	Columns []string // in canonical column order
}

func (e *MissingColumnsError) Error() string {
	return "missing required column: " + strings.Join(e.Columns, ", ")
}

// RecordValidationError is returned when a single record fails the same
// acceptance rules applied to bulk rows.
type RecordValidationError struct {
	Reason string
}

func (e *RecordValidationError) Error() string {
	return "invalid record: " + e.Reason
}
