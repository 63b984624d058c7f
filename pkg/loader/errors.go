package loader

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/referendum-map/models"
)

// SchemaError reports required columns absent from a table header.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return models.ErrSchemaMismatch
}

// ParseError reports a value that could not be read from a table row.
type ParseError struct {
	Table  string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d, column %q: %v", e.Table, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
