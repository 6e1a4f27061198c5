package validation

import (
	"errors"
	"regexp"
)

var (
	// CharsetRegex is the regular expression used to validate charset names
	// rendered into CONVERT expressions.
	CharsetRegex = regexp.MustCompile("^[a-z][a-z0-9_]{1,31}$")

	// IndexNameRegex is the regular expression used to validate index names
	// and index name prefixes rendered into index hints.
	IndexNameRegex = regexp.MustCompile("^[A-Za-z_][A-Za-z0-9_]{0,63}$")

	// SchemaNameRegex is the regular expression used to validate schema names
	// resolved from connections or the database service.
	SchemaNameRegex = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

	ErrInvalidCharset    = errors.New("invalid charset name")
	ErrInvalidIndexName  = errors.New("invalid index name")
	ErrInvalidSchemaName = errors.New("invalid schema name")
)

// Charset validates that the string provided is a valid charset name.
func Charset(name string) error {
	if !CharsetRegex.MatchString(name) {
		return ErrInvalidCharset
	}

	return nil
}

// IndexName validates that the string provided is a valid index name or
// index name prefix.
func IndexName(name string) error {
	if !IndexNameRegex.MatchString(name) {
		return ErrInvalidIndexName
	}

	return nil
}

// SchemaName validates that the string provided is a valid schema name.
func SchemaName(name string) error {
	if !SchemaNameRegex.MatchString(name) {
		return ErrInvalidSchemaName
	}

	return nil
}
