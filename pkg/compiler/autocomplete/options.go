package autocomplete

import "github.com/opencontacts/contactsql/pkg/contact"

// DefaultAlternativeFields are the fields a search token may match, in
// rendering order.
var DefaultAlternativeFields = []contact.Field{
	contact.FieldDisplayName,
	contact.FieldSurName,
	contact.FieldGivenName,
	contact.FieldEmail1,
	contact.FieldEmail2,
	contact.FieldEmail3,
}

// IndexHints lists, per alternative field, the indexes the select comparing
// that field should ignore.
type IndexHints map[contact.Field][]string

// PatternValidator rejects search tokens that are too short to search for.
type PatternValidator interface {
	Check(pattern string) error
}

type compilerOptions struct {
	registry  contact.Registry
	charset   string
	fields    []contact.Field
	hints     IndexHints
	validator PatternValidator
}

// Option configures a Compiler.
type Option func(*compilerOptions)

func generateConfig(options []Option) compilerOptions {
	computed := compilerOptions{
		registry: contact.DefaultRegistry,
		fields:   DefaultAlternativeFields,
	}

	for _, option := range options {
		option(&computed)
	}

	return computed
}

// WithRegistry sets the registry used to resolve fields to columns.
//
// This value defaults to `contact.DefaultRegistry`.
func WithRegistry(registry contact.Registry) Option {
	return func(co *compilerOptions) {
		co.registry = registry
	}
}

// WithCharset converts textual columns to the given charset before comparing.
//
// This value defaults to no conversion.
func WithCharset(charset string) Option {
	return func(co *compilerOptions) {
		co.charset = charset
	}
}

// WithAlternativeFields sets the fields a search token may match.
//
// This value defaults to `DefaultAlternativeFields`.
func WithAlternativeFields(fields ...contact.Field) Option {
	return func(co *compilerOptions) {
		co.fields = fields
	}
}

// WithIndexHints sets the indexes to ignore per alternative field. The select
// for the first alternative field never carries a hint.
//
// This value defaults to no hints.
func WithIndexHints(hints IndexHints) Option {
	return func(co *compilerOptions) {
		co.hints = hints
	}
}

// WithPatternValidator checks every search token before compiling. A token
// failing the check fails the compilation.
//
// This value defaults to no validation.
func WithPatternValidator(validator PatternValidator) Option {
	return func(co *compilerOptions) {
		co.validator = validator
	}
}
