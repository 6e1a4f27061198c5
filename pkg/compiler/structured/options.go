package structured

import "github.com/opencontacts/contactsql/pkg/contact"

type compilerOptions struct {
	registry         contact.Registry
	charset          string
	startLetterField contact.Field
	validator        PatternValidator
}

// PatternValidator rejects patterns that are too short to search for.
type PatternValidator interface {
	Check(pattern string) error
}

// Option configures a Compiler.
type Option func(*compilerOptions)

func generateConfig(options []Option) compilerOptions {
	computed := compilerOptions{
		registry:         contact.DefaultRegistry,
		startLetterField: contact.FieldSurName,
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

// WithStartLetterField sets the field start-letter searches bucket on.
// `contact.FieldUnset` disables start-letter searches, which then fall back
// to a display name search.
//
// This value defaults to `contact.FieldSurName`.
func WithStartLetterField(f contact.Field) Option {
	return func(co *compilerOptions) {
		co.startLetterField = f
	}
}

// WithPatternValidator checks free-text patterns and named values before
// compiling.
//
// This value defaults to no validation.
func WithPatternValidator(validator PatternValidator) Option {
	return func(co *compilerOptions) {
		co.validator = validator
	}
}
