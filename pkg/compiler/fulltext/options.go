package fulltext

import "github.com/opencontacts/contactsql/pkg/contact"

// PatternValidator rejects patterns that are too short to search for.
type PatternValidator interface {
	Check(pattern string) error
}

type compilerOptions struct {
	registry    contact.Registry
	fields      []contact.Field
	maxPatterns int
	validator   PatternValidator
}

// Option configures a Compiler.
type Option func(*compilerOptions)

func generateConfig(options []Option) compilerOptions {
	computed := compilerOptions{
		registry:    contact.DefaultRegistry,
		fields:      contact.DefaultFulltextIndexFields,
		maxPatterns: MaxPatterns,
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

// WithIndexFields sets the columns of the fulltext index, in index order.
//
// This value defaults to `contact.DefaultFulltextIndexFields`.
func WithIndexFields(fields ...contact.Field) Option {
	return func(co *compilerOptions) {
		co.fields = fields
	}
}

// WithMaxPatterns sets the number of patterns used in a match. Further
// patterns are reported as warnings.
//
// This value defaults to `MaxPatterns`.
func WithMaxPatterns(limit int) Option {
	return func(co *compilerOptions) {
		co.maxPatterns = limit
	}
}

// WithPatternValidator checks every pattern before it is used. Failing
// patterns are reported as warnings and dropped.
//
// This value defaults to no validation.
func WithPatternValidator(validator PatternValidator) Option {
	return func(co *compilerOptions) {
		co.validator = validator
	}
}
