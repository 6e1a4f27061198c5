package predicate

import "github.com/opencontacts/contactsql/pkg/contact"

type compilerOptions struct {
	registry contact.Registry
	charset  string
}

// Option configures a Compiler.
type Option func(*compilerOptions)

func generateConfig(options []Option) compilerOptions {
	computed := compilerOptions{
		registry: contact.DefaultRegistry,
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
