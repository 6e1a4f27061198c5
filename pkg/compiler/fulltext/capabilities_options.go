package fulltext

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencontacts/contactsql/pkg/cache"
	"github.com/opencontacts/contactsql/pkg/contact"
)

const (
	// DefaultIndexPrefix is the name prefix of the autocomplete fulltext index.
	DefaultIndexPrefix = "autocomplete"

	// DefaultSchemaNameTTL is how long a context's schema name is remembered.
	DefaultSchemaNameTTL = 30 * time.Minute
)

type capabilitiesOptions struct {
	registry    contact.Registry
	resolver    SchemaResolver
	indexPrefix string
	schemaNames cache.Config
	registerer  prometheus.Registerer
}

// CapabilitiesOption configures Capabilities.
type CapabilitiesOption func(*capabilitiesOptions)

func generateCapabilitiesConfig(options []CapabilitiesOption) capabilitiesOptions {
	computed := capabilitiesOptions{
		registry:    contact.DefaultRegistry,
		indexPrefix: DefaultIndexPrefix,
		schemaNames: cache.Config{
			MaxEntries: 10_000,
			DefaultTTL: DefaultSchemaNameTTL,
		},
	}

	for _, option := range options {
		option(&computed)
	}

	return computed
}

// WithCapabilitiesRegistry sets the registry used to resolve the index fields
// to columns. Compilers returned by Capabilities.Compiler use it as well.
//
// This value defaults to `contact.DefaultRegistry`.
func WithCapabilitiesRegistry(registry contact.Registry) CapabilitiesOption {
	return func(co *capabilitiesOptions) {
		co.registry = registry
	}
}

// WithSchemaResolver sets the lookup of schema names by context id used when
// the connection does not report its catalog.
//
// This value defaults to no resolver.
func WithSchemaResolver(resolver SchemaResolver) CapabilitiesOption {
	return func(co *capabilitiesOptions) {
		co.resolver = resolver
	}
}

// WithIndexPrefix sets the name prefix of the index to look for.
//
// This value defaults to `DefaultIndexPrefix`.
func WithIndexPrefix(prefix string) CapabilitiesOption {
	return func(co *capabilitiesOptions) {
		co.indexPrefix = prefix
	}
}

// WithSchemaNameCache configures the cache of resolved schema names. A
// non-positive MaxEntries disables it.
//
// This value defaults to 10,000 entries kept for `DefaultSchemaNameTTL`.
func WithSchemaNameCache(config cache.Config) CapabilitiesOption {
	return func(co *capabilitiesOptions) {
		co.schemaNames = config
	}
}

// WithRegisterer registers the probe metrics with the registerer.
//
// This value defaults to no registration.
func WithRegisterer(registerer prometheus.Registerer) CapabilitiesOption {
	return func(co *capabilitiesOptions) {
		co.registerer = registerer
	}
}
