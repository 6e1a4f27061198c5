package fulltext

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/opencontacts/contactsql/internal/logging"
	"github.com/opencontacts/contactsql/pkg/cache"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/singleflight"
	"github.com/opencontacts/contactsql/pkg/validation"
)

const (
	// PropertyEnabled enables fulltext autocomplete.
	PropertyEnabled = "contacts.search.fulltextAutocomplete"

	// PropertyIndexFields lists the fields of the fulltext index, comma
	// separated, in index order.
	PropertyIndexFields = "contacts.search.fulltextIndexFields"
)

// Properties is a configuration snapshot.
type Properties interface {
	// Get returns the value of the property and whether it is set.
	Get(name string) (string, bool)
}

// Connection answers metadata questions about the contact database.
type Connection interface {
	// Catalog returns the schema the connection uses, or an empty string if
	// it cannot tell.
	Catalog(ctx context.Context) (string, error)

	// HasFulltextIndex reports whether the schema has a fulltext index on the
	// contact table named with the prefix and covering exactly the columns.
	HasFulltextIndex(ctx context.Context, schema, prefix string, columns []string) (bool, error)
}

// SchemaResolver looks up the schema holding a context's contacts.
type SchemaResolver interface {
	SchemaName(ctx context.Context, contextID int) (string, error)
}

// Key names a cached capability.
type Key int

const (
	// KeyEnabled is the enabled flag.
	KeyEnabled Key = iota

	// KeyIndexFields is the index field set. Invalidating it invalidates the
	// index probes as well.
	KeyIndexFields

	// KeyIndexProbes are the per-schema index probes.
	KeyIndexProbes
)

func (k Key) String() string {
	switch k {
	case KeyEnabled:
		return "enabled"
	case KeyIndexFields:
		return "index fields"
	case KeyIndexProbes:
		return "index probes"
	default:
		return "unknown key " + strconv.Itoa(int(k))
	}
}

var watchedProperties = map[string]Key{
	PropertyEnabled:     KeyEnabled,
	PropertyIndexFields: KeyIndexFields,
}

// Capabilities caches whether fulltext autocomplete can be used: the enabled
// flag and index field set read from configuration, and per schema whether
// the index exists. Values are computed on first use and kept until they are
// invalidated.
type Capabilities struct {
	current     func() Properties
	conn        Connection
	registry    contact.Registry
	resolver    SchemaResolver
	indexPrefix string
	logger      zerolog.Logger

	enabled     *singleflight.Memo[struct{}, bool]
	fields      *singleflight.Memo[struct{}, []contact.Field]
	probes      *singleflight.Memo[string, bool]
	schemaNames cache.Cache[cache.ContextKey, string]

	registerer   prometheus.Registerer
	cacheMetrics prometheus.Collector
	probeResults *prometheus.CounterVec

	mu   sync.Mutex
	seen map[string]string
}

// NewCapabilities returns a capability cache reading configuration from
// current and metadata from conn. Close releases it.
func NewCapabilities(current func() Properties, conn Connection, options ...CapabilitiesOption) (*Capabilities, error) {
	config := generateCapabilitiesConfig(options)
	if err := validation.IndexName(config.indexPrefix); err != nil {
		return nil, searcherrors.NewInvalidConfigurationErr("fulltext index prefix", config.indexPrefix, err)
	}

	schemaNames, err := cache.NewStandardCache[cache.ContextKey, string]("schema_names", &config.schemaNames)
	if err != nil {
		return nil, fmt.Errorf("unable to create schema name cache: %w", err)
	}

	var cacheMetrics prometheus.Collector
	if config.registerer != nil {
		cacheMetrics = cache.NewCollector("schema_names", schemaNames)
		if err := config.registerer.Register(cacheMetrics); err != nil {
			schemaNames.Close()
			return nil, fmt.Errorf("unable to register schema name cache metrics: %w", err)
		}
	}

	c := &Capabilities{
		current:      current,
		conn:         conn,
		registry:     config.registry,
		resolver:     config.resolver,
		indexPrefix:  config.indexPrefix,
		logger:       logging.Component("fulltext"),
		enabled:      singleflight.NewMemo[struct{}, bool](),
		fields:       singleflight.NewMemo[struct{}, []contact.Field](),
		probes:       singleflight.NewMemo[string, bool](),
		schemaNames:  schemaNames,
		registerer:   config.registerer,
		cacheMetrics: cacheMetrics,
		probeResults: promauto.With(config.registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactsql",
			Subsystem: "fulltext",
			Name:      "index_probes_total",
			Help:      "Number of fulltext index lookups by result",
		}, []string{"result"}),
		seen: make(map[string]string, len(watchedProperties)),
	}

	props := current()
	for name := range watchedProperties {
		c.seen[name], _ = props.Get(name)
	}

	c.logger.Debug().Object("schemaNameCache", &config.schemaNames).Str("indexPrefix", config.indexPrefix).Msg("created fulltext capability cache")
	return c, nil
}

// Close releases the schema name cache and unregisters its metrics.
func (c *Capabilities) Close() {
	if c.cacheMetrics != nil {
		c.registerer.Unregister(c.cacheMetrics)
	}
	c.schemaNames.Close()
}

// Enabled reports whether fulltext autocomplete is enabled. It is disabled
// unless configured otherwise.
func (c *Capabilities) Enabled(ctx context.Context) (bool, error) {
	return c.enabled.Get(ctx, struct{}{}, func(context.Context) (bool, error) {
		value, ok := c.current().Get(PropertyEnabled)
		if !ok || strings.TrimSpace(value) == "" {
			return false, nil
		}

		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return false, searcherrors.NewInvalidConfigurationErr(PropertyEnabled, value, err)
		}
		c.logger.Debug().Bool("enabled", enabled).Msg("read fulltext autocomplete flag")
		return enabled, nil
	})
}

// IndexFields returns the fields of the fulltext index, in index order. An
// unset property yields `contact.DefaultFulltextIndexFields`. A set value
// that does not name at least one field is an error.
func (c *Capabilities) IndexFields(ctx context.Context) ([]contact.Field, error) {
	return c.fields.Get(ctx, struct{}{}, func(context.Context) ([]contact.Field, error) {
		value, ok := c.current().Get(PropertyIndexFields)
		if !ok {
			return contact.DefaultFulltextIndexFields, nil
		}

		fields, err := contact.ParseFieldList(value)
		if err != nil {
			return nil, searcherrors.NewInvalidConfigurationErr(PropertyIndexFields, value, err)
		}
		if len(fields) == 0 {
			return nil, searcherrors.NewInvalidConfigurationErr(PropertyIndexFields, value, errors.New("no fields listed"))
		}
		if _, err := indexColumns(c.registry, fields); err != nil {
			return nil, searcherrors.NewInvalidConfigurationErr(PropertyIndexFields, value, err)
		}

		c.logger.Debug().Stringer("fields", fieldList(fields)).Msg("read fulltext index fields")
		return fields, nil
	})
}

// SchemaName returns the schema holding the context's contacts: the
// connection's catalog if it reports one, else the resolver's answer, which
// is cached for a while.
func (c *Capabilities) SchemaName(ctx context.Context, contextID int) (string, error) {
	catalog, err := c.conn.Catalog(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("connection catalog unavailable")
	} else if catalog != "" {
		return catalog, nil
	}

	key := cache.ContextKey(contextID)
	if schema, ok := c.schemaNames.Get(key); ok {
		return schema, nil
	}

	if c.resolver == nil {
		return "", fmt.Errorf("unable to determine schema for context %d", contextID)
	}
	schema, err := c.resolver.SchemaName(ctx, contextID)
	if err != nil {
		return "", fmt.Errorf("unable to resolve schema for context %d: %w", contextID, err)
	}
	if err := validation.SchemaName(schema); err != nil {
		return "", fmt.Errorf("schema `%s` of context %d: %w", schema, contextID, err)
	}

	c.schemaNames.Set(key, schema)
	return schema, nil
}

// HasIndex reports whether the fulltext index exists in the context's schema.
// The lookup runs once per schema; concurrent callers share it. A failed
// lookup is retried by the next caller.
func (c *Capabilities) HasIndex(ctx context.Context, contextID int) (bool, error) {
	schema, err := c.SchemaName(ctx, contextID)
	if err != nil {
		return false, err
	}

	fields, err := c.IndexFields(ctx)
	if err != nil {
		return false, err
	}

	return c.probes.Get(ctx, schema, func(ctx context.Context) (bool, error) {
		columns, err := indexColumns(c.registry, fields)
		if err != nil {
			return false, err
		}

		found, err := c.conn.HasFulltextIndex(ctx, schema, c.indexPrefix, columns)
		if err != nil {
			c.probeResults.WithLabelValues("error").Inc()
			err = searcherrors.NewCapabilityProbeErr(schema, err)
			c.logger.Warn().Err(err).Str("schema", schema).Msg("fulltext index lookup failed")
			return false, err
		}

		c.probeResults.WithLabelValues(strconv.FormatBool(found)).Inc()
		c.logger.Debug().Str("schema", schema).Bool("found", found).Msg("looked up fulltext index")
		return found, nil
	})
}

// Available reports whether fulltext autocomplete is enabled and its index
// exists for the context. The index is not looked up while disabled.
func (c *Capabilities) Available(ctx context.Context, contextID int) (bool, error) {
	enabled, err := c.Enabled(ctx)
	if err != nil || !enabled {
		return false, err
	}
	return c.HasIndex(ctx, contextID)
}

// Compiler returns a fulltext compiler matching against the configured index
// fields.
func (c *Capabilities) Compiler(ctx context.Context, options ...Option) (*Compiler, error) {
	fields, err := c.IndexFields(ctx)
	if err != nil {
		return nil, err
	}
	return NewCompiler(append([]Option{WithRegistry(c.registry), WithIndexFields(fields...)}, options...)...), nil
}

// Invalidate drops the cached values for the keys; they are computed again on
// next use.
func (c *Capabilities) Invalidate(keys ...Key) {
	for _, key := range keys {
		switch key {
		case KeyEnabled:
			c.enabled.Forget(struct{}{})
		case KeyIndexFields:
			c.fields.Forget(struct{}{})
			c.probes.Clear()
		case KeyIndexProbes:
			c.probes.Clear()
		default:
			searcherrors.MustBugf("unknown capability key %d", key)
		}
		c.logger.Info().Stringer("key", key).Msg("invalidated fulltext capability")
	}
}

// Reload compares the watched properties of the snapshot with the values
// seen last and invalidates what changed. Any change also drops the index
// probes.
func (c *Capabilities) Reload(next Properties) {
	c.mu.Lock()
	var changed []Key
	for name, key := range watchedProperties {
		value, _ := next.Get(name)
		if value != c.seen[name] {
			c.seen[name] = value
			changed = append(changed, key)
		}
	}
	c.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	c.Invalidate(append(changed, KeyIndexProbes)...)
}

type fieldList []contact.Field

func (fl fieldList) String() string {
	names := make([]string, 0, len(fl))
	for _, f := range fl {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}
