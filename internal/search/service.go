// Package search compiles contact searches with the current configuration,
// choosing fulltext autocomplete where the database supports it.
package search

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/opencontacts/contactsql/internal/config"
	"github.com/opencontacts/contactsql/internal/logging"
	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/closer"
	"github.com/opencontacts/contactsql/pkg/compiler/autocomplete"
	"github.com/opencontacts/contactsql/pkg/compiler/fulltext"
	"github.com/opencontacts/contactsql/pkg/compiler/predicate"
	"github.com/opencontacts/contactsql/pkg/compiler/scope"
	"github.com/opencontacts/contactsql/pkg/compiler/structured"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/searchterm"
	"github.com/opencontacts/contactsql/pkg/validation"
)

// Source provides configuration snapshots and notifies about changes.
type Source interface {
	Current() config.Properties
	Subscribe(fn func(config.Properties))
}

// Database answers the metadata questions of the fulltext capability cache.
type Database interface {
	fulltext.Connection
	fulltext.SchemaResolver
}

// Service compiles searches. Options are re-read whenever the source reports
// a change; the fulltext index prefix and schema name cache keep the values
// read at construction.
type Service struct {
	closers closer.Stack

	caps    *fulltext.Capabilities
	options atomic.Pointer[config.Options]
	logger  zerolog.Logger
}

// NewService reads the options from source and keeps them current. Probe
// metrics are registered with registerer, which may be nil.
func NewService(source Source, db Database, registerer prometheus.Registerer) (*Service, error) {
	options, err := config.NewOptions(source.Current())
	if err != nil {
		return nil, err
	}

	capsOptions := append(options.CapabilitiesOptions(),
		fulltext.WithSchemaResolver(db),
		fulltext.WithRegisterer(registerer),
	)
	caps, err := fulltext.NewCapabilities(func() fulltext.Properties { return source.Current() }, db, capsOptions...)
	if err != nil {
		return nil, err
	}

	s := &Service{
		caps:   caps,
		logger: logging.Component("search"),
	}
	s.closers.AddWithoutError(caps.Close)
	s.options.Store(&options)
	source.Subscribe(s.reload)

	s.logger.Info().Object("options", options).Msg("search service started")
	return s, nil
}

// Close releases the capability cache and whatever Open acquired.
func (s *Service) Close() error {
	return s.closers.Close()
}

// Capabilities returns the fulltext capability cache.
func (s *Service) Capabilities() *fulltext.Capabilities {
	return s.caps
}

// Options returns the options in effect.
func (s *Service) Options() config.Options {
	return *s.options.Load()
}

func (s *Service) reload(props config.Properties) {
	if options, err := config.NewOptions(props); err != nil {
		s.logger.Warn().Err(err).Msg("keeping previous search options")
	} else {
		s.options.Store(&options)
		s.logger.Info().Object("options", options).Msg("reloaded search options")
	}
	s.caps.Reload(props)
}

// Search selects the fields of the contacts in scope matching the term. A
// nil term matches every contact in scope.
func (s *Service) Search(term searchterm.Node, in scope.Scope, fields []contact.Field) (clause.Clause, error) {
	where, err := predicate.NewCompiler(s.Options().PredicateOptions()...).Compile(term)
	if err != nil {
		return clause.Clause{}, err
	}

	columns, err := scope.Columns(contact.DefaultRegistry, fields)
	if err != nil {
		return clause.Clause{}, err
	}
	sel, err := in.Select(contact.DefaultRegistry, columns)
	if err != nil {
		return clause.Clause{}, err
	}
	if where.SQL() != clause.True.SQL() {
		sel = sel.Where(where)
	}
	return scope.ToClause(sel)
}

// Structured selects the fields of the contacts matching the descriptor.
func (s *Service) Structured(desc structured.Descriptor, fields []contact.Field) (clause.Clause, error) {
	return structured.NewCompiler(s.Options().StructuredOptions()...).Compile(desc, fields)
}

// AutocompleteRequest is an autocomplete query.
type AutocompleteRequest struct {
	Query        string
	RequireEmail bool

	// IgnoreDistributionLists excludes distribution lists from fulltext
	// matches.
	IgnoreDistributionLists bool

	Scope  scope.Scope
	Fields []contact.Field
}

// Autocomplete selects the fields of the contacts matching every token of
// the query. Fulltext matching is used when it is enabled and the index
// exists, and reported by the returned flag. A failed index lookup falls
// back to token comparisons; configuration errors are returned. Dropped
// patterns are reported to warnings, which may be nil.
func (s *Service) Autocomplete(ctx context.Context, req AutocompleteRequest, warnings validation.Warnings) (clause.Clause, bool, error) {
	options := s.Options()

	available, err := s.caps.Available(ctx, req.Scope.ContextID)
	if err != nil {
		var probeErr searcherrors.ErrCapabilityProbe
		if !errors.As(err, &probeErr) {
			return clause.Clause{}, false, err
		}
		s.logger.Warn().Err(err).Int("contextID", req.Scope.ContextID).Msg("fulltext unavailable, comparing tokens")
	}

	if available {
		compiled, err := s.fulltext(ctx, options, req, warnings)
		return compiled, true, err
	}

	compiled, err := autocomplete.NewCompiler(options.AutocompleteOptions()...).Compile(autocomplete.Request{
		Query:        req.Query,
		RequireEmail: req.RequireEmail,
		Scope:        req.Scope,
		Fields:       req.Fields,
	})
	return compiled, false, err
}

func (s *Service) fulltext(ctx context.Context, options config.Options, req AutocompleteRequest, warnings validation.Warnings) (clause.Clause, error) {
	compiler, err := s.caps.Compiler(ctx, options.FulltextOptions()...)
	if err != nil {
		return clause.Clause{}, err
	}

	where, err := compiler.Compile(fulltext.Request{
		Query:                   req.Query,
		RequireEmail:            req.RequireEmail,
		IgnoreDistributionLists: req.IgnoreDistributionLists,
		Scope:                   req.Scope,
	}, warnings)
	if err != nil {
		return clause.Clause{}, err
	}

	columns, err := scope.Columns(contact.DefaultRegistry, req.Fields)
	if err != nil {
		return clause.Clause{}, err
	}
	return scope.ToClause(scope.Builder.Select(columns...).From(contact.Table).Where(where))
}
