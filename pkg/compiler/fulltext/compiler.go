// Package fulltext compiles autocomplete queries into boolean mode fulltext
// matches, and caches whether the fulltext index they need is available.
package fulltext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/compiler/scope"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/validation"
)

// Request is a fulltext autocomplete query.
type Request struct {
	// Query is the user input. It is split into tokens on whitespace.
	Query string

	// RequireEmail restricts the results to contacts with an address and
	// distribution lists.
	RequireEmail bool

	// IgnoreDistributionLists excludes distribution lists. It has no effect
	// together with RequireEmail.
	IgnoreDistributionLists bool

	Scope scope.Scope
}

// Compiler renders fulltext autocomplete requests into boolean clauses.
type Compiler struct {
	registry    contact.Registry
	fields      []contact.Field
	maxPatterns int
	validator   PatternValidator
}

// NewCompiler returns a compiler configured with the given options.
func NewCompiler(options ...Option) *Compiler {
	config := generateConfig(options)
	return &Compiler{
		registry:    config.registry,
		fields:      config.fields,
		maxPatterns: config.maxPatterns,
		validator:   config.validator,
	}
}

// Compile renders the scope, the e-mail or distribution list restriction
// and, unless the query is empty or the catch-all, a match of the normalized
// patterns against the index fields. Dropped patterns are reported to
// warnings, which may be nil.
func (c *Compiler) Compile(req Request, warnings validation.Warnings) (clause.Clause, error) {
	if warnings == nil {
		warnings = validation.Discard
	}

	base, err := req.Scope.Filter(c.registry)
	if err != nil {
		return clause.Clause{}, err
	}

	var restriction clause.Clause
	switch {
	case req.RequireEmail:
		restriction, err = clause.HasEmail(c.registry, true)
	case req.IgnoreDistributionLists:
		restriction, err = clause.NotDistributionList(c.registry)
	}
	if err != nil {
		return clause.Clause{}, err
	}

	parts := []clause.Clause{base, restriction}
	patterns := normalize(Tokenize(req.Query), c.maxPatterns, c.validator, warnings)
	if len(patterns) > 0 && patterns[0] != CatchAll {
		match, err := c.match(patterns)
		if err != nil {
			return clause.Clause{}, err
		}
		parts = append(parts, match)
	}
	return clause.Join(" AND ", parts...).OrTrue(), nil
}

// match renders a boolean mode match requiring every pattern. Index columns
// are matched as stored, without charset conversion.
func (c *Compiler) match(patterns []string) (clause.Clause, error) {
	if len(c.fields) == 0 {
		return clause.Clause{}, errors.New("no fulltext index fields configured")
	}

	columns, err := indexColumns(c.registry, c.fields)
	if err != nil {
		return clause.Clause{}, err
	}

	required := make([]string, 0, len(patterns))
	for _, p := range patterns {
		required = append(required, "+"+p)
	}

	return clause.New(
		"MATCH ("+strings.Join(columns, ", ")+") AGAINST (? IN BOOLEAN MODE)",
		strings.Join(required, " "),
	), nil
}

func indexColumns(registry contact.Registry, fields []contact.Field) ([]string, error) {
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		col, err := registry.Column(f)
		if err != nil {
			return nil, err
		}
		if !col.Type.IsTextual() {
			return nil, fmt.Errorf("field `%s` cannot be part of a fulltext index", f)
		}
		columns = append(columns, col.Name)
	}
	return columns, nil
}
