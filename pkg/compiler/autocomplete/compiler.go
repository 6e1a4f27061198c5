// Package autocomplete compiles free-text autocomplete queries into selects
// that require every search token to match at least one of a set of
// alternative fields.
package autocomplete

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jzelinskie/stringz"

	"github.com/opencontacts/contactsql/internal/logging"
	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/compiler/scope"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/validation"
)

// Request is an autocomplete query.
type Request struct {
	// Query is the user input. It is split into tokens on whitespace.
	Query string

	// RequireEmail restricts the results to contacts with an address and
	// distribution lists.
	RequireEmail bool

	Scope scope.Scope

	// Fields are the columns to select. The object id is selected when
	// empty.
	Fields []contact.Field
}

// Compiler renders autocomplete requests into select statements.
type Compiler struct {
	registry  contact.Registry
	charset   string
	fields    []contact.Field
	hints     IndexHints
	validator PatternValidator
}

// NewCompiler returns a compiler configured with the given options.
func NewCompiler(options ...Option) *Compiler {
	config := generateConfig(options)
	return &Compiler{
		registry:  config.registry,
		charset:   config.charset,
		fields:    config.fields,
		hints:     config.hints,
		validator: config.validator,
	}
}

// Tokenize splits an autocomplete query into search tokens.
func Tokenize(query string) []string {
	return strings.Fields(query)
}

// Compile renders a select of the requested fields for the request.
//
// Without tokens every contact in scope is selected. A single token is
// compared as a prefix against every alternative field. With more tokens,
// the per-token selects are combined so that only contacts matching all of
// them are returned, possibly each through a different field.
func (c *Compiler) Compile(req Request) (clause.Clause, error) {
	if err := c.checkConfig(); err != nil {
		return clause.Clause{}, err
	}

	patterns := Tokenize(req.Query)
	if c.validator != nil {
		for _, p := range patterns {
			if err := c.validator.Check(p); err != nil {
				return clause.Clause{}, err
			}
		}
	}

	columns, err := scope.Columns(c.registry, req.Fields)
	if err != nil {
		return clause.Clause{}, err
	}

	var required clause.Clause
	if req.RequireEmail {
		required, err = clause.HasEmail(c.registry, true)
		if err != nil {
			return clause.Clause{}, err
		}
	}

	var compiled clause.Clause
	switch len(patterns) {
	case 0:
		compiled, err = c.everything(req.Scope, columns, required)
	case 1:
		compiled, err = c.anyField(req.Scope, columns, patterns[0], required)
	default:
		compiled, err = c.everyPattern(req.Scope, columns, patterns, required)
	}
	if err != nil {
		return clause.Clause{}, err
	}

	logging.Statement(logging.Trace(), compiled.SQL(), compiled.Args()).
		Int("patterns", len(patterns)).
		Msg("compiled autocomplete query")
	return compiled, nil
}

func (c *Compiler) checkConfig() error {
	if len(c.fields) == 0 {
		return errors.New("no alternative fields configured for autocomplete")
	}
	for _, f := range c.fields {
		if f.IsVirtual() {
			return fmt.Errorf("field `%s` cannot be used for autocomplete", f)
		}
	}
	for f, indexes := range c.hints {
		for _, index := range indexes {
			if err := validation.IndexName(index); err != nil {
				return searcherrors.NewInvalidConfigurationErr("index hint for "+f.String(), index, err)
			}
		}
	}
	return nil
}

func (c *Compiler) everything(s scope.Scope, columns []string, required clause.Clause) (clause.Clause, error) {
	sel, err := s.Select(c.registry, columns)
	if err != nil {
		return clause.Clause{}, err
	}
	if !required.IsEmpty() {
		sel = sel.Where(required)
	}
	return scope.ToClause(sel)
}

// anyField renders the distinct union of one select per alternative field,
// each comparing the field against the token as a prefix.
func (c *Compiler) anyField(s scope.Scope, columns []string, pattern string, required clause.Clause) (clause.Clause, error) {
	like := clause.WildcardPattern(pattern, true)

	branches := make([]clause.Clause, 0, len(c.fields))
	for i, f := range c.fields {
		from := contact.Table
		if i > 0 {
			from = c.hinted(f)
		}

		sel, err := s.SelectFrom(c.registry, columns, from)
		if err != nil {
			return clause.Clause{}, err
		}

		compared, err := clause.CompareField(c.registry, f, c.charset, like, clause.CompareOptions{})
		if err != nil {
			return clause.Clause{}, err
		}
		sel = sel.Where(compared.Wrap())
		if !required.IsEmpty() {
			sel = sel.Where(required)
		}

		branch, err := scope.ToClause(sel)
		if err != nil {
			return clause.Clause{}, err
		}
		branches = append(branches, branch)
	}
	return clause.Join(" UNION ", branches...), nil
}

// everyPattern renders each token's select as a derived table, concatenates
// them and keeps the contacts found once per token.
func (c *Compiler) everyPattern(s scope.Scope, columns []string, patterns []string, required clause.Clause) (clause.Clause, error) {
	id, err := c.registry.Column(contact.FieldObjectID)
	if err != nil {
		return clause.Clause{}, err
	}

	// Requested columns depend on the object id. They are grouped on as well
	// for engines enforcing ONLY_FULL_GROUP_BY.
	grouping := stringz.Dedup(append([]string{id.Name}, columns...))
	groupList := strings.Join(grouping, ", ")

	derived := make([]clause.Clause, 0, len(patterns))
	for i, p := range patterns {
		q, err := c.anyField(s, grouping, p, required)
		if err != nil {
			return clause.Clause{}, err
		}
		derived = append(derived, clause.New(
			fmt.Sprintf("SELECT %s FROM (%s) AS i%d", groupList, q.SQL(), i),
			q.Args()...,
		))
	}

	union := clause.Join(" UNION ALL ", derived...)
	return clause.New(
		fmt.Sprintf("SELECT %s FROM (%s) AS u GROUP BY %s HAVING COUNT(*) >= ?",
			strings.Join(columns, ", "), union.SQL(), groupList),
		append(union.Args(), len(patterns))...,
	), nil
}

func (c *Compiler) hinted(f contact.Field) string {
	indexes := c.hints[f]
	if len(indexes) == 0 {
		return contact.Table
	}
	return contact.Table + " IGNORE INDEX (" + strings.Join(indexes, ", ") + ")"
}
