// Package structured compiles fixed-shape contact search descriptors.
package structured

import (
	"github.com/opencontacts/contactsql/internal/logging"
	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/compiler/scope"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
)

// Compiler renders search descriptors into select statements.
type Compiler struct {
	registry         contact.Registry
	charset          string
	startLetterField contact.Field
	validator        PatternValidator
}

// NewCompiler returns a compiler configured with the given options.
func NewCompiler(options ...Option) *Compiler {
	config := generateConfig(options)
	return &Compiler{
		registry:         config.registry,
		charset:          config.charset,
		startLetterField: config.startLetterField,
		validator:        config.validator,
	}
}

// Compile renders a select of the requested fields for the descriptor. A
// descriptor without pattern and named values selects everything in scope.
// Range filters are only looked at when there is no pattern, and are
// rejected then.
func (c *Compiler) Compile(desc Descriptor, fields []contact.Field) (clause.Clause, error) {
	columns, err := scope.Columns(c.registry, fields)
	if err != nil {
		return clause.Clause{}, err
	}

	if desc.Pattern != "" {
		predicate, err := c.patternPredicate(desc)
		if err != nil {
			return clause.Clause{}, err
		}
		return c.selectWhere(desc.Scope, columns, predicate)
	}

	if feature := desc.unsupportedFeature(); feature != "" {
		return clause.Clause{}, searcherrors.NewUnsupportedFeatureErr(feature)
	}

	values := desc.Values()
	for _, v := range values {
		if err := c.validate(v.Value); err != nil {
			return clause.Clause{}, err
		}
	}

	if len(values) == 0 {
		return c.selectWhere(desc.Scope, columns)
	}

	if desc.OrSearch || desc.EmailAutoComplete {
		return c.unionOfValues(desc, columns, values)
	}

	comparisons := make([]clause.Clause, 0, len(values))
	for _, v := range values {
		compared, err := c.compareValue(v, desc.ExactMatch)
		if err != nil {
			return clause.Clause{}, err
		}
		comparisons = append(comparisons, compared)
	}
	return c.selectWhere(desc.Scope, columns, comparisons...)
}

// patternPredicate renders the free-text part of a descriptor.
func (c *Compiler) patternPredicate(desc Descriptor) (clause.Clause, error) {
	if desc.StartLetter {
		predicate, applied, err := c.startLetterPredicate(desc.Pattern, desc.ExactMatch)
		if err != nil {
			return clause.Clause{}, err
		}
		if applied {
			return predicate, nil
		}
		logging.Debug().Str("pattern", desc.Pattern).Msg("start-letter search unavailable, searching display name")
	}

	if err := c.validate(desc.Pattern); err != nil {
		return clause.Clause{}, err
	}
	return clause.CompareField(c.registry, contact.FieldDisplayName, c.charset,
		clause.WildcardPattern(desc.Pattern, false),
		clause.CompareOptions{Like: true, CaseSensitive: desc.ExactMatch})
}

func (c *Compiler) compareValue(v FieldValue, exact bool) (clause.Clause, error) {
	return clause.CompareValue(c.registry, v.Field, c.charset, v.Value, clause.CompareOptions{CaseSensitive: exact})
}

// unionOfValues renders one select per named value, so a contact matching
// any of them is found.
func (c *Compiler) unionOfValues(desc Descriptor, columns []string, values []FieldValue) (clause.Clause, error) {
	var hasEmail clause.Clause
	if desc.EmailAutoComplete {
		var err error
		hasEmail, err = clause.HasEmail(c.registry, false)
		if err != nil {
			return clause.Clause{}, err
		}
	}

	selects := make([]clause.Clause, 0, len(values))
	for _, v := range values {
		compared, err := c.compareValue(v, desc.ExactMatch)
		if err != nil {
			return clause.Clause{}, err
		}
		sel, err := c.selectWhere(desc.Scope, columns, compared, hasEmail)
		if err != nil {
			return clause.Clause{}, err
		}
		selects = append(selects, sel.Wrap())
	}
	return clause.Join(" UNION ", selects...), nil
}

func (c *Compiler) selectWhere(s scope.Scope, columns []string, predicates ...clause.Clause) (clause.Clause, error) {
	sel, err := s.Select(c.registry, columns)
	if err != nil {
		return clause.Clause{}, err
	}
	for _, p := range predicates {
		if !p.IsEmpty() {
			sel = sel.Where(p)
		}
	}
	return scope.ToClause(sel)
}

func (c *Compiler) validate(pattern string) error {
	if c.validator == nil {
		return nil
	}
	return c.validator.Check(pattern)
}
