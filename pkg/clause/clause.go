// Package clause holds the output type shared by all search compilers and the
// primitives they render columns and comparisons with.
package clause

import (
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Clause is an immutable SQL fragment together with the arguments for its
// positional placeholders, in placeholder order.
type Clause struct {
	sql  string
	args []any
}

var _ sq.Sqlizer = Clause{}

// True is the fragment used when no predicate applies.
var True = Clause{sql: "TRUE"}

// New returns a clause for the given fragment and arguments.
func New(sql string, args ...any) Clause {
	if len(args) == 0 {
		return Clause{sql: sql}
	}
	return Clause{sql: sql, args: slices.Clone(args)}
}

// FromSqlizer renders a squirrel expression into a clause.
func FromSqlizer(s sq.Sqlizer) (Clause, error) {
	sql, args, err := s.ToSql()
	if err != nil {
		return Clause{}, err
	}
	return New(sql, args...), nil
}

// SQL returns the fragment.
func (c Clause) SQL() string { return c.sql }

// Args returns a copy of the arguments.
func (c Clause) Args() []any { return slices.Clone(c.args) }

// IsEmpty returns true if the clause carries no fragment.
func (c Clause) IsEmpty() bool { return c.sql == "" }

// ToSql implements squirrel.Sqlizer.
func (c Clause) ToSql() (string, []any, error) {
	return c.sql, c.Args(), nil
}

// String returns the fragment.
func (c Clause) String() string { return c.sql }

// OrTrue returns True for an empty clause and the clause otherwise.
func (c Clause) OrTrue() Clause {
	if c.IsEmpty() {
		return True
	}
	return c
}

// Wrap returns the clause enclosed in parentheses.
func (c Clause) Wrap() Clause {
	if c.IsEmpty() {
		return c
	}
	return Clause{sql: "(" + c.sql + ")", args: c.args}
}

// Join concatenates the non-empty clauses with sep. Arguments are appended in
// clause order.
func Join(sep string, parts ...Clause) Clause {
	var (
		sqls []string
		args []any
	)
	for _, p := range parts {
		if p.IsEmpty() {
			continue
		}
		sqls = append(sqls, p.sql)
		args = append(args, p.args...)
	}
	return Clause{sql: strings.Join(sqls, sep), args: args}
}

// And joins the non-empty clauses with AND. More than one clause is
// parenthesized as a whole.
func And(parts ...Clause) Clause { return conjunction(" AND ", parts) }

// Or joins the non-empty clauses with OR. More than one clause is
// parenthesized as a whole.
func Or(parts ...Clause) Clause { return conjunction(" OR ", parts) }

func conjunction(sep string, parts []Clause) Clause {
	nonEmpty := 0
	for _, p := range parts {
		if !p.IsEmpty() {
			nonEmpty++
		}
	}
	joined := Join(sep, parts...)
	if nonEmpty > 1 {
		return joined.Wrap()
	}
	return joined
}

// Not negates the clause.
func Not(c Clause) Clause {
	if c.IsEmpty() {
		return c
	}
	return Clause{sql: "NOT (" + c.sql + ")", args: c.args}
}

// CountPlaceholders counts the positional placeholders in a fragment,
// ignoring question marks inside quoted literals.
func CountPlaceholders(sql string) int {
	count := 0
	var quote rune
	escaped := false
	for _, r := range sql {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != 0:
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			count++
		}
	}
	return count
}
