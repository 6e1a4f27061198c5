// Package scope renders the context, folder and user restrictions shared by
// every contact search, and the statement builder the compilers use.
package scope

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/contact"
)

// Builder is the statement builder for generated selects.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Scope restricts a search to a context and, optionally, to folders and to
// what an acting user may see.
type Scope struct {
	ContextID int

	// FolderIDs restricts the search to the folders; empty means all.
	FolderIDs []int

	// UserID hides private contacts of other users when non-zero.
	UserID int
}

// Predicates returns the restrictions in rendering order.
func (s Scope) Predicates(registry contact.Registry) ([]sq.Sqlizer, error) {
	cid, err := registry.Column(contact.FieldContextID)
	if err != nil {
		return nil, err
	}

	predicates := []sq.Sqlizer{sq.Eq{cid.Name: s.ContextID}}
	if len(s.FolderIDs) > 0 {
		folder, err := registry.Column(contact.FieldFolderID)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, sq.Eq{folder.Name: s.FolderIDs})
	}

	if s.UserID != 0 {
		private, err := registry.Column(contact.FieldPrivateFlag)
		if err != nil {
			return nil, err
		}
		creator, err := registry.Column(contact.FieldCreatedBy)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, sq.Expr(
			fmt.Sprintf("(%s = 0 OR %s = ?)", private.Name, creator.Name), s.UserID,
		))
	}
	return predicates, nil
}

// Filter returns the restrictions as a single boolean clause.
func (s Scope) Filter(registry contact.Registry) (clause.Clause, error) {
	predicates, err := s.Predicates(registry)
	if err != nil {
		return clause.Clause{}, err
	}

	parts := make([]clause.Clause, 0, len(predicates))
	for _, p := range predicates {
		c, err := clause.FromSqlizer(p)
		if err != nil {
			return clause.Clause{}, err
		}
		parts = append(parts, c)
	}
	return clause.Join(" AND ", parts...), nil
}

// Select starts a select of the columns from the contact table restricted to
// the scope.
func (s Scope) Select(registry contact.Registry, columns []string) (sq.SelectBuilder, error) {
	return s.SelectFrom(registry, columns, contact.Table)
}

// SelectFrom is Select with an explicit FROM expression, such as a table with
// an index hint.
func (s Scope) SelectFrom(registry contact.Registry, columns []string, from string) (sq.SelectBuilder, error) {
	predicates, err := s.Predicates(registry)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	sel := Builder.Select(columns...).From(from)
	for _, p := range predicates {
		sel = sel.Where(p)
	}
	return sel, nil
}

// Columns renders the requested output fields. The object id is selected
// when nothing is requested.
func Columns(registry contact.Registry, fields []contact.Field) ([]string, error) {
	if len(fields) == 0 {
		fields = []contact.Field{contact.FieldObjectID}
	}

	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.IsVirtual() {
			return nil, fmt.Errorf("field `%s` cannot be selected", f)
		}
		col, err := registry.Column(f)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col.Name)
	}
	return columns, nil
}

// ToClause renders a squirrel statement into a clause.
func ToClause(sel sq.Sqlizer) (clause.Clause, error) {
	c, err := clause.FromSqlizer(sel)
	if err != nil {
		return clause.Clause{}, fmt.Errorf("unable to generate query sql: %w", err)
	}
	return c, nil
}
