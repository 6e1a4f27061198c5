package predicate

import (
	"strings"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searchterm"
)

// tryInClause rewrites an OR of equality terms on the same column into a
// single IN expression. It declines, without error, for any other shape.
func (c *Compiler) tryInClause(term searchterm.Composite) (clause.Clause, bool, error) {
	if term.Operation != searchterm.Or || len(term.Children) < 2 {
		return clause.Clause{}, false, nil
	}

	field := contact.FieldUnset
	values := make([]any, 0, len(term.Children))
	for _, child := range term.Children {
		f, value, ok := equalsConstant(child)
		if !ok {
			return clause.Clause{}, false, nil
		}
		if field == contact.FieldUnset {
			field = f
		} else if f != field {
			return clause.Clause{}, false, nil
		}
		if s, isString := value.(string); isString && clause.IsWildcarded(s) {
			return clause.Clause{}, false, nil
		}
		values = append(values, value)
	}

	if field.IsVirtual() {
		return clause.Clause{}, false, nil
	}

	col, err := c.registry.Column(field)
	if err != nil {
		return clause.Clause{}, false, err
	}
	rendered, err := clause.RenderColumn(c.registry, field, c.charset)
	if err != nil {
		return clause.Clause{}, false, err
	}

	for i, v := range values {
		values[i] = coerceConstant(v, col.Type)
	}

	placeholders := strings.Repeat("?,", len(values))
	placeholders = placeholders[:len(placeholders)-1]
	return clause.New(rendered+" IN ("+placeholders+")", values...), true, nil
}

// equalsConstant matches `column = constant` and `constant = column` terms.
func equalsConstant(node searchterm.Node) (contact.Field, any, bool) {
	var single searchterm.Single
	switch n := node.(type) {
	case searchterm.Single:
		single = n
	case *searchterm.Single:
		if n == nil {
			return contact.FieldUnset, nil, false
		}
		single = *n
	default:
		return contact.FieldUnset, nil, false
	}

	if single.Operation != searchterm.Equals || len(single.Operands) != 2 {
		return contact.FieldUnset, nil, false
	}

	var (
		field    = contact.FieldUnset
		value    any
		constant bool
	)
	for _, operand := range single.Operands {
		switch o := operand.(type) {
		case searchterm.Column:
			if field != contact.FieldUnset {
				return contact.FieldUnset, nil, false
			}
			field = o.Field
		case searchterm.Constant:
			if constant {
				return contact.FieldUnset, nil, false
			}
			value, constant = o.Value, true
		default:
			return contact.FieldUnset, nil, false
		}
	}
	if field == contact.FieldUnset || !constant {
		return contact.FieldUnset, nil, false
	}
	return field, value, true
}
