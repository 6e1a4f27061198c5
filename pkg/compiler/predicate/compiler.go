// Package predicate compiles search term trees into SQL boolean expressions.
package predicate

import (
	"strings"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/searchterm"
)

// Compiler renders search term trees. It holds no per-query state and may be
// shared.
type Compiler struct {
	registry contact.Registry
	charset  string
}

// NewCompiler returns a compiler configured with the given options.
func NewCompiler(options ...Option) *Compiler {
	config := generateConfig(options)
	return &Compiler{
		registry: config.registry,
		charset:  config.charset,
	}
}

// Compile renders the tree. A nil tree, or one that reduces to nothing,
// yields clause.True.
func (c *Compiler) Compile(node searchterm.Node) (clause.Clause, error) {
	if node == nil {
		return clause.True, nil
	}

	compiled, err := c.compile(node)
	if err != nil {
		return clause.Clause{}, err
	}
	return compiled.OrTrue(), nil
}

func (c *Compiler) compile(node searchterm.Node) (clause.Clause, error) {
	switch n := node.(type) {
	case searchterm.Single:
		return c.compileSingle(n)
	case *searchterm.Single:
		if n == nil {
			return clause.Clause{}, searcherrors.NewInvalidTermErr("<nil>", "nil single term")
		}
		return c.compileSingle(*n)
	case searchterm.Composite:
		return c.compileComposite(n)
	case *searchterm.Composite:
		if n == nil {
			return clause.Clause{}, searcherrors.NewInvalidTermErr("<nil>", "nil composite term")
		}
		return c.compileComposite(*n)
	default:
		return clause.Clause{}, searcherrors.NewInvalidTermErr("<nil>", "unknown term type")
	}
}

func (c *Compiler) compileSingle(term searchterm.Single) (clause.Clause, error) {
	column, err := checkSingleShape(term)
	if err != nil {
		return clause.Clause{}, err
	}

	var columnType contact.SQLType
	if column != contact.FieldUnset {
		if column.IsVirtual() {
			if column == contact.FieldDistributionListMember {
				return c.compileDistributionListTerm(term)
			}
			return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "field has no column")
		}

		col, err := c.registry.Column(column)
		if err != nil {
			return clause.Clause{}, err
		}
		columnType = col.Type
	}

	var (
		parts     []string
		args      []any
		opIndexes []int
		useLike   bool
	)
	emitOperation := func() {
		opIndexes = append(opIndexes, len(parts))
		parts = append(parts, term.Operation.SQL)
	}

	last := len(term.Operands) - 1
	for i, operand := range term.Operands {
		if term.Operation.Position == searchterm.Prefix && i == 0 {
			emitOperation()
		}

		switch o := operand.(type) {
		case searchterm.Column:
			rendered, err := clause.RenderColumn(c.registry, o.Field, c.charset)
			if err != nil {
				return clause.Clause{}, err
			}
			parts = append(parts, rendered)

		case searchterm.Constant:
			value := coerceConstant(o.Value, columnType)
			if s, ok := value.(string); ok && clause.IsWildcarded(s) {
				useLike = true
			}
			parts = append(parts, "?")
			args = append(args, value)
		}

		if term.Operation.Position == searchterm.Infix && i < last {
			emitOperation()
		}
		if term.Operation.Position == searchterm.Postfix && i == last {
			emitOperation()
		}
	}

	if useLike {
		for _, idx := range opIndexes {
			parts[idx] = likeOperation(parts[idx])
		}
	}

	return clause.New(strings.Join(parts, " "), args...), nil
}

// checkSingleShape validates the operands of a single term and returns the
// field of its column operand, if any.
func checkSingleShape(term searchterm.Single) (contact.Field, error) {
	if len(term.Operands) == 0 {
		return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "no operands")
	}

	switch term.Operation.Position {
	case searchterm.Infix:
		if len(term.Operands) < 2 {
			return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "infix operation requires at least two operands")
		}
	case searchterm.Prefix, searchterm.Postfix:
		if len(term.Operands) != 1 {
			return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "unary operation requires exactly one operand")
		}
	default:
		return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "unknown operation position")
	}

	column := contact.FieldUnset
	for _, operand := range term.Operands {
		switch o := operand.(type) {
		case searchterm.Column:
			if column != contact.FieldUnset {
				return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "more than one column operand")
			}
			if o.Field == contact.FieldUnset {
				return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "column operand without field")
			}
			column = o.Field
		case searchterm.Constant:
		default:
			return contact.FieldUnset, searcherrors.NewInvalidTermErr(term.String(), "operand of unknown type")
		}
	}
	return column, nil
}

// coerceConstant maps boolean strings to integers for integer columns.
func coerceConstant(value any, columnType contact.SQLType) any {
	s, ok := value.(string)
	if !ok || !columnType.IsInteger() {
		return value
	}
	switch {
	case strings.EqualFold(s, "true"):
		return 1
	case strings.EqualFold(s, "false"):
		return 0
	default:
		return value
	}
}

func likeOperation(op string) string {
	switch op {
	case searchterm.Equals.SQL:
		return "LIKE"
	case searchterm.NotEquals.SQL, "!=":
		return "NOT LIKE"
	default:
		return op
	}
}

func (c *Compiler) compileComposite(term searchterm.Composite) (clause.Clause, error) {
	if rewritten, ok, err := c.tryInClause(term); err != nil {
		return clause.Clause{}, err
	} else if ok {
		return rewritten, nil
	}

	children := make([]clause.Clause, 0, len(term.Children))
	for _, child := range term.Children {
		if child == nil {
			return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "nil child")
		}
		compiled, err := c.compile(child)
		if err != nil {
			return clause.Clause{}, err
		}
		if !compiled.IsEmpty() {
			children = append(children, compiled)
		}
	}

	if len(children) == 0 {
		return clause.Clause{}, nil
	}

	op := term.Operation
	switch op.Position {
	case searchterm.Infix:
		if len(children) == 1 {
			return children[0], nil
		}
		return clause.Join(" "+op.SQL+" ", children...).Wrap(), nil

	case searchterm.Prefix:
		if len(children) != 1 {
			return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "unary operation requires exactly one child")
		}
		return clause.Join(" ", clause.New(op.SQL), children[0].Wrap()), nil

	case searchterm.Postfix:
		if len(children) != 1 {
			return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "unary operation requires exactly one child")
		}
		return clause.Join(" ", children[0].Wrap(), clause.New(op.SQL)), nil

	default:
		return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "unknown operation position")
	}
}
