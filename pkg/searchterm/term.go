// Package searchterm defines the abstract predicate tree of a contact query.
//
// A tree is built from Single terms, which compare operands, and Composite
// terms, which combine child terms. Trees are immutable once built.
package searchterm

import (
	"fmt"
	"strings"

	"github.com/opencontacts/contactsql/pkg/contact"
)

// Position describes where an operation is rendered relative to its operands.
type Position int

const (
	// Prefix operations are rendered before the first operand.
	Prefix Position = iota

	// Infix operations are rendered between each pair of operands.
	Infix

	// Postfix operations are rendered after the last operand.
	Postfix
)

// Operation is a comparison or logical operator.
type Operation struct {
	Name     string
	SQL      string
	Position Position
}

func (op Operation) String() string { return op.Name }

var (
	Equals         = Operation{"equals", "=", Infix}
	NotEquals      = Operation{"not_equals", "<>", Infix}
	LessThan       = Operation{"less_than", "<", Infix}
	GreaterThan    = Operation{"greater_than", ">", Infix}
	LessOrEqual    = Operation{"less_or_equal", "<=", Infix}
	GreaterOrEqual = Operation{"greater_or_equal", ">=", Infix}
	IsNull         = Operation{"is_null", "IS NULL", Postfix}
	IsNotNull      = Operation{"is_not_null", "IS NOT NULL", Postfix}

	And = Operation{"and", "AND", Infix}
	Or  = Operation{"or", "OR", Infix}
	Not = Operation{"not", "NOT", Prefix}
)

// Node is either a Single or a Composite term.
type Node interface {
	fmt.Stringer
	isNode()
}

// Operand is either a Column or a Constant.
type Operand interface {
	fmt.Stringer
	isOperand()
}

// Column references the column of a field.
type Column struct {
	Field contact.Field
}

func (Column) isOperand()       {}
func (c Column) String() string { return c.Field.String() }

// Constant is a literal value that is bound as a parameter.
type Constant struct {
	Value any
}

func (Constant) isOperand()       {}
func (c Constant) String() string { return fmt.Sprintf("%q", fmt.Sprint(c.Value)) }

// Single compares its operands with an operation.
type Single struct {
	Operation Operation
	Operands  []Operand
}

func (Single) isNode() {}

func (s Single) String() string {
	operands := make([]string, 0, len(s.Operands))
	for _, o := range s.Operands {
		if o == nil {
			operands = append(operands, "<nil>")
			continue
		}
		operands = append(operands, o.String())
	}
	return s.Operation.Name + "(" + strings.Join(operands, ", ") + ")"
}

// ColumnField returns the field of the first column operand.
func (s Single) ColumnField() (contact.Field, bool) {
	for _, o := range s.Operands {
		if c, ok := o.(Column); ok {
			return c.Field, true
		}
	}
	return contact.FieldUnset, false
}

// Composite combines its children with an operation.
type Composite struct {
	Operation Operation
	Children  []Node
}

func (Composite) isNode() {}

func (c Composite) String() string {
	children := make([]string, 0, len(c.Children))
	for _, child := range c.Children {
		if child == nil {
			children = append(children, "<nil>")
			continue
		}
		children = append(children, child.String())
	}
	return c.Operation.Name + "(" + strings.Join(children, ", ") + ")"
}

// Compare returns a term comparing the field with a constant.
func Compare(op Operation, f contact.Field, value any) Single {
	return Single{Operation: op, Operands: []Operand{Column{f}, Constant{value}}}
}

// FieldEquals returns a term matching the field against a constant.
func FieldEquals(f contact.Field, value any) Single { return Compare(Equals, f, value) }

// FieldIsNull returns a term matching an absent field value.
func FieldIsNull(f contact.Field) Single {
	return Single{Operation: IsNull, Operands: []Operand{Column{f}}}
}

// AllOf combines the children with AND.
func AllOf(children ...Node) Composite { return Composite{Operation: And, Children: children} }

// AnyOf combines the children with OR.
func AnyOf(children ...Node) Composite { return Composite{Operation: Or, Children: children} }

// Negate negates the child.
func Negate(child Node) Composite { return Composite{Operation: Not, Children: []Node{child}} }
