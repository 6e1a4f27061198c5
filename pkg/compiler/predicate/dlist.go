package predicate

import (
	"fmt"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/searchterm"
)

const dlistAlias = "dl"

// compileDistributionListTerm renders membership in a contact's distribution
// list as a correlated EXISTS over the member table, matching either the
// member address or the member display name.
func (c *Compiler) compileDistributionListTerm(term searchterm.Single) (clause.Clause, error) {
	negate := false
	switch term.Operation {
	case searchterm.Equals:
	case searchterm.NotEquals:
		negate = true
	default:
		return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "distribution list terms support only equality")
	}

	var (
		value    any
		constant bool
	)
	for _, operand := range term.Operands {
		if o, ok := operand.(searchterm.Constant); ok {
			if constant {
				return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "more than one constant operand")
			}
			value, constant = o.Value, true
		}
	}
	if !constant {
		return clause.Clause{}, searcherrors.NewInvalidTermErr(term.String(), "distribution list term requires a constant")
	}

	pattern := fmt.Sprint(value)
	opts := clause.CompareOptions{}
	compared := clause.Or(
		clause.Compare(c.dlistColumn(contact.ColumnDListEmail), pattern, opts),
		clause.Compare(c.dlistColumn(contact.ColumnDListDisplayName), pattern, opts),
	)

	exists := clause.Join(" ",
		clause.New(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s AS %s WHERE %s.%s = %s.%s AND %s.%s = %s.%s AND",
			contact.DistributionListTable, dlistAlias,
			dlistAlias, contact.ColumnDListContextID, contact.Table, contact.ColumnContextID,
			dlistAlias, contact.ColumnDListContactID, contact.Table, contact.ColumnObjectID,
		)),
		compared,
	)
	exists = clause.Join("", exists, clause.New(")"))

	if negate {
		return clause.Not(exists), nil
	}
	return exists, nil
}

func (c *Compiler) dlistColumn(name string) string {
	return clause.ConvertColumn(dlistAlias+"."+name, c.charset)
}
