package clause

import (
	"github.com/opencontacts/contactsql/pkg/contact"
)

// HasEmail matches contacts with at least one non-empty address. With
// includeDistributionLists, distribution lists match as well.
func HasEmail(registry contact.Registry, includeDistributionLists bool) (Clause, error) {
	parts := make([]Clause, 0, len(contact.EmailFields)+1)
	for _, f := range contact.EmailFields {
		col, err := registry.Column(f)
		if err != nil {
			return Clause{}, err
		}
		parts = append(parts, New(col.Name+" <> ''"))
	}
	if includeDistributionLists {
		col, err := registry.Column(contact.FieldNumberOfDistributionLists)
		if err != nil {
			return Clause{}, err
		}
		parts = append(parts, New(col.Name+" > 0"))
	}
	return Or(parts...), nil
}

// NotDistributionList excludes distribution lists.
func NotDistributionList(registry contact.Registry) (Clause, error) {
	col, err := registry.Column(contact.FieldNumberOfDistributionLists)
	if err != nil {
		return Clause{}, err
	}
	return New("(" + col.Name + " IS NULL OR " + col.Name + " = 0)"), nil
}
