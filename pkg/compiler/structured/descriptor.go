package structured

import (
	"time"

	"github.com/opencontacts/contactsql/pkg/compiler/scope"
	"github.com/opencontacts/contactsql/pkg/contact"
)

// Descriptor is a fixed-shape contact search. Empty named values are unset.
type Descriptor struct {
	// Pattern is a free-text pattern. When set, the named values are not
	// used.
	Pattern string

	// StartLetter interprets Pattern as a start-letter bucket.
	StartLetter bool

	// ExactMatch compares case-sensitively.
	ExactMatch bool

	// OrSearch matches contacts satisfying any of the named values instead
	// of all of them.
	OrSearch bool

	// EmailAutoComplete matches any named value and requires an address.
	EmailAutoComplete bool

	DisplayName    string
	SurName        string
	GivenName      string
	Company        string
	Department     string
	Email1         string
	Email2         string
	Email3         string
	CityBusiness   string
	StreetBusiness string
	Categories     string

	// Range filters are recognized but not supported.
	BirthdayRange           *DateRange
	AnniversaryRange        *DateRange
	LastModifiedRange       *DateRange
	BusinessPostalCodeRange *ValueRange

	// IgnoreOwn excludes the contact of the given user when non-zero. Not
	// supported.
	IgnoreOwn int

	Scope scope.Scope
}

// DateRange is an inclusive range of dates.
type DateRange struct {
	From, Until time.Time
}

// ValueRange is an inclusive range of textual values.
type ValueRange struct {
	From, Until string
}

// FieldValue is a named value of a descriptor.
type FieldValue struct {
	Field contact.Field
	Value string
}

// Values returns the set named values in declaration order.
func (d Descriptor) Values() []FieldValue {
	candidates := []FieldValue{
		{contact.FieldDisplayName, d.DisplayName},
		{contact.FieldSurName, d.SurName},
		{contact.FieldGivenName, d.GivenName},
		{contact.FieldCompany, d.Company},
		{contact.FieldDepartment, d.Department},
		{contact.FieldEmail1, d.Email1},
		{contact.FieldEmail2, d.Email2},
		{contact.FieldEmail3, d.Email3},
		{contact.FieldCityBusiness, d.CityBusiness},
		{contact.FieldStreetBusiness, d.StreetBusiness},
		{contact.FieldCategories, d.Categories},
	}

	values := make([]FieldValue, 0, len(candidates))
	for _, c := range candidates {
		if c.Value != "" {
			values = append(values, c)
		}
	}
	return values
}

// unsupportedFeature names the first range filter that is set.
func (d Descriptor) unsupportedFeature() string {
	switch {
	case d.BirthdayRange != nil:
		return "birthday range"
	case d.AnniversaryRange != nil:
		return "anniversary range"
	case d.LastModifiedRange != nil:
		return "last modified range"
	case d.BusinessPostalCodeRange != nil:
		return "business postal code range"
	case d.IgnoreOwn != 0:
		return "ignore own"
	default:
		return ""
	}
}
