// Package contact describes the queryable columns of the contact store.
//
// A Field is a closed set of identifiers. Every Field resolves to exactly one
// Column through Resolve; fields that have no direct column (such as
// distribution list membership) resolve to a virtual column.
package contact

import (
	"strconv"
	"strings"

	"github.com/opencontacts/contactsql/pkg/searcherrors"
)

// Field identifies a queryable contact attribute.
type Field int

const (
	// FieldUnset is the zero value and never resolves.
	FieldUnset Field = iota

	FieldObjectID
	FieldContextID
	FieldFolderID
	FieldCreatedBy
	FieldLastModified

	FieldDisplayName
	FieldSurName
	FieldGivenName
	FieldMiddleName
	FieldSuffix
	FieldTitle
	FieldCompany
	FieldDepartment
	FieldPosition

	FieldEmail1
	FieldEmail2
	FieldEmail3

	FieldCityBusiness
	FieldCityHome
	FieldStreetBusiness
	FieldPostalCodeBusiness
	FieldCategories
	FieldBirthday

	FieldPrivateFlag
	FieldNumberOfDistributionLists
	FieldMarkAsDistributionList

	// FieldDistributionListMember matches contacts whose distribution list
	// contains a member with a given address or display name. It has no
	// column on the contact table.
	FieldDistributionListMember

	fieldSentinel
)

type fieldInfo struct {
	name     string
	legacyID int
	column   Column
}

var fields = [fieldSentinel]fieldInfo{
	FieldUnset: {},

	FieldObjectID:     {"object_id", 1, Column{Name: ColumnObjectID, Type: TypeInteger}},
	FieldContextID:    {"context_id", 0, Column{Name: ColumnContextID, Type: TypeInteger}},
	FieldFolderID:     {"folder_id", 20, Column{Name: ColumnFolderID, Type: TypeInteger}},
	FieldCreatedBy:    {"created_by", 2, Column{Name: "created_by", Type: TypeInteger}},
	FieldLastModified: {"last_modified", 5, Column{Name: "changing_date", Type: TypeBigInt}},

	FieldDisplayName: {"display_name", 500, Column{Name: ColumnDisplayName, Type: TypeVarchar}},
	FieldSurName:     {"sur_name", 502, Column{Name: "sur_name", Type: TypeVarchar}},
	FieldGivenName:   {"given_name", 501, Column{Name: "given_name", Type: TypeVarchar}},
	FieldMiddleName:  {"middle_name", 503, Column{Name: "middle_name", Type: TypeVarchar}},
	FieldSuffix:      {"suffix", 504, Column{Name: "suffix", Type: TypeVarchar}},
	FieldTitle:       {"title", 505, Column{Name: "title", Type: TypeVarchar}},
	FieldCompany:     {"company", 569, Column{Name: "company", Type: TypeVarchar}},
	FieldDepartment:  {"department", 519, Column{Name: "department", Type: TypeVarchar}},
	FieldPosition:    {"position", 520, Column{Name: "position", Type: TypeVarchar}},

	FieldEmail1: {"email1", 555, Column{Name: "email1", Type: TypeVarchar}},
	FieldEmail2: {"email2", 556, Column{Name: "email2", Type: TypeVarchar}},
	FieldEmail3: {"email3", 557, Column{Name: "email3", Type: TypeVarchar}},

	FieldCityBusiness:       {"city_business", 526, Column{Name: "city_business", Type: TypeVarchar}},
	FieldCityHome:           {"city_home", 508, Column{Name: "city_home", Type: TypeVarchar}},
	FieldStreetBusiness:     {"street_business", 523, Column{Name: "street_business", Type: TypeVarchar}},
	FieldPostalCodeBusiness: {"postal_code_business", 525, Column{Name: "postal_code_business", Type: TypeVarchar}},
	FieldCategories:         {"categories", 100, Column{Name: "categories", Type: TypeText}},
	FieldBirthday:           {"birthday", 511, Column{Name: "birthday", Type: TypeDate}},

	FieldPrivateFlag:               {"private_flag", 101, Column{Name: "private_flag", Type: TypeInteger}},
	FieldNumberOfDistributionLists: {"number_of_distribution_lists", 594, Column{Name: ColumnDistributionListCount, Type: TypeInteger}},
	FieldMarkAsDistributionList:    {"mark_as_distribution_list", 602, Column{Name: "mark_as_dlist", Type: TypeInteger}},

	FieldDistributionListMember: {"distribution_list", 592, Column{Type: TypeVirtual}},
}

// String returns the canonical name of the field.
func (f Field) String() string {
	if !f.valid() {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fields[f].name
}

// LegacyID is the numeric identifier older clients use for the field, or zero
// if there is none.
func (f Field) LegacyID() int {
	if !f.valid() {
		return 0
	}
	return fields[f].legacyID
}

// IsVirtual returns true if the field has no direct column.
func (f Field) IsVirtual() bool {
	return f.valid() && fields[f].column.Type == TypeVirtual
}

func (f Field) valid() bool {
	return f > FieldUnset && f < fieldSentinel
}

// All returns every resolvable field in declaration order.
func All() []Field {
	all := make([]Field, 0, int(fieldSentinel)-1)
	for f := FieldUnset + 1; f < fieldSentinel; f++ {
		all = append(all, f)
	}
	return all
}

// Resolve returns the column metadata for the field. It fails only for values
// outside of the declared set.
func Resolve(f Field) (Column, error) {
	if !f.valid() {
		return Column{}, searcherrors.NewUnknownFieldErr(f.String())
	}
	return fields[f].column, nil
}

// MustResolve is Resolve for fields known at compile time.
func MustResolve(f Field) Column {
	c, err := Resolve(f)
	if err != nil {
		panic(err)
	}
	return c
}

// FieldByLegacyName maps a textual field reference, as found in configuration
// or sent by older clients, to a Field. The canonical name is matched case
// insensitively, followed by the column name and the numeric legacy
// identifier.
func FieldByLegacyName(name string) (Field, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return FieldUnset, searcherrors.NewUnknownFieldErr(name)
	}

	for f := FieldUnset + 1; f < fieldSentinel; f++ {
		if strings.EqualFold(fields[f].name, trimmed) {
			return f, nil
		}
	}

	for f := FieldUnset + 1; f < fieldSentinel; f++ {
		if c := fields[f].column.Name; c != "" && strings.EqualFold(c, trimmed) {
			return f, nil
		}
	}

	if id, err := strconv.Atoi(trimmed); err == nil && id > 0 {
		for f := FieldUnset + 1; f < fieldSentinel; f++ {
			if fields[f].legacyID == id {
				return f, nil
			}
		}
	}

	return FieldUnset, searcherrors.NewUnknownFieldErrWithSuggestion(name, suggest(trimmed))
}

// ParseFieldList parses a comma separated list of field references. Blank
// entries are skipped; an unknown entry fails the whole list.
func ParseFieldList(value string) ([]Field, error) {
	var parsed []Field
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := FieldByLegacyName(part)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, f)
	}
	return parsed, nil
}
