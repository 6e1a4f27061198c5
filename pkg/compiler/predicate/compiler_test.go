package predicate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/searchterm"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name         string
		term         searchterm.Node
		options      []Option
		expectedSQL  string
		expectedArgs []any
	}{
		{
			"nil tree",
			nil,
			nil,
			"TRUE",
			nil,
		},
		{
			"empty composite",
			searchterm.AllOf(),
			nil,
			"TRUE",
			nil,
		},
		{
			"plain equality",
			searchterm.FieldEquals(contact.FieldEmail1, "abc"),
			nil,
			"email1 = ?",
			[]any{"abc"},
		},
		{
			"wildcarded equality",
			searchterm.FieldEquals(contact.FieldEmail1, "ab%c"),
			nil,
			"email1 LIKE ?",
			[]any{"ab%c"},
		},
		{
			"escaped wildcard",
			searchterm.FieldEquals(contact.FieldEmail1, `ab\%c`),
			nil,
			"email1 = ?",
			[]any{`ab\%c`},
		},
		{
			"wildcarded inequality",
			searchterm.Compare(searchterm.NotEquals, contact.FieldSurName, "m_ller"),
			nil,
			"sur_name NOT LIKE ?",
			[]any{"m_ller"},
		},
		{
			"constant before column",
			searchterm.Single{
				Operation: searchterm.Equals,
				Operands:  []searchterm.Operand{searchterm.Constant{Value: "x%"}, searchterm.Column{Field: contact.FieldGivenName}},
			},
			nil,
			"? LIKE given_name",
			[]any{"x%"},
		},
		{
			"boolean string against integer column",
			searchterm.FieldEquals(contact.FieldPrivateFlag, "true"),
			nil,
			"private_flag = ?",
			[]any{1},
		},
		{
			"false against integer column",
			searchterm.FieldEquals(contact.FieldMarkAsDistributionList, "FALSE"),
			nil,
			"mark_as_dlist = ?",
			[]any{0},
		},
		{
			"boolean string against textual column",
			searchterm.FieldEquals(contact.FieldCompany, "true"),
			nil,
			"company = ?",
			[]any{"true"},
		},
		{
			"postfix",
			searchterm.FieldIsNull(contact.FieldBirthday),
			nil,
			"birthday IS NULL",
			nil,
		},
		{
			"prefix single",
			searchterm.Single{Operation: searchterm.Not, Operands: []searchterm.Operand{searchterm.Column{Field: contact.FieldPrivateFlag}}},
			nil,
			"NOT private_flag",
			nil,
		},
		{
			"charset conversion",
			searchterm.FieldEquals(contact.FieldDisplayName, "otto"),
			[]Option{WithCharset("utf8mb4")},
			"CONVERT(display_name USING utf8mb4) = ?",
			[]any{"otto"},
		},
		{
			"and of terms",
			searchterm.AllOf(
				searchterm.FieldEquals(contact.FieldSurName, "Otto"),
				searchterm.Compare(searchterm.GreaterThan, contact.FieldLastModified, 1000),
			),
			nil,
			"(sur_name = ? AND changing_date > ?)",
			[]any{"Otto", 1000},
		},
		{
			"nested composites",
			searchterm.AnyOf(
				searchterm.AllOf(
					searchterm.FieldEquals(contact.FieldSurName, "a%"),
					searchterm.FieldEquals(contact.FieldGivenName, "b"),
				),
				searchterm.Negate(searchterm.FieldIsNull(contact.FieldEmail1)),
			),
			nil,
			"((sur_name LIKE ? AND given_name = ?) OR NOT (email1 IS NULL))",
			[]any{"a%", "b"},
		},
		{
			"single child composite",
			searchterm.AllOf(searchterm.FieldEquals(contact.FieldSurName, "x")),
			nil,
			"sur_name = ?",
			[]any{"x"},
		},
		{
			"empty children are dropped",
			searchterm.AllOf(searchterm.AnyOf(), searchterm.FieldEquals(contact.FieldSurName, "x")),
			nil,
			"sur_name = ?",
			[]any{"x"},
		},
		{
			"pointer nodes",
			&searchterm.Composite{Operation: searchterm.And, Children: []searchterm.Node{
				&searchterm.Single{Operation: searchterm.Equals, Operands: []searchterm.Operand{searchterm.Column{Field: contact.FieldTitle}, searchterm.Constant{Value: "Dr."}}},
			}},
			nil,
			"title = ?",
			[]any{"Dr."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			compiled, err := NewCompiler(tc.options...).Compile(tc.term)
			require.NoError(t, err)
			require.Equal(t, tc.expectedSQL, compiled.SQL())
			if diff := cmp.Diff(tc.expectedArgs, compiled.Args()); diff != "" {
				t.Fatalf("unexpected args (-want +got):\n%s", diff)
			}
			require.Equal(t, clause.CountPlaceholders(compiled.SQL()), len(compiled.Args()))
		})
	}
}

func TestInClauseRewrite(t *testing.T) {
	tests := []struct {
		name         string
		term         searchterm.Node
		expectedSQL  string
		expectedArgs []any
	}{
		{
			"or of equals",
			searchterm.AnyOf(
				searchterm.FieldEquals(contact.FieldFolderID, 1),
				searchterm.FieldEquals(contact.FieldFolderID, 2),
				searchterm.FieldEquals(contact.FieldFolderID, 3),
			),
			"folder_id IN (?,?,?)",
			[]any{1, 2, 3},
		},
		{
			"wildcarded constant declines",
			searchterm.AnyOf(
				searchterm.FieldEquals(contact.FieldSurName, "a%"),
				searchterm.FieldEquals(contact.FieldSurName, "b"),
			),
			"(sur_name LIKE ? OR sur_name = ?)",
			[]any{"a%", "b"},
		},
		{
			"different columns decline",
			searchterm.AnyOf(
				searchterm.FieldEquals(contact.FieldSurName, "a"),
				searchterm.FieldEquals(contact.FieldGivenName, "b"),
			),
			"(sur_name = ? OR given_name = ?)",
			[]any{"a", "b"},
		},
		{
			"and does not rewrite",
			searchterm.AllOf(
				searchterm.FieldEquals(contact.FieldSurName, "a"),
				searchterm.FieldEquals(contact.FieldSurName, "b"),
			),
			"(sur_name = ? AND sur_name = ?)",
			[]any{"a", "b"},
		},
		{
			"single child does not rewrite",
			searchterm.AnyOf(searchterm.FieldEquals(contact.FieldSurName, "a")),
			"sur_name = ?",
			[]any{"a"},
		},
		{
			"non equality child declines",
			searchterm.AnyOf(
				searchterm.FieldEquals(contact.FieldSurName, "a"),
				searchterm.Compare(searchterm.NotEquals, contact.FieldSurName, "b"),
			),
			"(sur_name = ? OR sur_name <> ?)",
			[]any{"a", "b"},
		},
		{
			"composite child declines",
			searchterm.AnyOf(
				searchterm.FieldEquals(contact.FieldSurName, "a"),
				searchterm.AnyOf(searchterm.FieldEquals(contact.FieldSurName, "b")),
			),
			"(sur_name = ? OR sur_name = ?)",
			[]any{"a", "b"},
		},
		{
			"coerces boolean strings",
			searchterm.AnyOf(
				searchterm.FieldEquals(contact.FieldPrivateFlag, "true"),
				searchterm.FieldEquals(contact.FieldPrivateFlag, "false"),
			),
			"private_flag IN (?,?)",
			[]any{1, 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			compiled, err := NewCompiler().Compile(tc.term)
			require.NoError(t, err)
			require.Equal(t, tc.expectedSQL, compiled.SQL())
			require.Equal(t, tc.expectedArgs, compiled.Args())
		})
	}
}

func TestDistributionListMembership(t *testing.T) {
	const exists = "EXISTS (SELECT 1 FROM contacts_dlist AS dl WHERE dl.cid = contacts.cid AND dl.contact_id = contacts.id AND "

	compiled, err := NewCompiler().Compile(searchterm.FieldEquals(contact.FieldDistributionListMember, "otto@example.com"))
	require.NoError(t, err)
	require.Equal(t, exists+"(dl.email = ? OR dl.display_name = ?))", compiled.SQL())
	require.Equal(t, []any{"otto@example.com", "otto@example.com"}, compiled.Args())

	compiled, err = NewCompiler().Compile(searchterm.FieldEquals(contact.FieldDistributionListMember, "otto%"))
	require.NoError(t, err)
	require.Equal(t, exists+"(dl.email LIKE ? OR dl.display_name LIKE ?))", compiled.SQL())

	compiled, err = NewCompiler(WithCharset("utf8")).Compile(
		searchterm.Compare(searchterm.NotEquals, contact.FieldDistributionListMember, "otto"))
	require.NoError(t, err)
	require.Equal(t, "NOT ("+exists+"(CONVERT(dl.email USING utf8) = ? OR CONVERT(dl.display_name USING utf8) = ?)))", compiled.SQL())
	require.Equal(t, 2, clause.CountPlaceholders(compiled.SQL()))

	// membership is never folded into an IN list
	compiled, err = NewCompiler().Compile(searchterm.AnyOf(
		searchterm.FieldEquals(contact.FieldDistributionListMember, "a"),
		searchterm.FieldEquals(contact.FieldDistributionListMember, "b"),
	))
	require.NoError(t, err)
	require.Len(t, compiled.Args(), 4)

	_, err = NewCompiler().Compile(searchterm.Compare(searchterm.LessThan, contact.FieldDistributionListMember, "a"))
	require.ErrorAs(t, err, &searcherrors.ErrInvalidTerm{})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		term searchterm.Node
	}{
		{
			"two column operands",
			searchterm.Single{Operation: searchterm.Equals, Operands: []searchterm.Operand{
				searchterm.Column{Field: contact.FieldSurName},
				searchterm.Column{Field: contact.FieldGivenName},
			}},
		},
		{
			"no operands",
			searchterm.Single{Operation: searchterm.Equals},
		},
		{
			"infix with one operand",
			searchterm.Single{Operation: searchterm.Equals, Operands: []searchterm.Operand{searchterm.Column{Field: contact.FieldSurName}}},
		},
		{
			"postfix with two operands",
			searchterm.Single{Operation: searchterm.IsNull, Operands: []searchterm.Operand{
				searchterm.Column{Field: contact.FieldSurName},
				searchterm.Constant{Value: 1},
			}},
		},
		{
			"nil operand",
			searchterm.Single{Operation: searchterm.Equals, Operands: []searchterm.Operand{searchterm.Column{Field: contact.FieldSurName}, nil}},
		},
		{
			"pointer operand",
			searchterm.Single{Operation: searchterm.Equals, Operands: []searchterm.Operand{&searchterm.Column{Field: contact.FieldSurName}, searchterm.Constant{Value: 1}}},
		},
		{
			"unset field",
			searchterm.FieldEquals(contact.FieldUnset, "a"),
		},
		{
			"nil child",
			searchterm.AllOf(searchterm.FieldEquals(contact.FieldSurName, "a"), nil),
		},
		{
			"not with two children",
			searchterm.Composite{Operation: searchterm.Not, Children: []searchterm.Node{
				searchterm.FieldEquals(contact.FieldSurName, "a"),
				searchterm.FieldEquals(contact.FieldSurName, "b"),
			}},
		},
		{
			"error in nested child",
			searchterm.AnyOf(searchterm.FieldEquals(contact.FieldSurName, "a"), searchterm.AllOf(searchterm.Single{Operation: searchterm.Equals})),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			compiled, err := NewCompiler().Compile(tc.term)
			require.Error(t, err)
			require.True(t, compiled.IsEmpty())

			var invalid searcherrors.ErrInvalidTerm
			var unknown searcherrors.ErrUnknownField
			require.True(t, errorsAs(err, &invalid) || errorsAs(err, &unknown), "unexpected error type %T", err)
		})
	}
}

func TestInvalidTermNamesNode(t *testing.T) {
	_, err := NewCompiler().Compile(searchterm.Single{Operation: searchterm.Equals, Operands: []searchterm.Operand{
		searchterm.Column{Field: contact.FieldSurName},
		searchterm.Column{Field: contact.FieldGivenName},
	}})

	var invalid searcherrors.ErrInvalidTerm
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "equals(sur_name, given_name)", invalid.Term())
}
