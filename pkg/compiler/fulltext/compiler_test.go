package fulltext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/compiler/scope"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/testutil"
	"github.com/opencontacts/contactsql/pkg/validation"
)

const nameIndexMatch = "MATCH (display_name, sur_name) AGAINST (? IN BOOLEAN MODE)"

func TestCompile(t *testing.T) {
	nameIndex := []Option{WithIndexFields(contact.FieldDisplayName, contact.FieldSurName)}

	tests := []struct {
		name         string
		req          Request
		options      []Option
		expectedSQL  string
		expectedArgs []any
	}{
		{
			"patterns",
			Request{Query: "ot mei", Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ? AND " + nameIndexMatch,
			[]any{1, "+ot* +mei*"},
		},
		{
			"subsumed patterns",
			Request{Query: "otto ot", Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ? AND " + nameIndexMatch,
			[]any{1, "+ot*"},
		},
		{
			"requiring email",
			Request{Query: "ot", RequireEmail: true, Scope: scope.Scope{ContextID: 1, FolderIDs: []int{6, 7}}},
			nameIndex,
			"cid = ? AND folder_id IN (?,?) AND (email1 <> '' OR email2 <> '' OR email3 <> '' OR dlist_count > 0) AND " + nameIndexMatch,
			[]any{1, 6, 7, "+ot*"},
		},
		{
			"ignoring distribution lists",
			Request{Query: "ot", IgnoreDistributionLists: true, Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ? AND (dlist_count IS NULL OR dlist_count = 0) AND " + nameIndexMatch,
			[]any{1, "+ot*"},
		},
		{
			"email requirement wins",
			Request{Query: "ot", RequireEmail: true, IgnoreDistributionLists: true, Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ? AND (email1 <> '' OR email2 <> '' OR email3 <> '' OR dlist_count > 0) AND " + nameIndexMatch,
			[]any{1, "+ot*"},
		},
		{
			"acting user",
			Request{Query: "ot", Scope: scope.Scope{ContextID: 1, UserID: 9}},
			nameIndex,
			"cid = ? AND (private_flag = 0 OR created_by = ?) AND " + nameIndexMatch,
			[]any{1, 9, "+ot*"},
		},
		{
			"catch-all",
			Request{Query: "ot *", Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ?",
			[]any{1},
		},
		{
			"empty query",
			Request{Query: " ", IgnoreDistributionLists: true, Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ? AND (dlist_count IS NULL OR dlist_count = 0)",
			[]any{1},
		},
		{
			"operators only",
			Request{Query: "+ -", Scope: scope.Scope{ContextID: 1}},
			nameIndex,
			"cid = ?",
			[]any{1},
		},
		{
			"default index",
			Request{Query: "ot", Scope: scope.Scope{ContextID: 1}},
			nil,
			"cid = ? AND MATCH (display_name, sur_name, given_name, title, suffix, middle_name, company, email1, email2, email3) AGAINST (? IN BOOLEAN MODE)",
			[]any{1, "+ot*"},
		},
		{
			"custom cap",
			Request{Query: "a b c", Scope: scope.Scope{ContextID: 1}},
			append([]Option{WithMaxPatterns(2)}, nameIndex...),
			"cid = ? AND " + nameIndexMatch,
			[]any{1, "+a* +b*"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			compiled, err := NewCompiler(tc.options...).Compile(tc.req, nil)
			require.NoError(t, err)
			testutil.RequireStatement(t, tc.expectedSQL, tc.expectedArgs, compiled)
			require.Equal(t, clause.CountPlaceholders(compiled.SQL()), len(compiled.Args()))
		})
	}
}

func TestCompileWarnings(t *testing.T) {
	compiler := NewCompiler(
		WithIndexFields(contact.FieldDisplayName),
		WithPatternValidator(validation.MinimumLength(2)),
	)

	var warnings validation.WarningCollector
	compiled, err := compiler.Compile(Request{Query: "a bb cc dd ee ff gg", Scope: scope.Scope{ContextID: 1}}, &warnings)
	require.NoError(t, err)
	testutil.RequireStatement(t,
		"cid = ? AND MATCH (display_name) AGAINST (? IN BOOLEAN MODE)",
		[]any{1, "+bb* +cc* +dd* +ee* +ff*"},
		compiled,
	)

	reported := warnings.Warnings()
	require.Len(t, reported, 2)
	require.ErrorAs(t, reported[0], &searcherrors.ErrPatternTooShort{})
	require.ErrorAs(t, reported[1], &searcherrors.ErrIgnoredPattern{})
}

func TestCompileEveryPatternTooShort(t *testing.T) {
	compiler := NewCompiler(WithPatternValidator(validation.MinimumLength(3)))

	var warnings validation.WarningCollector
	compiled, err := compiler.Compile(Request{Query: "o t", Scope: scope.Scope{ContextID: 1}}, &warnings)
	require.NoError(t, err)
	testutil.RequireStatement(t, "cid = ?", []any{1}, compiled)
	require.Len(t, warnings.Warnings(), 2)
}

func TestCompileIndexErrors(t *testing.T) {
	_, err := NewCompiler(WithIndexFields()).Compile(Request{Query: "otto"}, nil)
	require.Error(t, err)

	_, err = NewCompiler(WithIndexFields(contact.FieldDisplayName, contact.FieldBirthday)).Compile(Request{Query: "otto"}, nil)
	require.Error(t, err)

	// no match, no index needed
	compiled, err := NewCompiler(WithIndexFields()).Compile(Request{Query: "*"}, nil)
	require.NoError(t, err)
	require.Equal(t, "cid = ?", compiled.SQL())
}
