// Package testutil implements various utilities to reduce boilerplate in unit
// tests a la testify.
package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// RequireEqualEmptyNil is a version of require.Equal, but considers nil
// slices/maps to be equal to empty slices/maps.
func RequireEqualEmptyNil(t testing.TB, expected, actual any, msgAndArgs ...any) {
	t.Helper()

	opts := []cmp.Option{cmpopts.EquateEmpty()}
	msgAndArgs = append(msgAndArgs, cmp.Diff(expected, actual, opts...))
	require.Truef(t, cmp.Equal(expected, actual, opts...), "Should be equal", msgAndArgs...)
}

// Statement is anything rendering to SQL with positional arguments.
type Statement interface {
	ToSql() (string, []any, error)
}

// RequireStatement requires the statement to render to exactly the expected
// SQL and arguments. Nil and empty argument lists are equal.
func RequireStatement(t testing.TB, expectedSQL string, expectedArgs []any, actual Statement) {
	t.Helper()

	sql, args, err := actual.ToSql()
	require.NoError(t, err)
	require.Equal(t, expectedSQL, sql)
	if diff := cmp.Diff(expectedArgs, args, cmpopts.EquateEmpty()); diff != "" {
		require.Failf(t, "unexpected arguments", "(-expected +actual):\n%s", diff)
	}
}
