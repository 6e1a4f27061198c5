package clause

import (
	"strings"

	"github.com/opencontacts/contactsql/pkg/contact"
)

// BinaryCollation is the collation applied for case-sensitive comparisons.
const BinaryCollation = "utf8mb4_bin"

// IsWildcarded returns true if the pattern contains a `%` or `_` that is not
// escaped by a preceding backslash.
func IsWildcarded(pattern string) bool {
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%' || r == '_':
			return true
		}
	}
	return false
}

// IsTextual returns true if the field's column holds character data.
func IsTextual(registry contact.Registry, f contact.Field) (bool, error) {
	col, err := registry.Column(f)
	if err != nil {
		return false, err
	}
	return col.Type.IsTextual(), nil
}

// RenderColumn returns the column reference for the field, converted to the
// charset when one is given and the column is textual.
func RenderColumn(registry contact.Registry, f contact.Field, charset string) (string, error) {
	col, err := registry.Column(f)
	if err != nil {
		return "", err
	}
	return renderColumn(col, charset), nil
}

func renderColumn(col contact.Column, charset string) string {
	if !col.Type.IsTextual() {
		return col.Name
	}
	return ConvertColumn(col.Name, charset)
}

// ConvertColumn wraps a textual column reference in a CONVERT to the charset.
// An empty charset leaves the reference as is.
func ConvertColumn(name, charset string) string {
	if charset == "" {
		return name
	}
	return "CONVERT(" + name + " USING " + charset + ")"
}

// WildcardPattern turns user input into a LIKE pattern. Literal `%`, `_` and
// `\` are escaped, `*` becomes `%` and `?` becomes `_`. With prefix set, a
// trailing `%` is appended unless the pattern already ends in one.
func WildcardPattern(input string, prefix bool) string {
	var b strings.Builder
	b.Grow(len(input) + 1)
	endsInWildcard := false
	for _, r := range input {
		endsInWildcard = false
		switch r {
		case '\\', '%', '_':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '*':
			b.WriteRune('%')
			endsInWildcard = true
		case '?':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	if prefix && !endsInWildcard {
		b.WriteRune('%')
	}
	return b.String()
}

// CompareOptions tune a Compare rendering.
type CompareOptions struct {
	// Like forces LIKE even for patterns without wildcards.
	Like bool

	// CaseSensitive applies BinaryCollation to the comparison.
	CaseSensitive bool
}

// Compare renders a comparison of an already rendered column with a bound
// pattern: LIKE if the pattern is wildcarded, equality otherwise.
func Compare(column string, pattern string, opts CompareOptions) Clause {
	if opts.Like || IsWildcarded(pattern) {
		return compare(column, " LIKE ?", pattern, opts.CaseSensitive)
	}
	return compare(column, " = ?", pattern, opts.CaseSensitive)
}

func compare(column, op string, arg any, caseSensitive bool) Clause {
	sql := column + op
	if caseSensitive {
		sql += " COLLATE " + BinaryCollation
	}
	return New(sql, arg)
}

// CompareField renders Compare against the field's column.
func CompareField(registry contact.Registry, f contact.Field, charset string, pattern string, opts CompareOptions) (Clause, error) {
	column, err := RenderColumn(registry, f, charset)
	if err != nil {
		return Clause{}, err
	}
	return Compare(column, pattern, opts), nil
}

// CompareValue compares the field with user input. Input containing `*` or
// `?` is matched with LIKE after WildcardPattern. Other input is bound
// unchanged for equality, so literal `%` and `_` are matched as written.
func CompareValue(registry contact.Registry, f contact.Field, charset string, input string, opts CompareOptions) (Clause, error) {
	column, err := RenderColumn(registry, f, charset)
	if err != nil {
		return Clause{}, err
	}
	if pattern := WildcardPattern(input, false); opts.Like || IsWildcarded(pattern) {
		return compare(column, " LIKE ?", pattern, opts.CaseSensitive), nil
	}
	return compare(column, " = ?", input, opts.CaseSensitive), nil
}
