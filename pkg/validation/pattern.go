// Package validation checks user search input and configured identifiers
// before they are rendered into SQL.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/opencontacts/contactsql/pkg/searcherrors"
)

// MinimumLength is the minimum number of significant characters a search
// pattern must have. Zero disables the check.
type MinimumLength int

// Check returns an ErrPatternTooShort if the pattern has fewer significant
// characters than required.
func (m MinimumLength) Check(pattern string) error {
	if m <= 0 {
		return nil
	}
	if SignificantLength(pattern) < int(m) {
		return searcherrors.NewPatternTooShortErr(pattern, int(m))
	}
	return nil
}

// SignificantLength counts the characters of a pattern that are neither
// user wildcards nor whitespace.
func SignificantLength(pattern string) int {
	return utf8.RuneCountInString(strings.Map(func(r rune) rune {
		switch r {
		case '*', '?', ' ', '\t', '\n', '\r':
			return -1
		default:
			return r
		}
	}, pattern))
}
