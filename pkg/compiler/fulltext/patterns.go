package fulltext

import (
	"strings"

	"github.com/opencontacts/contactsql/internal/logging"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/validation"
)

const (
	// MaxPatterns is the default number of patterns used in a match.
	MaxPatterns = 5

	// CatchAll is the pattern matching everything.
	CatchAll = "*"
)

// operators are the boolean mode operators stripped from user input.
var operators = strings.NewReplacer(
	"+", " ", "-", " ", ">", " ", "<", " ", "(", " ", ")", " ",
	"~", " ", "*", " ", `"`, " ", "@", " ",
)

// Tokenize splits a fulltext autocomplete query into tokens on whitespace.
func Tokenize(query string) []string {
	return strings.Fields(query)
}

// Normalize turns tokens into at most MaxPatterns prefix patterns, none of
// which covers another.
func Normalize(tokens []string) []string {
	return normalize(tokens, MaxPatterns, nil, validation.Discard)
}

// normalize strips operators from the tokens and turns each remaining word
// into a prefix pattern. A token consisting of wildcards only yields the
// catch-all pattern alone. Words failing the validator and patterns beyond
// limit are reported to warnings and dropped.
func normalize(tokens []string, limit int, validator PatternValidator, warnings validation.Warnings) []string {
	var patterns []string
	for _, token := range tokens {
		if strings.TrimSpace(token) == "" {
			continue
		}
		if strings.Trim(token, CatchAll) == "" {
			return []string{CatchAll}
		}

		for _, word := range strings.Fields(operators.Replace(token)) {
			if validator != nil {
				if err := validator.Check(word); err != nil {
					logging.Debug().Str("pattern", word).Msg("dropping short fulltext pattern")
					warnings.AddWarning(err)
					continue
				}
			}
			patterns = subsume(patterns, word+CatchAll)
		}
	}

	if limit > 0 && len(patterns) > limit {
		for _, ignored := range patterns[limit:] {
			logging.Debug().Str("pattern", ignored).Int("limit", limit).Msg("ignoring fulltext pattern")
			warnings.AddWarning(searcherrors.NewIgnoredPatternErr(ignored, limit))
		}
		patterns = patterns[:limit]
	}
	return patterns
}

// subsume adds the candidate to the patterns unless a more general one is
// present. Patterns the candidate covers are removed, the candidate taking
// the position of the first of them.
func subsume(patterns []string, candidate string) []string {
	prefix := patternPrefix(candidate)
	for _, existing := range patterns {
		if strings.HasPrefix(prefix, patternPrefix(existing)) {
			return patterns
		}
	}

	result := make([]string, 0, len(patterns)+1)
	added := false
	for _, existing := range patterns {
		if strings.HasPrefix(patternPrefix(existing), prefix) {
			if !added {
				result = append(result, candidate)
				added = true
			}
			continue
		}
		result = append(result, existing)
	}
	if !added {
		result = append(result, candidate)
	}
	return result
}

// patternPrefix is the fixed part of a pattern. Fulltext matching ignores
// case.
func patternPrefix(pattern string) string {
	return strings.ToLower(strings.TrimSuffix(pattern, CatchAll))
}
