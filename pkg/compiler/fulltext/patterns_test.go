package fulltext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/validation"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		expected []string
	}{
		{"nothing", nil, nil},
		{"empty tokens", []string{"", " "}, nil},
		{"single", []string{"otto"}, []string{"otto*"}},
		{"general first", []string{"ot", "otto"}, []string{"ot*"}},
		{"general last", []string{"otto", "ot"}, []string{"ot*"}},
		{"duplicates", []string{"otto", "otto"}, []string{"otto*"}},
		{"ignores case", []string{"Otto", "ot"}, []string{"ot*"}},
		{"general replaces in place", []string{"mei", "otto", "o"}, []string{"mei*", "o*"}},
		{"general replaces several", []string{"abc", "mei", "abd", "ab"}, []string{"ab*", "mei*"}},
		{"unrelated", []string{"otto", "mei"}, []string{"otto*", "mei*"}},
		{"catch-all first", []string{"*", "anything"}, []string{"*"}},
		{"catch-all last", []string{"anything", "*"}, []string{"*"}},
		{"repeated wildcards", []string{"otto", "**"}, []string{"*"}},
		{"trailing wildcard", []string{"ot*"}, []string{"ot*"}},
		{"operators", []string{"+otto", "-mei", `"exa"`, "(a)"}, []string{"otto*", "mei*", "exa*", "a*"}},
		{"more operators", []string{"~b<c>", "d@e"}, []string{"b*", "c*", "d*", "e*"}},
		{"operators split words", []string{"otto-mei"}, []string{"otto*", "mei*"}},
		{"operators only", []string{"+-", `""`}, nil},
		{"operators and catch-all", []string{"+", "*"}, []string{"*"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Normalize(tc.tokens))
		})
	}
}

func TestNormalizeCap(t *testing.T) {
	var warnings validation.WarningCollector
	patterns := normalize([]string{"ab", "cd", "ef", "gh", "ij", "kl", "mn"}, MaxPatterns, nil, &warnings)
	require.Equal(t, []string{"ab*", "cd*", "ef*", "gh*", "ij*"}, patterns)

	ignored := warnings.Warnings()
	require.Len(t, ignored, 2)
	for i, expected := range []string{"kl*", "mn*"} {
		var err searcherrors.ErrIgnoredPattern
		require.ErrorAs(t, ignored[i], &err)
		require.Equal(t, expected, err.Pattern())
	}

	// subsumed patterns do not count against the cap
	var none validation.WarningCollector
	patterns = normalize([]string{"ab", "abc", "abd", "cd", "ef", "gh", "ij"}, MaxPatterns, nil, &none)
	require.Equal(t, []string{"ab*", "cd*", "ef*", "gh*", "ij*"}, patterns)
	require.Empty(t, none.Warnings())
}

func TestNormalizeDropsShortPatterns(t *testing.T) {
	var warnings validation.WarningCollector
	patterns := normalize([]string{"ot", "otto", "m+meier"}, MaxPatterns, validation.MinimumLength(3), &warnings)
	require.Equal(t, []string{"otto*", "meier*"}, patterns)

	dropped := warnings.Warnings()
	require.Len(t, dropped, 2)
	var tooShort searcherrors.ErrPatternTooShort
	require.ErrorAs(t, dropped[0], &tooShort)
	require.Equal(t, "ot", tooShort.Pattern())
	require.ErrorAs(t, dropped[1], &tooShort)
	require.Equal(t, "m", tooShort.Pattern())
}

func TestNormalizeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tokens := rapid.SliceOfN(rapid.StringMatching(`[abcAB+*"-]{0,4}`), 0, 8).Draw(t, "tokens")
		patterns := normalize(tokens, 0, nil, validation.Discard)

		if len(patterns) == 1 && patterns[0] == CatchAll {
			return
		}

		for i, p := range patterns {
			require.True(t, strings.HasSuffix(p, CatchAll))
			require.NotEqual(t, CatchAll, p)
			for j, q := range patterns {
				if i != j {
					require.False(t, strings.HasPrefix(patternPrefix(q), patternPrefix(p)), "%q covers %q", p, q)
				}
			}
		}

		// every word is covered by a remaining pattern
		for _, token := range tokens {
			for _, word := range strings.Fields(operators.Replace(token)) {
				covered := false
				for _, p := range patterns {
					covered = covered || strings.HasPrefix(strings.ToLower(word), patternPrefix(p))
				}
				require.True(t, covered, "%q is not covered by %v", word, patterns)
			}
		}

		capped := normalize(tokens, MaxPatterns, nil, validation.Discard)
		require.LessOrEqual(t, len(capped), MaxPatterns)
		require.Equal(t, patterns[:len(capped)], capped)
	})
}
