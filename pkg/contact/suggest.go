package contact

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// minimumSuggestionInput is the shortest input a suggestion is made for.
const minimumSuggestionInput = 3

// suggest returns the canonical field name closest to the unknown name, or an
// empty string if none contains its characters in order.
func suggest(name string) string {
	if len(name) < minimumSuggestionInput {
		return ""
	}

	names := make([]string, 0, int(fieldSentinel)-1)
	for _, f := range All() {
		names = append(names, fields[f].name)
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
