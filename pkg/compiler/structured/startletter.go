package structured

import (
	"github.com/opencontacts/contactsql/pkg/clause"
	"github.com/opencontacts/contactsql/pkg/contact"
)

const allLetters = "all"

// startLetterPredicate buckets contacts by the first character of the
// start-letter field. It reports false when no start-letter field is
// configured, so the caller can fall back to a display name search.
func (c *Compiler) startLetterPredicate(pattern string, exact bool) (clause.Clause, bool, error) {
	if c.startLetterField == contact.FieldUnset {
		return clause.Clause{}, false, nil
	}

	column, err := clause.RenderColumn(c.registry, c.startLetterField, c.charset)
	if err != nil {
		return clause.Clause{}, false, err
	}

	switch {
	case pattern == allLetters:
		return clause.Clause{}, true, nil

	case pattern == "." || pattern == "#":
		return clause.New(
			"(("+column+" < ? OR "+column+" > ?) AND "+column+" NOT LIKE ?)",
			"0%", "z%", "z%",
		), true, nil

	case len(pattern) == 1 && pattern[0] >= '0' && pattern[0] <= '9':
		return clause.New(
			"("+column+" > ? AND "+column+" < ?)",
			"0%", "a%",
		), true, nil
	}

	startLetterCol, err := c.registry.Column(c.startLetterField)
	if err != nil {
		return clause.Clause{}, false, err
	}
	fallback, err := clause.RenderColumn(c.registry, contact.FieldDisplayName, c.charset)
	if err != nil {
		return clause.Clause{}, false, err
	}

	like := clause.WildcardPattern(pattern, true)
	opts := clause.CompareOptions{Like: true, CaseSensitive: exact}
	return clause.Or(
		clause.Compare(column, like, opts),
		clause.And(
			clause.New(startLetterCol.Name+" IS NULL"),
			clause.Compare(fallback, like, opts),
		),
	), true, nil
}
