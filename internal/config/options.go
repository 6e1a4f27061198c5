package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"

	"github.com/opencontacts/contactsql/pkg/cache"
	"github.com/opencontacts/contactsql/pkg/compiler/autocomplete"
	"github.com/opencontacts/contactsql/pkg/compiler/fulltext"
	"github.com/opencontacts/contactsql/pkg/compiler/predicate"
	"github.com/opencontacts/contactsql/pkg/compiler/structured"
	"github.com/opencontacts/contactsql/pkg/contact"
	"github.com/opencontacts/contactsql/pkg/searcherrors"
	"github.com/opencontacts/contactsql/pkg/validation"
)

// Search properties read by Options. The fulltext flag and index fields are
// read by fulltext.Capabilities, which caches them.
const (
	PropertyMinimumSearchCharacters = "contacts.search.minimumSearchCharacters"
	PropertyCharset                 = "contacts.search.charset"
	PropertyStartLetterField        = "contacts.search.startLetterField"
	PropertyMaxFulltextPatterns     = "contacts.search.maxFulltextPatterns"
	PropertySchemaNameCacheTTL      = "contacts.search.schemaNameCacheTTL"
	PropertyFulltextIndexPrefix     = "contacts.search.fulltextIndexPrefix"
)

// Options are the scalar search settings.
type Options struct {
	// MinimumSearchCharacters is the minimum number of significant characters
	// of a pattern. Zero disables the check.
	MinimumSearchCharacters int `default:"0"`

	// Charset, when set, converts textual columns before comparing them.
	Charset string

	// StartLetterField is the field start letter buckets compare against.
	// An empty value disables them.
	StartLetterField string `default:"sur_name"`

	MaxFulltextPatterns int           `default:"5"`
	SchemaNameCacheTTL  time.Duration `default:"30m"`
	FulltextIndexPrefix string        `default:"autocomplete"`

	startLetter contact.Field
}

// NewOptions reads the settings from the properties, defaulting what is unset.
func NewOptions(props Properties) (Options, error) {
	var o Options
	if err := defaults.Set(&o); err != nil {
		return Options{}, fmt.Errorf("unable to set option defaults: %w", err)
	}

	var err error
	if o.MinimumSearchCharacters, err = props.Int(PropertyMinimumSearchCharacters, o.MinimumSearchCharacters); err != nil {
		return Options{}, err
	}
	if o.MaxFulltextPatterns, err = props.Int(PropertyMaxFulltextPatterns, o.MaxFulltextPatterns); err != nil {
		return Options{}, err
	}
	if o.SchemaNameCacheTTL, err = props.Duration(PropertySchemaNameCacheTTL, o.SchemaNameCacheTTL); err != nil {
		return Options{}, err
	}
	o.Charset = props.String(PropertyCharset, o.Charset)
	o.StartLetterField = props.String(PropertyStartLetterField, o.StartLetterField)
	o.FulltextIndexPrefix = props.String(PropertyFulltextIndexPrefix, o.FulltextIndexPrefix)

	if err := o.validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o *Options) validate() error {
	if o.MinimumSearchCharacters < 0 {
		return searcherrors.NewInvalidConfigurationErr(PropertyMinimumSearchCharacters, fmt.Sprint(o.MinimumSearchCharacters), nil)
	}
	if o.MaxFulltextPatterns < 1 {
		return searcherrors.NewInvalidConfigurationErr(PropertyMaxFulltextPatterns, fmt.Sprint(o.MaxFulltextPatterns), nil)
	}
	if o.SchemaNameCacheTTL < 0 {
		return searcherrors.NewInvalidConfigurationErr(PropertySchemaNameCacheTTL, o.SchemaNameCacheTTL.String(), nil)
	}
	if o.Charset != "" {
		if err := validation.Charset(o.Charset); err != nil {
			return searcherrors.NewInvalidConfigurationErr(PropertyCharset, o.Charset, err)
		}
	}
	if err := validation.IndexName(o.FulltextIndexPrefix); err != nil {
		return searcherrors.NewInvalidConfigurationErr(PropertyFulltextIndexPrefix, o.FulltextIndexPrefix, err)
	}

	o.startLetter = contact.FieldUnset
	if o.StartLetterField != "" {
		f, err := contact.FieldByLegacyName(o.StartLetterField)
		if err != nil {
			return searcherrors.NewInvalidConfigurationErr(PropertyStartLetterField, o.StartLetterField, err)
		}
		if f.IsVirtual() {
			return searcherrors.NewInvalidConfigurationErr(PropertyStartLetterField, o.StartLetterField, fmt.Errorf("field `%s` has no column", f))
		}
		o.startLetter = f
	}
	return nil
}

// PatternValidator is the minimum length rule.
func (o Options) PatternValidator() validation.MinimumLength {
	return validation.MinimumLength(o.MinimumSearchCharacters)
}

// PredicateOptions configures a search term compiler.
func (o Options) PredicateOptions() []predicate.Option {
	return []predicate.Option{predicate.WithCharset(o.Charset)}
}

// StructuredOptions configures a structured search compiler.
func (o Options) StructuredOptions() []structured.Option {
	return []structured.Option{
		structured.WithCharset(o.Charset),
		structured.WithStartLetterField(o.startLetter),
		structured.WithPatternValidator(o.PatternValidator()),
	}
}

// AutocompleteOptions configures an autocomplete compiler.
func (o Options) AutocompleteOptions() []autocomplete.Option {
	return []autocomplete.Option{
		autocomplete.WithCharset(o.Charset),
		autocomplete.WithPatternValidator(o.PatternValidator()),
	}
}

// FulltextOptions configures a fulltext compiler. The index fields come from
// fulltext.Capabilities.
func (o Options) FulltextOptions() []fulltext.Option {
	return []fulltext.Option{
		fulltext.WithMaxPatterns(o.MaxFulltextPatterns),
		fulltext.WithPatternValidator(o.PatternValidator()),
	}
}

// CapabilitiesOptions configures the fulltext capability cache.
func (o Options) CapabilitiesOptions() []fulltext.CapabilitiesOption {
	return []fulltext.CapabilitiesOption{
		fulltext.WithIndexPrefix(o.FulltextIndexPrefix),
		fulltext.WithSchemaNameCache(cache.Config{
			MaxEntries: 10_000,
			DefaultTTL: o.SchemaNameCacheTTL,
		}),
	}
}

// MarshalZerologObject implements zerolog object marshalling.
func (o Options) MarshalZerologObject(e *zerolog.Event) {
	e.Int("minimumSearchCharacters", o.MinimumSearchCharacters).
		Str("charset", o.Charset).
		Str("startLetterField", o.StartLetterField).
		Int("maxFulltextPatterns", o.MaxFulltextPatterns).
		Dur("schemaNameCacheTTL", o.SchemaNameCacheTTL).
		Str("fulltextIndexPrefix", o.FulltextIndexPrefix)
}
