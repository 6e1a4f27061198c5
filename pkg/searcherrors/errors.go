// Package searcherrors defines the errors returned while compiling contact
// searches.
package searcherrors

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// HasMetadata indicates that the error has metadata defined.
type HasMetadata interface {
	// DetailsMetadata returns the metadata for details for this error.
	DetailsMetadata() map[string]string
}

// ErrUnknownField occurs when a field or legacy field name cannot be mapped
// to a column.
type ErrUnknownField struct {
	error
	name       string
	suggestion string
}

// NewUnknownFieldErr constructs a new unknown field error.
func NewUnknownFieldErr(name string) error {
	return ErrUnknownField{
		error: fmt.Errorf("unknown contact field `%s`", name),
		name:  name,
	}
}

// NewUnknownFieldErrWithSuggestion constructs a new unknown field error
// naming a known field that was likely meant.
func NewUnknownFieldErrWithSuggestion(name, suggestion string) error {
	if suggestion == "" {
		return NewUnknownFieldErr(name)
	}
	return ErrUnknownField{
		error:      fmt.Errorf("unknown contact field `%s`, did you mean `%s`?", name, suggestion),
		name:       name,
		suggestion: suggestion,
	}
}

// FieldName is the name that failed to resolve.
func (err ErrUnknownField) FieldName() string { return err.name }

// Suggestion is a known field name close to the unknown one, if any.
func (err ErrUnknownField) Suggestion() string { return err.suggestion }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrUnknownField) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("field", err.name).Str("suggestion", err.suggestion)
}

// DetailsMetadata returns the metadata for details for this error.
func (err ErrUnknownField) DetailsMetadata() map[string]string {
	if err.suggestion == "" {
		return map[string]string{"field": err.name}
	}
	return map[string]string{"field": err.name, "suggestion": err.suggestion}
}

// ErrPatternTooShort occurs when a search pattern has fewer significant
// characters than required.
type ErrPatternTooShort struct {
	error
	pattern string
	minimum int
}

// NewPatternTooShortErr constructs a new pattern length error.
func NewPatternTooShortErr(pattern string, minimum int) error {
	return ErrPatternTooShort{
		error:   fmt.Errorf("search pattern `%s` is shorter than the minimum of %d characters", pattern, minimum),
		pattern: pattern,
		minimum: minimum,
	}
}

// Pattern is the rejected pattern.
func (err ErrPatternTooShort) Pattern() string { return err.pattern }

// Minimum is the required number of characters.
func (err ErrPatternTooShort) Minimum() int { return err.minimum }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrPatternTooShort) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("pattern", err.pattern).Int("minimum", err.minimum)
}

// DetailsMetadata returns the metadata for details for this error.
func (err ErrPatternTooShort) DetailsMetadata() map[string]string {
	return map[string]string{
		"pattern": err.pattern,
		"minimum": strconv.Itoa(err.minimum),
	}
}

// ErrIgnoredPattern is reported, never returned, when a pattern is dropped
// because the pattern limit was reached.
type ErrIgnoredPattern struct {
	error
	pattern string
}

// NewIgnoredPatternErr constructs a new ignored pattern warning.
func NewIgnoredPatternErr(pattern string, limit int) error {
	return ErrIgnoredPattern{
		error:   fmt.Errorf("search pattern `%s` ignored, at most %d patterns are used", pattern, limit),
		pattern: pattern,
	}
}

// Pattern is the ignored pattern.
func (err ErrIgnoredPattern) Pattern() string { return err.pattern }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrIgnoredPattern) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("pattern", err.pattern)
}

// ErrUnsupportedFeature occurs when a search requests a filter that is not
// implemented.
type ErrUnsupportedFeature struct {
	error
	feature string
}

// NewUnsupportedFeatureErr constructs a new unsupported feature error.
func NewUnsupportedFeatureErr(feature string) error {
	return ErrUnsupportedFeature{
		error:   fmt.Errorf("search filter `%s` is not supported", feature),
		feature: feature,
	}
}

// Feature names the unsupported filter.
func (err ErrUnsupportedFeature) Feature() string { return err.feature }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrUnsupportedFeature) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("feature", err.feature)
}

// DetailsMetadata returns the metadata for details for this error.
func (err ErrUnsupportedFeature) DetailsMetadata() map[string]string {
	return map[string]string{"feature": err.feature}
}

// ErrInvalidTerm occurs when a search term violates the shape its operation
// requires.
type ErrInvalidTerm struct {
	error
	term string
}

// NewInvalidTermErr constructs a new invalid term error. term is a rendering
// of the offending node.
func NewInvalidTermErr(term string, reason string) error {
	return ErrInvalidTerm{
		error: fmt.Errorf("invalid search term %s: %s", term, reason),
		term:  term,
	}
}

// Term is the rendering of the offending node.
func (err ErrInvalidTerm) Term() string { return err.term }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrInvalidTerm) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("term", err.term)
}

// ErrCapabilityProbe occurs when checking for a database capability failed.
type ErrCapabilityProbe struct {
	error
	schema string
}

// NewCapabilityProbeErr wraps a failed capability lookup for a schema.
func NewCapabilityProbeErr(schema string, err error) error {
	return ErrCapabilityProbe{
		error:  fmt.Errorf("unable to probe fulltext index in schema `%s`: %w", schema, err),
		schema: schema,
	}
}

// Unwrap returns the wrapped error.
func (err ErrCapabilityProbe) Unwrap() error { return errors.Unwrap(err.error) }

// Schema is the schema that was probed.
func (err ErrCapabilityProbe) Schema() string { return err.schema }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrCapabilityProbe) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("schema", err.schema)
}

// ErrInvalidConfiguration occurs when a configured value cannot be used.
type ErrInvalidConfiguration struct {
	error
	property string
	value    string
}

// NewInvalidConfigurationErr constructs a new configuration error.
func NewInvalidConfigurationErr(property, value string, cause error) error {
	msg := fmt.Sprintf("invalid value `%s` for property `%s`", value, property)
	if cause != nil {
		return ErrInvalidConfiguration{fmt.Errorf("%s: %w", msg, cause), property, value}
	}
	return ErrInvalidConfiguration{errors.New(msg), property, value}
}

// Unwrap returns the wrapped error, if any.
func (err ErrInvalidConfiguration) Unwrap() error { return errors.Unwrap(err.error) }

// Property is the name of the offending property.
func (err ErrInvalidConfiguration) Property() string { return err.property }

// MarshalZerologObject implements zerolog object marshalling.
func (err ErrInvalidConfiguration) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("property", err.property).Str("value", err.value)
}

// DetailsMetadata returns the metadata for details for this error.
func (err ErrInvalidConfiguration) DetailsMetadata() map[string]string {
	return map[string]string{
		"property": err.property,
		"value":    err.value,
	}
}
