// Package config reads the search properties from a configuration file and
// notifies subscribers when they change.
package config

import (
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/opencontacts/contactsql/pkg/searcherrors"
)

// Properties is an immutable snapshot of configuration properties. Names are
// matched case insensitively.
type Properties struct {
	values map[string]string
}

// NewProperties returns a snapshot of the values.
func NewProperties(values map[string]string) Properties {
	normalized := make(map[string]string, len(values))
	for name, value := range values {
		normalized[strings.ToLower(name)] = value
	}
	return Properties{values: normalized}
}

// Get returns the value of the property and whether it is set.
func (p Properties) Get(name string) (string, bool) {
	value, ok := p.values[strings.ToLower(name)]
	return value, ok
}

// Len is the number of properties set.
func (p Properties) Len() int { return len(p.values) }

// Equal reports whether both snapshots hold the same values.
func (p Properties) Equal(other Properties) bool {
	return maps.Equal(p.values, other.values)
}

// String returns the property, or fallback if it is unset.
func (p Properties) String(name, fallback string) string {
	if value, ok := p.Get(name); ok {
		return value
	}
	return fallback
}

// Bool returns the property, or fallback if it is unset or blank.
func (p Properties) Bool(name string, fallback bool) (bool, error) {
	return parse(p, name, fallback, strconv.ParseBool)
}

// Int returns the property, or fallback if it is unset or blank.
func (p Properties) Int(name string, fallback int) (int, error) {
	return parse(p, name, fallback, strconv.Atoi)
}

// Duration returns the property, or fallback if it is unset or blank.
func (p Properties) Duration(name string, fallback time.Duration) (time.Duration, error) {
	return parse(p, name, fallback, time.ParseDuration)
}

func parse[T any](p Properties, name string, fallback T, parser func(string) (T, error)) (T, error) {
	value, ok := p.Get(name)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}

	parsed, err := parser(strings.TrimSpace(value))
	if err != nil {
		return fallback, searcherrors.NewInvalidConfigurationErr(name, value, err)
	}
	return parsed, nil
}
