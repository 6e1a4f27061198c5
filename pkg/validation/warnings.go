package validation

import (
	"errors"
	"slices"
	"sync"
)

// Warnings receives problems that do not abort a compilation, such as
// patterns dropped for being too short or beyond the pattern cap.
type Warnings interface {
	AddWarning(err error)
}

// Discard ignores all warnings.
var Discard Warnings = discard{}

type discard struct{}

func (discard) AddWarning(error) {}

// WarningCollector records warnings in the order they were added. The zero
// value is ready to use.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []error
}

// AddWarning implements Warnings.
func (c *WarningCollector) AddWarning(err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, err)
}

// Warnings returns the recorded warnings.
func (c *WarningCollector) Warnings() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.warnings)
}

// Err joins the recorded warnings into a single error, or returns nil if
// there are none.
func (c *WarningCollector) Err() error {
	return errors.Join(c.Warnings()...)
}
