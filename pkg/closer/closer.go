// Package closer releases resources in reverse order of acquisition.
package closer

import (
	"io"

	"github.com/hashicorp/go-multierror"
)

// Stack collects release functions. The zero value is empty and ready to use.
type Stack struct {
	closers []func() error
}

// AddWithError pushes a release function.
func (c *Stack) AddWithError(closer func() error) {
	c.closers = append(c.closers, closer)
}

// AddCloser pushes the closer's Close. A nil closer is skipped.
func (c *Stack) AddCloser(closer io.Closer) {
	if closer != nil {
		c.closers = append(c.closers, closer.Close)
	}
}

// AddWithoutError pushes a release function that cannot fail.
func (c *Stack) AddWithoutError(closer func()) {
	c.closers = append(c.closers, func() error {
		closer()
		return nil
	})
}

// Close calls every release function, most recently added first, and empties
// the stack. All of them run even if some fail; the failures are combined.
func (c *Stack) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if closerErr := c.closers[i](); closerErr != nil {
			err = multierror.Append(err, closerErr)
		}
	}
	c.closers = nil
	return err
}

// CloseIfError closes the stack if err is non-nil and returns err combined
// with any release failure.
func (c *Stack) CloseIfError(err error) error {
	if err == nil {
		return nil
	}
	if closeErr := c.Close(); closeErr != nil {
		return multierror.Append(err, closeErr)
	}
	return err
}
