// Package singleflight provides a compute-once-per-key map: concurrent
// callers for a key share one in-flight computation, successful results are
// remembered, and failed computations are forgotten so that the next caller
// retries.
package singleflight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/puzpuzpuz/xsync/v4"
)

// errGoexit indicates the runtime.Goexit was called in
// the user given function.
var errGoexit = errors.New("runtime.Goexit was called")

// A panicError is an arbitrary value recovered from a panic
// with the stack trace during the execution of given function.
type panicError struct {
	value any
	stack []byte
}

// Error implements error interface.
func (p *panicError) Error() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

func newPanicError(v any) error {
	stack := debug.Stack()

	// The first line of the stack trace is of the form "goroutine N [status]:"
	// but by the time the panic reaches Get the goroutine may no longer exist
	// and its status will have changed. Trim out the misleading line.
	if line := bytes.IndexByte(stack, '\n'); line >= 0 {
		stack = stack[line+1:]
	}
	return &panicError{value: v, stack: stack}
}

// call is an in-flight or completed computation.
type call[V any] struct {
	done chan struct{}

	// These fields are written once before done is closed
	// and are only read after done is closed.
	val V
	err error
}

// Memo remembers the result of one successful computation per key.
type Memo[K comparable, V any] struct {
	calls *xsync.Map[K, *call[V]]
}

// NewMemo returns an empty Memo.
func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{calls: xsync.NewMap[K, *call[V]]()}
}

// Get returns the remembered value for the key. If there is none, the first
// caller runs fn on its own goroutine and every concurrent caller for the key
// waits for and shares that result. A failed computation is removed before
// its waiters are released.
//
// A waiter whose context ends stops waiting and returns the context error;
// the computation itself continues. If fn panics, waiters receive an error
// and the panic is propagated to the computing caller.
func (m *Memo[K, V]) Get(ctx context.Context, key K, fn func(context.Context) (V, error)) (V, error) {
	c, loaded := m.calls.LoadOrCompute(key, func() (*call[V], bool) {
		return &call[V]{done: make(chan struct{})}, false
	})
	if !loaded {
		m.compute(ctx, key, c, fn)
		return c.val, c.err
	}

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (m *Memo[K, V]) compute(ctx context.Context, key K, c *call[V], fn func(context.Context) (V, error)) {
	normalReturn := false
	defer func() {
		if !normalReturn {
			if r := recover(); r != nil {
				c.err = newPanicError(r)
			} else {
				c.err = errGoexit
			}
		}

		if c.err != nil {
			m.calls.Compute(key, func(current *call[V], loaded bool) (*call[V], xsync.ComputeOp) {
				if loaded && current == c {
					return nil, xsync.DeleteOp
				}
				return current, xsync.CancelOp
			})
		}
		close(c.done)

		var e *panicError
		if errors.As(c.err, &e) {
			panic(e)
		}
	}()

	c.val, c.err = fn(ctx)
	normalReturn = true
}

// Peek returns the remembered value for the key without computing it. It
// reports false while a computation is in flight.
func (m *Memo[K, V]) Peek(key K) (V, bool) {
	var zero V
	c, ok := m.calls.Load(key)
	if !ok {
		return zero, false
	}

	select {
	case <-c.done:
		if c.err != nil {
			return zero, false
		}
		return c.val, true
	default:
		return zero, false
	}
}

// Forget removes the key. An in-flight computation for it still completes for
// its callers but its result is not remembered.
func (m *Memo[K, V]) Forget(key K) {
	m.calls.Delete(key)
}

// Clear removes every key.
func (m *Memo[K, V]) Clear() {
	m.calls.Clear()
}

// Len returns the number of remembered and in-flight keys.
func (m *Memo[K, V]) Len() int {
	return m.calls.Size()
}
