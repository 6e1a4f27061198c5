package testutil

import (
	"go.uber.org/goleak"
)

// GoLeakIgnores lists cache maintenance goroutines that may still be winding
// down after Close returns.
func GoLeakIgnores() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/Yiling-J/theine-go/internal.(*Store[...]).maintance"),
		goleak.IgnoreAnyFunction("github.com/Yiling-J/theine-go/internal.(*Store[...]).maintance.func1"),
	}
}
