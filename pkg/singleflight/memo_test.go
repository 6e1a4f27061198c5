package singleflight

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConcurrentCallersShareOneComputation(t *testing.T) {
	const callers = 32

	memo := NewMemo[string, bool]()
	var computations atomic.Int32
	release := make(chan struct{})

	lookup := func(ctx context.Context) (bool, error) {
		computations.Add(1)
		<-release
		return true, nil
	}

	results := make([]bool, callers)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range callers {
		g.Go(func() error {
			found, err := memo.Get(ctx, "contacts_5", lookup)
			results[i] = found
			return err
		})
	}

	// let the callers pile up behind the first one
	time.Sleep(10 * time.Millisecond)
	close(release)

	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), computations.Load())
	for _, found := range results {
		require.True(t, found)
	}

	found, ok := memo.Peek("contacts_5")
	require.True(t, ok)
	require.True(t, found)
}

func TestKeysAreIndependent(t *testing.T) {
	memo := NewMemo[string, string]()

	for _, key := range []string{"a", "b", "a", "b"} {
		v, err := memo.Get(context.Background(), key, func(context.Context) (string, error) {
			return "value of " + key, nil
		})
		require.NoError(t, err)
		require.Equal(t, "value of "+key, v)
	}
	require.Equal(t, 2, memo.Len())
}

func TestFailureIsForgotten(t *testing.T) {
	memo := NewMemo[string, int]()
	ctx := context.Background()
	probeErr := errors.New("connection refused")

	calls := 0
	lookup := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, probeErr
		}
		return calls, nil
	}

	_, err := memo.Get(ctx, "key", lookup)
	require.ErrorIs(t, err, probeErr)
	require.Equal(t, 0, memo.Len())

	_, ok := memo.Peek("key")
	require.False(t, ok)

	v, err := memo.Get(ctx, "key", lookup)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	v, err = memo.Get(ctx, "key", lookup)
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.Equal(t, 2, calls)
}

func TestWaiterContextCancelation(t *testing.T) {
	memo := NewMemo[string, string]()
	started := make(chan struct{})
	release := make(chan struct{})

	ownerResult := make(chan string, 1)
	go func() {
		v, _ := memo.Get(context.Background(), "key", func(context.Context) (string, error) {
			close(started)
			<-release
			return "computed", nil
		})
		ownerResult <- v
	}()
	<-started

	waiterCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memo.Get(waiterCtx, "key", func(context.Context) (string, error) {
		t.Fatal("waiter must not compute")
		return "", nil
	})
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Equal(t, "computed", <-ownerResult)

	v, ok := memo.Peek("key")
	require.True(t, ok)
	require.Equal(t, "computed", v)
}

func TestPanicPropagatesToOwner(t *testing.T) {
	memo := NewMemo[string, int]()

	require.Panics(t, func() {
		_, _ = memo.Get(context.Background(), "key", func(context.Context) (int, error) {
			panic("boom")
		})
	})
	require.Equal(t, 0, memo.Len())

	v, err := memo.Get(context.Background(), "key", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestGoexitIsForgotten(t *testing.T) {
	memo := NewMemo[string, int]()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = memo.Get(context.Background(), "key", func(context.Context) (int, error) {
			runtime.Goexit()
			return 0, nil
		})
	}()
	<-done

	require.Equal(t, 0, memo.Len())
}

func TestForget(t *testing.T) {
	memo := NewMemo[string, int]()
	ctx := context.Background()

	calls := 0
	lookup := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := memo.Get(ctx, "key", lookup)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	memo.Forget("key")
	v, err = memo.Get(ctx, "key", lookup)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	_, _ = memo.Get(ctx, "other", lookup)
	require.Equal(t, 2, memo.Len())

	memo.Clear()
	require.Equal(t, 0, memo.Len())
	v, err = memo.Get(ctx, "key", lookup)
	require.NoError(t, err)
	require.Equal(t, 4, v)
}

func TestForgetDuringComputation(t *testing.T) {
	memo := NewMemo[string, string]()
	started := make(chan struct{})
	release := make(chan struct{})

	first := make(chan string, 1)
	go func() {
		v, _ := memo.Get(context.Background(), "key", func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		first <- v
	}()
	<-started

	memo.Forget("key")
	v, err := memo.Get(context.Background(), "key", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	require.Equal(t, "fresh", v)

	close(release)
	require.Equal(t, "stale", <-first)

	v, ok := memo.Peek("key")
	require.True(t, ok)
	require.Equal(t, "fresh", v)
}
