package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyBuildsOnce(t *testing.T) {
	var builds atomic.Int32
	lazy := LazyFunc(func(context.Context) (Client, error) {
		builds.Add(1)
		return &stubClient{}, nil
	})

	var wg sync.WaitGroup
	clients := make([]Client, 16)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := lazy.Get(context.Background())
			assert.NoError(t, err)
			clients[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, c := range clients {
		assert.Same(t, clients[0], c)
	}
}

func TestLazyMemoizesError(t *testing.T) {
	lazy := NewLazy(Config{Provider: ProviderGroq}, quietLogger())

	_, err := lazy.Get(context.Background())
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, again := lazy.Get(context.Background())
	assert.Same(t, err, again)
}

func TestLazyOutlivesCanceledContext(t *testing.T) {
	var seen error
	lazy := LazyFunc(func(ctx context.Context) (Client, error) {
		seen = ctx.Err()
		return &stubClient{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lazy.Get(ctx)
	require.NoError(t, err)
	assert.NoError(t, seen)
}

func TestStatic(t *testing.T) {
	c := &stubClient{}
	got, err := Static{Client: c}.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, c, got)
}
