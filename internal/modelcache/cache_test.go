package modelcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	name   string
	closed bool
}

func (f *fakeHandle) Close() error {
	f.closed = true
	return nil
}

type recordingHook struct {
	mu     sync.Mutex
	starts []string
	dones  []string
}

func (r *recordingHook) OnLoadStart(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, id)
}

func (r *recordingHook) OnLoadDone(id string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dones = append(r.dones, id)
}

func TestLoadMemoizesByID(t *testing.T) {
	ctx := context.Background()
	hook := &recordingHook{}
	cache := New(WithHook(hook))

	var calls int
	loader := func(context.Context) (*fakeHandle, error) {
		calls++
		return &fakeHandle{name: "sentiment"}, nil
	}

	first, err := Load(ctx, cache, "sentiment", loader)
	require.NoError(t, err)
	second, err := Load(ctx, cache, "sentiment", loader)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"sentiment"}, hook.starts)
	assert.Equal(t, []string{"sentiment"}, hook.dones)
	assert.True(t, cache.Contains("sentiment"))
	assert.Equal(t, 1, cache.Len())
}

func TestLoadDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	cache := New()
	boom := errors.New("download failed")

	_, err := Load(ctx, cache, "ner", func(context.Context) (*fakeHandle, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, cache.Contains("ner"))

	h, err := Load(ctx, cache, "ner", func(context.Context) (*fakeHandle, error) {
		return &fakeHandle{name: "ner"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ner", h.name)
}

func TestLoadRejectsTypeMismatch(t *testing.T) {
	ctx := context.Background()
	cache := New()

	_, err := Load(ctx, cache, "model", func(context.Context) (*fakeHandle, error) {
		return &fakeHandle{}, nil
	})
	require.NoError(t, err)

	_, err = Load(ctx, cache, "model", func(context.Context) (string, error) {
		return "other", nil
	})
	assert.ErrorIs(t, err, ErrHandleType)
}

func TestConcurrentFirstLoadRunsOnce(t *testing.T) {
	ctx := context.Background()
	cache := New()

	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (*fakeHandle, error) {
		calls.Add(1)
		<-release
		return &fakeHandle{name: "embedder"}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*fakeHandle, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := Load(ctx, cache, "embedder", loader)
			assert.NoError(t, err)
			results[i] = h
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, h := range results {
		assert.Same(t, results[0], h)
	}
}

func TestCloseReleasesHandles(t *testing.T) {
	ctx := context.Background()
	cache := New()

	h, err := Load(ctx, cache, "generator", func(context.Context) (*fakeHandle, error) {
		return &fakeHandle{}, nil
	})
	require.NoError(t, err)
	_, err = Load(ctx, cache, "plain", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)

	require.NoError(t, cache.Close())
	assert.True(t, h.closed)
	assert.Equal(t, 0, cache.Len())
}
