// Package modelcache memoizes expensive model handles (loaded pipelines,
// API clients) for the lifetime of the process.
package modelcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrHandleType is returned when an identifier is requested with a type
// other than the one it was loaded as.
var ErrHandleType = errors.New("cached handle has a different type")

// LoadHook observes the lifecycle of a load. It is how an interface layer
// learns that a call is about to block on a model download.
type LoadHook interface {
	OnLoadStart(id string)
	OnLoadDone(id string, elapsed time.Duration, err error)
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
	hooks   []LoadHook
}

type Option func(*Cache)

func WithHook(h LoadHook) Option {
	return func(c *Cache) {
		c.hooks = append(c.hooks, h)
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{entries: make(map[string]any)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the handle stored under id, calling loader on a miss.
// Concurrent misses for the same id share a single loader call. Failed
// loads are not cached, so the next call retries.
func Load[T any](ctx context.Context, c *Cache, id string, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if handle, ok := c.get(id); ok {
		return typed[T](id, handle)
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		// another caller may have finished loading while we waited on the group
		if handle, ok := c.get(id); ok {
			return handle, nil
		}

		c.loadStarted(id)
		start := time.Now()
		handle, err := loader(ctx)
		elapsed := time.Since(start)
		c.loadDone(id, elapsed, err)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[id] = handle
		c.mu.Unlock()
		return handle, nil
	})
	if err != nil {
		return zero, fmt.Errorf("load %q: %w", id, err)
	}
	return typed[T](id, v)
}

// Contains reports whether id has been loaded.
func (c *Cache) Contains(id string) bool {
	_, ok := c.get(id)
	return ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases every cached handle that knows how to release itself.
// The cache is empty afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for id, handle := range c.entries {
		closer, ok := handle.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", id, err))
		}
	}
	c.entries = make(map[string]any)
	return errors.Join(errs...)
}

func (c *Cache) get(id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	handle, ok := c.entries[id]
	return handle, ok
}

func (c *Cache) loadStarted(id string) {
	slog.Info("[ModelCache] Loading model, first use may download weights",
		slog.String("id", id))
	for _, h := range c.hooks {
		h.OnLoadStart(id)
	}
}

func (c *Cache) loadDone(id string, elapsed time.Duration, err error) {
	if err != nil {
		slog.Error("[ModelCache] Failed to load model",
			slog.String("id", id),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
	} else {
		slog.Info("[ModelCache] Model loaded",
			slog.String("id", id),
			slog.Duration("elapsed", elapsed))
	}
	for _, h := range c.hooks {
		h.OnLoadDone(id, elapsed, err)
	}
}

func typed[T any](id string, handle any) (T, error) {
	v, ok := handle.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q holds %T, want %T", ErrHandleType, id, handle, zero)
	}
	return v, nil
}
