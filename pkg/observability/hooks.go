// Package observability provides hooks for following a preprocessing run.
//
// The pipeline reports every diagram it renders, every cache hit and every
// finished document through a [Hooks] value passed to it explicitly. The
// CLI uses this to print progress; tests use [Counter] to prove whether the
// renderer was invoked.
//
//	counter := &observability.Counter{}
//	proc := &preprocess.Processor{Hooks: observability.Multi(printer, counter)}
package observability

import (
	"context"
	"sync"
	"time"
)

// Hooks receives events from the diagram pipeline.
type Hooks interface {
	// OnRender records a render attempt. err is non-nil when the engine
	// was missing or rejected the description.
	OnRender(ctx context.Context, source, key string, duration time.Duration, err error)

	// OnCacheHit records a diagram reused from the cache.
	OnCacheHit(ctx context.Context, source, key string)

	// OnDocument records a finished document and its fresh render count.
	OnDocument(ctx context.Context, source string, diagrams int)
}

// NoopHooks ignores all events.
type NoopHooks struct{}

func (NoopHooks) OnRender(context.Context, string, string, time.Duration, error) {}
func (NoopHooks) OnCacheHit(context.Context, string, string)                     {}
func (NoopHooks) OnDocument(context.Context, string, int)                        {}

// Counter tallies events. It is safe for concurrent use.
type Counter struct {
	mu        sync.Mutex
	renders   int
	failures  int
	hits      int
	documents int
}

func (c *Counter) OnRender(_ context.Context, _, _ string, _ time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures++
		return
	}
	c.renders++
}

func (c *Counter) OnCacheHit(context.Context, string, string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Counter) OnDocument(context.Context, string, int) {
	c.mu.Lock()
	c.documents++
	c.mu.Unlock()
}

// Stats is a snapshot of a [Counter].
type Stats struct {
	Renders   int // successful renders
	Failures  int // failed render attempts
	CacheHits int
	Documents int
}

// Stats returns the current tallies.
func (c *Counter) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Renders: c.renders, Failures: c.failures, CacheHits: c.hits, Documents: c.documents}
}

// Multi fans events out to every non-nil hook in order.
func Multi(hooks ...Hooks) Hooks {
	var hs multi
	for _, h := range hooks {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return hs
}

type multi []Hooks

func (m multi) OnRender(ctx context.Context, source, key string, d time.Duration, err error) {
	for _, h := range m {
		h.OnRender(ctx, source, key, d, err)
	}
}

func (m multi) OnCacheHit(ctx context.Context, source, key string) {
	for _, h := range m {
		h.OnCacheHit(ctx, source, key)
	}
}

func (m multi) OnDocument(ctx context.Context, source string, diagrams int) {
	for _, h := range m {
		h.OnDocument(ctx, source, diagrams)
	}
}

// Compile-time interface checks.
var (
	_ Hooks = NoopHooks{}
	_ Hooks = (*Counter)(nil)
	_ Hooks = multi(nil)
)
