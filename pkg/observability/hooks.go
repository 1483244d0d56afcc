// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about IR document I/O, graph builds, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the core
// packages free of import cycles and backend dependencies.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetIRHooks(&myIRHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.IR().OnReadStart(ctx, path)
//	// ... decode the document ...
//	observability.IR().OnReadComplete(ctx, path, format, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// IR Hooks
// =============================================================================

// IRHooks receives events from IR document and weight archive operations.
type IRHooks interface {
	// Read events. format is "binary" or "json" on success, "" on failure.
	OnReadStart(ctx context.Context, path string)
	OnReadComplete(ctx context.Context, path, format string, nodeCount int, duration time.Duration, err error)

	// OnBuild records a graph build with the sizes of the derived sequences.
	OnBuild(ctx context.Context, nodeCount, inputCount, outputCount int, duration time.Duration)

	// OnWrite records a file written in the given format ("json", "binary",
	// "weights" or "text").
	OnWrite(ctx context.Context, path, format string, size int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIRHooks is a no-op implementation of IRHooks.
type NoopIRHooks struct{}

func (NoopIRHooks) OnReadStart(context.Context, string)                                       {}
func (NoopIRHooks) OnReadComplete(context.Context, string, string, int, time.Duration, error) {}
func (NoopIRHooks) OnBuild(context.Context, int, int, int, time.Duration)                     {}
func (NoopIRHooks) OnWrite(context.Context, string, string, int, error)                       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	irHooks    IRHooks    = NoopIRHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetIRHooks registers custom IR hooks.
// This should be called once at application startup before any document is read.
func SetIRHooks(h IRHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		irHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// IR returns the registered IR hooks.
func IR() IRHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return irHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	irHooks = NoopIRHooks{}
	cacheHooks = NoopCacheHooks{}
}
