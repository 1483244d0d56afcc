package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// IR hooks
	ir := NoopIRHooks{}
	ir.OnReadStart(ctx, "model.json")
	ir.OnReadComplete(ctx, "model.json", "json", 42, time.Second, nil)
	ir.OnBuild(ctx, 42, 1, 1, time.Millisecond)
	ir.OnWrite(ctx, "model.pb", "binary", 1024, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := IR().(NoopIRHooks); !ok {
		t.Error("IR() should return NoopIRHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customIR := &testIRHooks{}
	SetIRHooks(customIR)
	if IR() != customIR {
		t.Error("SetIRHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := IR().(NoopIRHooks); !ok {
		t.Error("Reset() should restore NoopIRHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testIRHooks{}
	SetIRHooks(custom)

	// Setting nil should be ignored
	SetIRHooks(nil)

	if IR() != custom {
		t.Error("SetIRHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testIRHooks struct{ NoopIRHooks }
type testCacheHooks struct{ NoopCacheHooks }
