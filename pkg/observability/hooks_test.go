package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Generate hooks
	g := NoopGenerateHooks{}
	g.OnGenerateStart(ctx, "inverter:abc", "spice", "schematic")
	g.OnGenerateComplete(ctx, "inverter:abc", "spice", "schematic", time.Second, nil)
	g.OnGenerateDedup(ctx, "inverter:abc", "spice", "schematic")

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "cell")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// Export hooks
	e := NoopExportHooks{}
	e.OnExportStart(ctx, "spice", "json")
	e.OnExportComplete(ctx, "spice", "json", 2048, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Generate().(NoopGenerateHooks); !ok {
		t.Error("Generate() should return NoopGenerateHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}

	// Set custom hooks
	customGenerate := &testGenerateHooks{}
	SetGenerateHooks(customGenerate)
	if Generate() != customGenerate {
		t.Error("SetGenerateHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Generate().(NoopGenerateHooks); !ok {
		t.Error("Reset() should restore NoopGenerateHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testGenerateHooks{}
	SetGenerateHooks(custom)

	// Setting nil should be ignored
	SetGenerateHooks(nil)

	if Generate() != custom {
		t.Error("SetGenerateHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testGenerateHooks struct{ NoopGenerateHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testExportHooks struct{ NoopExportHooks }
