package cache

import (
	"context"
	"testing"
)

func TestLRU_GetSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Errorf("expected miss")
	}

	_ = c.Set(ctx, "a", "1")
	_ = c.Set(ctx, "b", "2")
	_ = c.Set(ctx, "c", "3")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Errorf("expected oldest entry to be evicted")
	}
	if v, ok := c.Get(ctx, "c"); !ok || v != "3" {
		t.Errorf("expected 3, got %q (%v)", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestNewLRU_InvalidSize(t *testing.T) {
	if _, err := NewLRU(0); err == nil {
		t.Errorf("expected error for zero size")
	}
}

func TestPredictionKey(t *testing.T) {
	a := PredictionKey("Ridge", 28.6139, 77.209)
	b := PredictionKey("Ridge", 28.6139, 77.2090)
	if a != b {
		t.Errorf("expected equal keys, got %q and %q", a, b)
	}
	if a != "co2:Ridge:28.6139,77.209" {
		t.Errorf("unexpected key %q", a)
	}
	if PredictionKey("SVR", 28.6139, 77.209) == a {
		t.Errorf("expected model name to be part of the key")
	}
}
