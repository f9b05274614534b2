package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory("test")
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v1" {
		t.Fatalf("Get = %q, want %q", got, "v1")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	c := NewMemory("")
	defer c.Close()

	_, err := c.Get(context.Background(), "nope")
	if !IsNotFound(err) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryTTLExpires(t *testing.T) {
	c := NewMemory("")
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("Get expired = %v, want ErrNotFound", err)
	}
	ok, err := c.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("Exists expired = true, want false")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory("")
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("Get deleted = %v, want ErrNotFound", err)
	}
}

func TestMemoryPrefixIsolation(t *testing.T) {
	a := NewMemory("a")
	defer a.Close()
	ctx := context.Background()

	_ = a.Set(ctx, "k", "v", 0)
	stats, err := a.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Driver != "memory" || stats.Keys != 1 {
		t.Fatalf("Stats = %+v, want memory/1 key", stats)
	}
}

func TestMemoryCleanup(t *testing.T) {
	c := NewMemory("")
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "gone", "v", time.Millisecond)
	_ = c.Set(ctx, "stays", "v", 0)
	time.Sleep(5 * time.Millisecond)
	c.cleanup()

	stats, _ := c.Stats(ctx)
	if stats.Keys != 1 {
		t.Fatalf("Keys after cleanup = %d, want 1", stats.Keys)
	}
}

func TestNewFactoryDefaultsToMemory(t *testing.T) {
	c, err := New(Config{Kind: ""})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
