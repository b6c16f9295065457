package geo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/circleworks/beacon/internal/types"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "geocode.db"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_PutGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	want := types.Place{DisplayName: "Toronto, Ontario, Canada", Lat: 43.6534817, Lng: -79.3839347}
	if err := cache.Put(ctx, "toronto", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, "toronto")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get: entry not found")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCache_GetMissing(t *testing.T) {
	cache := newTestCache(t)

	_, ok, err := cache.Get(context.Background(), "atlantis")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Get returned a hit for an absent key")
	}
}

func TestCache_PutReplaces(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "toronto", types.Place{DisplayName: "old", Lat: 1, Lng: 2})
	if err := cache.Put(ctx, "toronto", types.Place{DisplayName: "Toronto", Lat: 43.65, Lng: -79.38}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, _, _ := cache.Get(ctx, "toronto")
	if got.DisplayName != "Toronto" {
		t.Errorf("entry not replaced: %+v", got)
	}

	count, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d entries, want 1", count)
	}
}

func TestCache_Clear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "toronto", types.Place{Lat: 43.65, Lng: -79.38})
	cache.Put(ctx, "vancouver", types.Place{Lat: 49.28, Lng: -123.12})

	removed, err := cache.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear removed %d entries, want 2", removed)
	}

	count, _ := cache.Stats(ctx)
	if count != 0 {
		t.Errorf("got %d entries after clear, want 0", count)
	}
}
