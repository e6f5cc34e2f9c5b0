package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func testNamespaces() []Namespace {
	return []Namespace{
		{Name: "short", TTL: 50 * time.Millisecond, MaxEntries: 100},
		{Name: "tiny", TTL: time.Hour, MaxEntries: 3},
		{Name: "other", TTL: time.Hour, MaxEntries: 100},
	}
}

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	store.Set(ctx, "other", "k1", []byte("v1"), 0)

	got, ok := store.Get(ctx, "other", "k1")
	if !ok {
		t.Fatal("Get returned miss for a fresh entry")
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}
}

func TestMemoryStore_MissOnAbsent(t *testing.T) {
	store := NewMemoryStore(testNamespaces())

	if _, ok := store.Get(context.Background(), "other", "nope"); ok {
		t.Error("Get returned hit for a key that was never set")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	store.Set(ctx, "short", "k", []byte("v"), 0)

	if _, ok := store.Get(ctx, "short", "k"); !ok {
		t.Fatal("entry missing before TTL elapsed")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := store.Get(ctx, "short", "k"); ok {
		t.Error("Get returned hit after TTL elapsed")
	}
	if got := store.Len("short"); got != 0 {
		t.Errorf("Len = %d after lazy expiry, want 0", got)
	}
}

func TestMemoryStore_ExplicitTTLOverridesDefault(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	// Namespace default is an hour; the explicit TTL must win.
	store.Set(ctx, "other", "k", []byte("v"), 30*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, ok := store.Get(ctx, "other", "k"); ok {
		t.Error("entry outlived its explicit TTL")
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		store.Set(ctx, "tiny", fmt.Sprintf("k%d", i), []byte("v"), 0)
	}

	// Touch k0 so k1 becomes the least recently used.
	store.Get(ctx, "tiny", "k0")

	store.Set(ctx, "tiny", "k3", []byte("v"), 0)

	if got := store.Len("tiny"); got != 3 {
		t.Fatalf("Len = %d after eviction, want 3", got)
	}
	if _, ok := store.Get(ctx, "tiny", "k1"); ok {
		t.Error("least recently used entry k1 survived eviction")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := store.Get(ctx, "tiny", key); !ok {
			t.Errorf("entry %s was evicted, want kept", key)
		}
	}
}

func TestMemoryStore_OverwriteRefreshes(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	store.Set(ctx, "other", "k", []byte("old"), 0)
	store.Set(ctx, "other", "k", []byte("new"), 0)

	got, ok := store.Get(ctx, "other", "k")
	if !ok || string(got) != "new" {
		t.Errorf("Get = %q (hit %v), want refreshed value", got, ok)
	}
	if store.Len("other") != 1 {
		t.Errorf("Len = %d after overwrite, want 1", store.Len("other"))
	}
}

func TestMemoryStore_NamespaceIsolation(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	store.Set(ctx, "tiny", "shared-key", []byte("tiny-value"), 0)
	store.Set(ctx, "other", "shared-key", []byte("other-value"), 0)

	got, _ := store.Get(ctx, "tiny", "shared-key")
	if string(got) != "tiny-value" {
		t.Errorf("tiny namespace = %q, want tiny-value", got)
	}

	store.Clear(ctx, "tiny")

	if _, ok := store.Get(ctx, "tiny", "shared-key"); ok {
		t.Error("tiny namespace survived Clear")
	}
	if _, ok := store.Get(ctx, "other", "shared-key"); !ok {
		t.Error("Clear on tiny namespace leaked into other namespace")
	}
}

func TestMemoryStore_UnknownNamespace(t *testing.T) {
	store := NewMemoryStore(testNamespaces())
	ctx := context.Background()

	// Degrades to a miss, never panics.
	store.Set(ctx, "ghost", "k", []byte("v"), 0)
	if _, ok := store.Get(ctx, "ghost", "k"); ok {
		t.Error("unknown namespace returned a hit")
	}
	store.Clear(ctx, "ghost")
}

func TestDefaultNamespaces_CoverAllResources(t *testing.T) {
	want := []string{NSAccount, NSSummoner, NSLeague, NSMastery, NSSpectator, NSMatchList, NSMatch, NSDeepSignals}

	table := DefaultNamespaces()
	byName := make(map[string]Namespace, len(table))
	for _, ns := range table {
		byName[ns.Name] = ns
	}

	for _, name := range want {
		ns, ok := byName[name]
		if !ok {
			t.Errorf("namespace %s missing from defaults", name)
			continue
		}
		if ns.TTL <= 0 {
			t.Errorf("namespace %s has non-positive TTL", name)
		}
		if ns.MaxEntries <= 0 {
			t.Errorf("namespace %s has non-positive capacity", name)
		}
	}

	// Live-game snapshots must go stale fast.
	if byName[NSSpectator].TTL > time.Minute {
		t.Errorf("spectator TTL = %v, want seconds-scale", byName[NSSpectator].TTL)
	}
}
