package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

var _ Store = (*InMemoryStore)(nil)

func TestInMemoryStore_GetAndPut(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	rec, err := store.Get(ctx, "ns", "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record on miss, got %#v", rec)
	}

	if err := store.Put(ctx, "ns", "k1", map[string]any{"name": "Jordan", "visits": 2}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	rec, err = store.Get(ctx, "ns", "k1")
	if err != nil || rec == nil {
		t.Fatalf("get failed: %v %v", rec, err)
	}
	if rec.Namespace != "ns" || rec.Key != "k1" || rec.Value["name"] != "Jordan" {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Fatalf("expected a timestamp")
	}

	// mutation safety (returned value is a copy)
	rec.Value["name"] = "changed"
	rec2, _ := store.Get(ctx, "ns", "k1")
	if rec2.Value["name"] != "Jordan" {
		t.Fatalf("expected copy isolation, got %v", rec2.Value["name"])
	}
}

func TestInMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.Put(ctx, "ns", "k", map[string]any{"v": 1}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "ns", "k", map[string]any{"v": 2}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	rec, _ := store.Get(ctx, "ns", "k")
	if rec == nil || rec.Value["v"] != 2 {
		t.Fatalf("expected last write to win, got %#v", rec)
	}
}

func TestInMemoryStore_Search(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_ = store.Put(ctx, "ns", "cust-1", map[string]any{"note": "asked about pricing"})
	_ = store.Put(ctx, "ns", "cust-2", map[string]any{"note": "requested a demo"})
	_ = store.Put(ctx, "other", "cust-3", map[string]any{"note": "pricing question"})

	res, err := store.Search(ctx, "ns", "pricing")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res) != 1 || res[0].Key != "cust-1" {
		t.Fatalf("expected cust-1 only, got %#v", res)
	}

	// key substring matches too
	res, _ = store.Search(ctx, "ns", "cust")
	if len(res) != 2 {
		t.Fatalf("expected 2 matches on key substring, got %d", len(res))
	}
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Put(ctx, "ns", fmt.Sprintf("k%d", n), map[string]any{"n": n})
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = store.Get(ctx, "ns", fmt.Sprintf("k%d", n))
			_, _ = store.Search(ctx, "ns", "k")
		}(i)
	}
	wg.Wait()
}
