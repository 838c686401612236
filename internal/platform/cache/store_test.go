package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "enrichment:k-1", "record-1")

	got, ok := store.Get(ctx, "enrichment:k-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "record-1" {
		t.Fatalf("unexpected value: %v", got)
	}

	if _, ok := store.Get(ctx, "enrichment:k-2"); ok {
		t.Fatal("expected cache miss for unknown key")
	}
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "enrichment:k-1", "record-1")
	time.Sleep(5 * time.Millisecond)

	if _, ok := store.Get(ctx, "enrichment:k-1"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()

	store.Set(ctx, "enrichment:k-1", "record-1")
	time.Sleep(2 * time.Millisecond)

	if _, ok := store.Get(ctx, "enrichment:k-1"); !ok {
		t.Fatal("expected entry to stay cached")
	}
}

func TestStoreEmptyKeyIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "", "record-1")
	if _, ok := store.Get(ctx, ""); ok {
		t.Fatal("expected empty key to bypass the store")
	}
}

func TestStoreDeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "enrichment:k-1", "record-1")
	store.Set(ctx, "enrichment:k-2", "record-2")
	store.Set(ctx, "balance:u-1", int64(5))

	store.DeletePrefix(ctx, "enrichment:")

	if _, ok := store.Get(ctx, "enrichment:k-1"); ok {
		t.Fatal("expected prefixed entry to be deleted")
	}
	if _, ok := store.Get(ctx, "enrichment:k-2"); ok {
		t.Fatal("expected prefixed entry to be deleted")
	}
	if _, ok := store.Get(ctx, "balance:u-1"); !ok {
		t.Fatal("expected unrelated entry to survive")
	}
}

func TestStoreGetOrLoadCachesLoaderResult(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	var calls atomic.Int64
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "record-1", nil
	}

	for i := 0; i < 3; i++ {
		got, err := store.GetOrLoad(ctx, "enrichment:k-1", loader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "record-1" {
			t.Fatalf("unexpected value: %v", got)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one loader call, got %d", calls.Load())
	}
}

func TestStoreGetOrLoadDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	wantErr := errors.New("provider down")
	var calls atomic.Int64
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, wantErr
	}

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "enrichment:k-1", loader); !errors.Is(err, wantErr) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if calls.Load() != 2 {
		t.Fatalf("expected failed loads to retry, got %d calls", calls.Load())
	}
}
