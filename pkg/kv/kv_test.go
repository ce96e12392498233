package kv

import (
	"context"
	"errors"
	"testing"
)

func TestKeyNamespacing(t *testing.T) {
	t.Parallel()

	if got := CartKey("u-1"); got != "shopfolio:cart:u-1" {
		t.Fatalf("unexpected cart key: %s", got)
	}
	if got := CartKey(""); got != "shopfolio:cart:local" {
		t.Fatalf("unexpected anonymous cart key: %s", got)
	}
	if got := OrdersKey("u-1"); got != "shopfolio:orders:u-1" {
		t.Fatalf("unexpected orders key: %s", got)
	}
	if got := Key("a", "", " b "); got != "shopfolio:a:b" {
		t.Fatalf("expected empty parts skipped and trimmed, got %s", got)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v" {
		t.Fatalf("unexpected value: %s", got)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
