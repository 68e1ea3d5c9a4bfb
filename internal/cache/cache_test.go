package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/web3insight/go-insight-backend/internal/classify"
	"github.com/web3insight/go-insight-backend/internal/providers"
)

// countingProvider returns a fixed payload (or error) and records call counts.
type countingProvider struct {
	payload json.RawMessage
	err     error
	calls   int
}

func (p *countingProvider) Lookup(ctx context.Context, kind classify.Kind, identifier string) (json.RawMessage, error) {
	p.calls++
	return p.payload, p.err
}

func TestKey_Prefixes(t *testing.T) {
	cases := []struct {
		kind classify.Kind
		id   string
		want string
	}{
		{classify.KindEVMAddress, "vitalik.eth", "evm:address:vitalik.eth"},
		{classify.KindGitHubRepo, "a/b", "github:repo:a/b"},
		{classify.KindGitHubUser, "pseudoyu", "github:user:pseudoyu"},
		{classify.KindUnclassified, "x", "unclassified:x"},
	}
	for _, tc := range cases {
		if got := Key(tc.kind, tc.id); got != tc.want {
			t.Fatalf("Key(%v, %q) = %q; want %q", tc.kind, tc.id, got, tc.want)
		}
	}
}

func TestFetch_MissThenHit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prov := &countingProvider{payload: json.RawMessage(`{"stars":42}`)}
	pc := New(store, prov, time.Hour)

	// First fetch reads through.
	raw, err := pc.Fetch(ctx, classify.KindGitHubRepo, "a/b")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(raw) != `{"stars":42}` {
		t.Fatalf("payload = %s", raw)
	}
	if prov.calls != 1 {
		t.Fatalf("provider calls = %d; want 1", prov.calls)
	}

	// Second fetch is served from cache.
	if _, err := pc.Fetch(ctx, classify.KindGitHubRepo, "a/b"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if prov.calls != 1 {
		t.Fatalf("cached fetch must not call provider again, calls = %d", prov.calls)
	}
}

func TestFetch_ExpiryRefetches(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prov := &countingProvider{payload: json.RawMessage(`{"ok":true}`)}
	pc := New(store, prov, 20*time.Millisecond)

	if _, err := pc.Fetch(ctx, classify.KindGitHubUser, "pseudoyu"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := pc.Fetch(ctx, classify.KindGitHubUser, "pseudoyu"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if prov.calls != 2 {
		t.Fatalf("expired entry should trigger a refetch, calls = %d", prov.calls)
	}
}

func TestFetch_ProviderFailureNotCached(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prov := &countingProvider{err: providers.ErrUnavailable}
	pc := New(store, prov, time.Hour)

	if _, err := pc.Fetch(ctx, classify.KindGitHubRepo, "a/b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Failure leaves no cache entry; a recovered provider is reached.
	prov.err = nil
	prov.payload = json.RawMessage(`{"stars":1}`)
	raw, err := pc.Fetch(ctx, classify.KindGitHubRepo, "a/b")
	if err != nil {
		t.Fatalf("Fetch after recovery: %v", err)
	}
	if string(raw) != `{"stars":1}` {
		t.Fatalf("payload = %s", raw)
	}
	if prov.calls != 2 {
		t.Fatalf("provider calls = %d; want 2", prov.calls)
	}
}

func TestFetch_EmptyPayloadNeverCachedNorServed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prov := &countingProvider{payload: json.RawMessage(`{}`)}
	pc := New(store, prov, time.Hour)

	if _, err := pc.Fetch(ctx, classify.KindGitHubUser, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty payload should be ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, Key(classify.KindGitHubUser, "ghost")); !errors.Is(err, ErrMiss) {
		t.Fatalf("empty payload must not be written to the store")
	}
}

func TestFetch_PoisonedEntryTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prov := &countingProvider{payload: json.RawMessage(`{"repaired":true}`)}
	pc := New(store, prov, time.Hour)

	// Simulate an empty object that slipped into the store.
	key := Key(classify.KindGitHubRepo, "a/b")
	if err := store.SetEX(ctx, key, `{}`, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}

	raw, err := pc.Fetch(ctx, classify.KindGitHubRepo, "a/b")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(raw) != `{"repaired":true}` {
		t.Fatalf("expected refetched payload, got %s", raw)
	}
	if prov.calls != 1 {
		t.Fatalf("provider calls = %d; want 1", prov.calls)
	}
}

func TestSemanticallyEmpty(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{``, true},
		{`null`, true},
		{`{}`, true},
		{`[]`, true},
		{`""`, true},
		{`{"a":1}`, false},
		{`[0]`, false},
		{`"text"`, false},
		{`0`, false},
		{`false`, false},
		{`not json`, true},
	}
	for _, tc := range cases {
		if got := SemanticallyEmpty(json.RawMessage(tc.raw)); got != tc.want {
			t.Fatalf("SemanticallyEmpty(%q) = %v; want %v", tc.raw, got, tc.want)
		}
	}
}
