package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/web3insight/go-insight-backend/internal/classify"
	"github.com/web3insight/go-insight-backend/internal/providers"
)

// ErrNotFound is returned by Fetch when neither the cache nor the provider
// could produce a usable payload for the identifier.
var ErrNotFound = errors.New("entity data not found")

// ProviderCache is the read-through cache in front of the external data
// providers, keyed by (kind, identifier) with a fixed TTL.
//
// An entry that is present and unexpired is authoritative and served
// without a provider round-trip. A payload that is semantically empty (an
// empty JSON object, array, or null) is treated the same as a miss: it is
// never served and never written, which keeps failed provider responses
// that serialized to "{}" out of the cache.
//
// Concurrent misses for the same key each call the provider independently;
// last writer wins on the cache entry. Coalescing in-flight fetches was
// considered and deliberately left out (see DESIGN.md).
type ProviderCache struct {
	store    Store
	provider providers.Provider
	ttl      time.Duration
}

// New builds a ProviderCache over the given store and provider.
func New(store Store, provider providers.Provider, ttl time.Duration) *ProviderCache {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &ProviderCache{store: store, provider: provider, ttl: ttl}
}

// Key renders the store key for one (kind, identifier) pair.
func Key(kind classify.Kind, identifier string) string {
	switch kind {
	case classify.KindEVMAddress:
		return "evm:address:" + identifier
	case classify.KindGitHubRepo:
		return "github:repo:" + identifier
	case classify.KindGitHubUser:
		return "github:user:" + identifier
	default:
		return "unclassified:" + identifier
	}
}

// Fetch returns the payload for the classified identifier, reading through
// to the provider on a miss. Exactly one external call happens per miss;
// provider failures are mapped to ErrNotFound and never cached.
func (p *ProviderCache) Fetch(ctx context.Context, kind classify.Kind, identifier string) (json.RawMessage, error) {
	tr := otel.Tracer("cache/ProviderCache")
	ctx, span := tr.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity.kind", kind.String()),
		attribute.String("entity.identifier", identifier),
	)

	key := Key(kind, identifier)

	if cached, err := p.store.Get(ctx, key); err == nil {
		if !SemanticallyEmpty(json.RawMessage(cached)) {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return json.RawMessage(cached), nil
		}
		// An empty object slipped in somehow; fall through and refetch.
	} else if !errors.Is(err, ErrMiss) {
		// Store trouble is not fatal to the resolution; treat as a miss.
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	payload, err := p.provider.Lookup(ctx, kind, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if SemanticallyEmpty(payload) {
		return nil, fmt.Errorf("%w: provider returned empty payload", ErrNotFound)
	}

	if err := p.store.SetEX(ctx, key, string(payload), p.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return payload, nil
}

// SemanticallyEmpty reports whether raw carries no usable data: empty
// bytes, JSON null, an object with no keys, or an array with no elements.
func SemanticallyEmpty(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}
