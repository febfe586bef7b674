// Package multistore provides a multi-tiered store that cascades through
// several httpcache MetadataStore or BlobStore backends with automatic
// fallback and promotion, letting hot entries migrate toward faster
// tiers while persistence lives in the slower ones.
package multistore

import (
	"context"

	"github.com/arnavsurve/httpcache"
)

// store is the minimal shape MetadataStore and BlobStore share; Tiered
// is built against it so one implementation serves both roles.
type store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Tiered cascades through stores ordered fastest/smallest (first) to
// slowest/largest (last). Get searches each tier in order and promotes a
// value found in a slower tier to every faster tier ahead of it. Set and
// Delete apply to every tier, keeping them consistent.
//
// Typical arrangement:
//   - Tier 1: MemoryStore (fast, volatile)
//   - Tier 2: redisstore.Store (shared, persistent)
//   - Tier 3: diskstore.Store or blobcache.Store (slow, durable)
type Tiered struct {
	tiers []store
}

// New builds a Tiered store from at least one tier. Returns nil if no
// tiers are given or any tier is nil.
func New(tiers ...store) *Tiered {
	if len(tiers) == 0 {
		return nil
	}
	for _, t := range tiers {
		if t == nil {
			return nil
		}
	}
	return &Tiered{tiers: tiers}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, tier := range t.tiers {
		value, ok, err := tier.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			_ = t.promote(ctx, key, value, i) //nolint:errcheck // promotion is best-effort
			return value, true, nil
		}
	}
	return nil, false, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte) error {
	for _, tier := range t.tiers {
		if err := tier.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	for _, tier := range t.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// promote writes value to every tier faster than the one it was found
// at, so the next Get for key is satisfied without falling through.
func (t *Tiered) promote(ctx context.Context, key string, value []byte, foundAt int) error {
	for i := 0; i < foundAt; i++ {
		if err := t.tiers[i].Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ httpcache.MetadataStore = (*Tiered)(nil)
	_ httpcache.BlobStore     = (*Tiered)(nil)
)
