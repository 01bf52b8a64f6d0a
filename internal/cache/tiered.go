package cache

import (
	"context"
	"errors"
	"time"
)

// backfillTTL bounds how long a fallback-tier hit is pinned in the fast tier.
// The fallback entry keeps its own authoritative TTL.
const backfillTTL = time.Minute

// Tiered queries a fast tier first and an optional fallback tier second,
// promoting fallback hits into the fast tier.
type Tiered struct {
	fast     Store
	fallback Store
}

// NewTiered composes the two tiers. fallback may be nil, in which case the
// cache is fast-tier only.
func NewTiered(fast, fallback Store) *Tiered {
	if fast == nil {
		fast = Noop{}
	}
	return &Tiered{fast: fast, fallback: fallback}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if data, found := t.fast.Get(ctx, key); found {
		return data, true
	}
	if t.fallback == nil {
		return nil, false
	}
	data, found := t.fallback.Get(ctx, key)
	if !found {
		return nil, false
	}
	t.fast.Set(ctx, key, data, backfillTTL)
	return data, true
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	t.fast.Set(ctx, key, value, ttl)
	if t.fallback != nil {
		t.fallback.Set(ctx, key, value, ttl)
	}
}

func (t *Tiered) Delete(ctx context.Context, key string) {
	t.fast.Delete(ctx, key)
	if t.fallback != nil {
		t.fallback.Delete(ctx, key)
	}
}

func (t *Tiered) Clear(ctx context.Context, prefix string) error {
	err := t.fast.Clear(ctx, prefix)
	if t.fallback != nil {
		err = errors.Join(err, t.fallback.Clear(ctx, prefix))
	}
	return err
}

// FastLen returns the fast-tier entry count when the tier exposes one.
func (t *Tiered) FastLen() int {
	if sized, ok := t.fast.(interface{ Len() int }); ok {
		return sized.Len()
	}
	return -1
}

// HasFallback reports whether a fallback tier is configured.
func (t *Tiered) HasFallback() bool {
	return t.fallback != nil
}
