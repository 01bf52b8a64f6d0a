// Package cache implements the gateway's tiered response cache: a bounded
// in-process fast tier in front of an optional Redis fallback tier. Caching is
// an optimization only; every tier degrades to a miss rather than failing the
// request path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/affgate/affgate/pkg/constants"
)

// Store is a TTL-based byte cache. Get reports a miss for absent or expired
// entries; Set is best-effort and never fails the caller.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// Clear removes all entries whose key starts with prefix; an empty
	// prefix removes everything.
	Clear(ctx context.Context, prefix string) error
}

// Key derives the deterministic cache key for a logical method and its
// normalized parameters. Parameter insertion order never changes the key: the
// pairs are sorted before hashing. The method name stays in the clear so
// administrative invalidation can target one method via KeyPrefix.
func Key(method string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(method))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(params[k]))
	}

	return KeyPrefix(method) + hex.EncodeToString(h.Sum(nil))
}

// KeyPrefix returns the key namespace for a logical method, or the global
// namespace when method is empty.
func KeyPrefix(method string) string {
	if method == "" {
		return constants.CacheKeyPrefix
	}
	return constants.CacheKeyPrefix + strings.ReplaceAll(method, ":", "_") + ":"
}

// Noop is a Store that caches nothing. Used when no cache backend is
// available so the gateway keeps working without one.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration) {}
func (Noop) Delete(context.Context, string)                     {}
func (Noop) Clear(context.Context, string) error                { return nil }
