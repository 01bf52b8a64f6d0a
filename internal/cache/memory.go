package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the in-process fast tier. TTL expiry is delegated to go-cache;
// this wrapper adds a FIFO bound on the entry count so the tier cannot grow
// without limit.
type Memory struct {
	cache      *gocache.Cache
	maxEntries int

	mu    sync.Mutex
	order []string // insertion order, oldest first
}

// NewMemory creates a bounded in-process cache. maxEntries must be positive.
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		cache:      gocache.New(gocache.NoExpiration, 5*time.Minute),
		maxEntries: maxEntries,
		order:      make([]string, 0, maxEntries),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	value, found := m.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := value.([]byte)
	return data, ok
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cache.Get(key); !exists {
		m.order = append(m.order, key)
	}
	m.cache.Set(key, value, ttl)

	// Evict oldest-inserted entries while over capacity. Keys already
	// expired by go-cache just fall out of the queue.
	for m.cache.ItemCount() > m.maxEntries && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		m.cache.Delete(oldest)
	}
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.cache.Delete(key)
}

func (m *Memory) Clear(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix == "" {
		m.cache.Flush()
		m.order = m.order[:0]
		return nil
	}

	for key := range m.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			m.cache.Delete(key)
		}
	}
	kept := m.order[:0]
	for _, key := range m.order {
		if !strings.HasPrefix(key, prefix) {
			kept = append(kept, key)
		}
	}
	m.order = kept
	return nil
}

// Len returns the current entry count, counting entries go-cache has not yet
// swept out.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}
