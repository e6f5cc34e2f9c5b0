package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/riftwatch/riot-insights/pkg/logging"
	"github.com/rs/zerolog"
)

// MemoryStore is an in-process Store combining a hash map for O(1) lookup
// with a doubly linked list for LRU ordering, per namespace. Expired entries
// are dropped lazily on Get; capacity pressure evicts from the list tail.
type MemoryStore struct {
	namespaces map[string]*memNamespace
	logger     zerolog.Logger
}

type memNamespace struct {
	cfg     Namespace
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
}

type memEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates a memory store with the given namespace table.
func NewMemoryStore(namespaces []Namespace) *MemoryStore {
	s := &MemoryStore{
		namespaces: make(map[string]*memNamespace, len(namespaces)),
		logger:     logging.NewLogger("cache"),
	}
	for _, ns := range namespaces {
		s.namespaces[ns.Name] = &memNamespace{
			cfg:     ns,
			entries: make(map[string]*list.Element),
			lru:     list.New(),
		}
	}
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, namespace, key string) ([]byte, bool) {
	ns, ok := s.namespaces[namespace]
	if !ok {
		s.logger.Warn().Str("namespace", namespace).Msg("Get on unknown cache namespace")
		CacheMisses.Inc()
		return nil, false
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	elem, ok := ns.entries[key]
	if !ok {
		CacheMisses.Inc()
		return nil, false
	}

	entry := elem.Value.(*memEntry)
	if time.Now().After(entry.expiresAt) {
		ns.lru.Remove(elem)
		delete(ns.entries, key)
		CacheMisses.Inc()
		return nil, false
	}

	ns.lru.MoveToFront(elem)
	CacheHits.WithLabelValues("memory").Inc()
	return entry.value, true
}

// Set implements Store. Existing entries are overwritten and refreshed.
func (s *MemoryStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) {
	ns, ok := s.namespaces[namespace]
	if !ok {
		s.logger.Warn().Str("namespace", namespace).Msg("Set on unknown cache namespace")
		return
	}
	if ttl <= 0 {
		ttl = ns.cfg.TTL
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if elem, exists := ns.entries[key]; exists {
		entry := elem.Value.(*memEntry)
		entry.value = value
		entry.expiresAt = time.Now().Add(ttl)
		ns.lru.MoveToFront(elem)
		return
	}

	elem := ns.lru.PushFront(&memEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	ns.entries[key] = elem

	// Evict least recently used entries over capacity.
	for ns.cfg.MaxEntries > 0 && ns.lru.Len() > ns.cfg.MaxEntries {
		oldest := ns.lru.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*memEntry)
		ns.lru.Remove(oldest)
		delete(ns.entries, evicted.key)
		CacheEvictions.WithLabelValues(namespace).Inc()
	}
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context, namespace string) {
	ns, ok := s.namespaces[namespace]
	if !ok {
		return
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.entries = make(map[string]*list.Element)
	ns.lru.Init()
}

// Len reports the current entry count of a namespace (for tests and stats).
func (s *MemoryStore) Len(namespace string) int {
	ns, ok := s.namespaces[namespace]
	if !ok {
		return 0
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.lru.Len()
}
