// Package cache provides a namespaced, TTL-bounded cache used in front of
// every outbound Riot API call. Two backends are available: an in-memory
// LRU store and a Redis-backed store for multi-instance deployments.
package cache

import (
	"context"
	"time"
)

// Built-in namespace names, one per upstream resource type.
const (
	NSAccount     = "account"
	NSSummoner    = "summoner"
	NSLeague      = "league"
	NSMastery     = "mastery"
	NSSpectator   = "spectator"
	NSMatchList   = "matchlist"
	NSMatch       = "match"
	NSDeepSignals = "deepsignals"
)

// Namespace configures one logical resource store: its default TTL and the
// maximum number of entries kept before LRU eviction kicks in.
type Namespace struct {
	Name       string
	TTL        time.Duration
	MaxEntries int
}

// DefaultNamespaces returns the namespace table for all Riot resources.
// Identity data is effectively static, live-game snapshots go stale in
// seconds, and finished match details never change.
func DefaultNamespaces() []Namespace {
	return []Namespace{
		{Name: NSAccount, TTL: 24 * time.Hour, MaxEntries: 2000},
		{Name: NSSummoner, TTL: 24 * time.Hour, MaxEntries: 2000},
		{Name: NSLeague, TTL: 30 * time.Minute, MaxEntries: 2000},
		{Name: NSMastery, TTL: 6 * time.Hour, MaxEntries: 2000},
		{Name: NSSpectator, TTL: 10 * time.Second, MaxEntries: 500},
		{Name: NSMatchList, TTL: 5 * time.Minute, MaxEntries: 1000},
		{Name: NSMatch, TTL: 7 * 24 * time.Hour, MaxEntries: 5000},
		{Name: NSDeepSignals, TTL: 3 * time.Hour, MaxEntries: 1000},
	}
}

// Store is the cache contract shared by all endpoint wrappers.
// Misses are not failures: Get reports absence via the bool, and backend
// errors degrade to a miss.
type Store interface {
	// Get returns the cached value, or false when the entry never existed,
	// its TTL elapsed, or it was evicted for capacity.
	Get(ctx context.Context, namespace, key string) ([]byte, bool)

	// Set stores a value. A non-positive ttl uses the namespace default.
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration)

	// Clear drops every entry in the namespace.
	Clear(ctx context.Context, namespace string)
}
