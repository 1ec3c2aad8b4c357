// Package cache holds the in-flight registries that keep one review per
// recording entity running at a time.
package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is an in-process registry of entities under review.
// Claims expire after ttl so a crashed job cannot hold an entity forever.
type MemoryRegistry struct {
	mu    sync.Mutex
	items map[string]time.Time
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryRegistry creates a registry whose claims live at most ttl.
// A zero ttl means claims never expire.
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{
		items: make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

// TryAcquire claims entityID and reports whether the claim was granted.
// Check and set happen under one lock.
func (r *MemoryRegistry) TryAcquire(_ context.Context, entityID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if expires, held := r.items[entityID]; held && (expires.IsZero() || now.Before(expires)) {
		return false, nil
	}

	var expires time.Time
	if r.ttl > 0 {
		expires = now.Add(r.ttl)
	}
	r.items[entityID] = expires
	r.cleanupExpired(now)
	return true, nil
}

// Release drops the claim on entityID. Releasing an unheld entity is a no-op.
func (r *MemoryRegistry) Release(_ context.Context, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, entityID)
	return nil
}

// Len returns the number of live claims
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cleanupExpired(r.now())
	return len(r.items)
}

// cleanupExpired removes expired claims; the caller holds the lock
func (r *MemoryRegistry) cleanupExpired(now time.Time) {
	for key, expires := range r.items {
		if !expires.IsZero() && !now.Before(expires) {
			delete(r.items, key)
		}
	}
}
