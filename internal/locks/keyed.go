// Package locks provides per-key mutual exclusion for webhook processing.
// Concurrent deliveries for the same external request id serialize on one
// lock; deliveries for distinct requests proceed unconstrained.
package locks

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex hands out one mutex per key. Idle locks are reclaimed once the
// last holder releases, so the key space can grow without bound over time
// without the map doing the same.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
