// Package keylock provides per-key mutual exclusion for in-process
// critical sections. The scheduling engine uses it to serialize work on
// individual slots and appointments without a store-wide lock.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock hands out one mutex per key. Keys with no holders or waiters
// are evicted so the map does not grow with the keyspace.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *KeyLock {
	return &KeyLock{entries: make(map[string]*entry)}
}

// Lock acquires every key in the order given and returns a function
// releasing them in reverse order. Callers must pass keys in a fixed
// global order to stay deadlock-free.
func (k *KeyLock) Lock(keys ...string) (unlock func()) {
	for _, key := range keys {
		k.lockOne(key)
	}
	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			k.unlockOne(keys[i])
		}
	}
}

func (k *KeyLock) lockOne(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyLock) unlockOne(key string) {
	k.mu.Lock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
