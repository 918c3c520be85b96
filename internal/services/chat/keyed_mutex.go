package chat

import "sync"

// keyedMutex provides one mutex per string key. Used to make session
// find-or-create atomic per document and to serialize turns per session.
// Entries are reference-counted and removed once the last holder unlocks,
// so the map does not grow with the id space.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*keyedLock),
	}
}

// Lock acquires the mutex for key, blocking while another holder owns it
func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &keyedLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
}

// Unlock releases the mutex for key
func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	lock := k.locks[key]
	lock.refs--
	if lock.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	lock.mu.Unlock()
}
