package concurrency

import (
	"sync"
)

// LockManager hands out named locks. Every multi-step read-modify-write
// against a single user's record and inventory must run under that user's
// lock; cross-user operations take no shared lock.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns the mutex for the given key, creating it on first use.
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// WithLock runs fn while holding the named lock.
func (lm *LockManager) WithLock(key string, fn func() error) error {
	lock := lm.GetLock(key)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}
