package service

import "sync"

// orderLocks serializes payment intake per order id. The lock closes the
// window where two concurrently redelivered webhooks for one order could
// both observe it pending and fulfill twice.
type orderLocks struct {
	mu   sync.Mutex
	held map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

// acquire blocks until the caller holds the lock for orderID and returns
// the release function. Locks are created on demand and dropped once the
// last holder releases.
func (l *orderLocks) acquire(orderID string) func() {
	l.mu.Lock()
	if l.held == nil {
		l.held = make(map[string]*orderLock)
	}
	lock, ok := l.held[orderID]
	if !ok {
		lock = &orderLock{}
		l.held[orderID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.held, orderID)
		}
		l.mu.Unlock()
	}
}
