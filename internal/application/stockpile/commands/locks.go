package commands

import "sync"

type lockKey struct {
	userID int64
	typeID int32
}

// MaterialLocks serializes resizes of the same material for the same user. Different
// materials never wait on each other.
type MaterialLocks struct {
	mu    sync.Mutex
	locks map[lockKey]*sync.Mutex
}

// NewMaterialLocks creates an empty lock table
func NewMaterialLocks() *MaterialLocks {
	return &MaterialLocks{locks: make(map[lockKey]*sync.Mutex)}
}

// Lock acquires the lock for (userID, typeID) and returns its release function
func (l *MaterialLocks) Lock(userID int64, typeID int32) func() {
	key := lockKey{userID: userID, typeID: typeID}

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
