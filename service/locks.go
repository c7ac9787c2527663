package service

import (
	"sort"
	"sync"
)

// AccountLocks serializes mutating operations per user so that
// check-then-mutate sequences (affordability checks, session lookups)
// cannot interleave for the same account. Locks are never held across a
// session's idle wait, only for the duration of one operation.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewAccountLocks creates an empty per-user lock registry shared by all
// services that mutate balances.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *AccountLocks) lockFor(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}

// Lock acquires the lock for a single user.
func (l *AccountLocks) Lock(userID int64) func() {
	m := l.lockFor(userID)
	m.Lock()
	return m.Unlock
}

// LockPair acquires locks for two users in ascending ID order so that
// concurrent transfers between the same pair cannot deadlock.
func (l *AccountLocks) LockPair(a, b int64) func() {
	ids := []int64{a, b}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	first := l.lockFor(ids[0])
	second := l.lockFor(ids[1])

	first.Lock()
	if ids[0] != ids[1] {
		second.Lock()
	}
	return func() {
		if ids[0] != ids[1] {
			second.Unlock()
		}
		first.Unlock()
	}
}
