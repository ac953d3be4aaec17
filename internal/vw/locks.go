package vw

import (
	"slices"
	"sync"
)

// vaultLocks serialises mutation per vault. Multi-vault operations take the
// locks in lexicographic id order so two of them can never deadlock.
type vaultLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newVaultLocks() *vaultLocks {
	return &vaultLocks{locks: make(map[string]*refMutex)}
}

// lock acquires the locks of every distinct non-empty id and returns the release func.
func (l *vaultLocks) lock(ids ...string) func() {
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			ordered = append(ordered, id)
		}
	}
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]*refMutex, 0, len(ordered))
	for _, id := range ordered {
		m := l.acquire(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *vaultLocks) acquire(id string) *refMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	return m
}

func (l *vaultLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.locks[id]
	m.refs--
	if m.refs == 0 {
		delete(l.locks, id)
	}
}
