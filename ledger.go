package gecs

import (
	"sync"
)

// resourceKey is the atomic unit of locking: one component type on one
// entity. Keys are ordered by (entity, component); that total order is what
// the acquisition engine sorts by.
type resourceKey struct {
	entity    Entity
	component ComponentID
}

// lease is one grant recorded against a resource key: which acquisition
// holds it and in what mode.
type lease struct {
	query uint64
	mode  AccessMode
}

// ledger tracks currently granted leases per resource key. It is the single
// piece of shared mutable state in the acquisition engine; all mutation for
// a batch happens under one critical section spanning the entire key set,
// never per key.
type ledger struct {
	mu     sync.Mutex
	leases map[resourceKey][]lease
}

func newLedger() *ledger {
	return &ledger{leases: make(map[resourceKey][]lease)}
}

// compatible reports whether a candidate mode can be granted on a key given
// its existing leases: an empty lease set is compatible with anything, and
// readers are compatible with readers. A write is compatible only with an
// empty set.
func compatible(existing []lease, mode AccessMode) bool {
	if len(existing) == 0 {
		return true
	}
	if mode == AccessWrite {
		return false
	}
	for _, l := range existing {
		if l.mode == AccessWrite {
			return false
		}
	}
	return true
}

// tryGrant tests every key in the batch for compatibility and, only if all
// of them pass, records a lease for each — all inside a single critical
// section. If any key is incompatible, nothing is committed. Partial grants
// are never observable.
//
// The reqs slice must already be sorted and deduplicated (Query.resolve).
func (l *ledger) tryGrant(query uint64, reqs []keyRequest) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range reqs {
		if !compatible(l.leases[r.key], r.mode) {
			return false
		}
	}
	for _, r := range reqs {
		l.leases[r.key] = append(l.leases[r.key], lease{query: query, mode: r.mode})
	}
	return true
}

// release removes the lease tagged with the given query from every listed
// key. Keys whose lease set becomes empty are deleted outright, so ledger
// memory is bounded by current contention rather than historical activity.
func (l *ledger) release(query uint64, keys []resourceKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range keys {
		leases := l.leases[key]
		for i, held := range leases {
			if held.query == query {
				leases = append(leases[:i], leases[i+1:]...)
				break
			}
		}
		if len(leases) == 0 {
			delete(l.leases, key)
		} else {
			l.leases[key] = leases
		}
	}
}

// activeKeyCount returns the number of distinct resource keys currently
// held by anyone.
func (l *ledger) activeKeyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leases)
}

// holders returns the leases recorded for a key. For diagnostics and tests.
func (l *ledger) holders(key resourceKey) []lease {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]lease, len(l.leases[key]))
	copy(out, l.leases[key])
	return out
}

// reset discards all bookkeeping without notifying guards. Outstanding
// guards will later release leases that no longer exist, which the release
// path tolerates. Emergency use only.
func (l *ledger) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leases = make(map[resourceKey][]lease)
}
