package gecs

import (
	"sync/atomic"
)

// Guard is the handle returned by a successful acquisition. It is the sole
// owner of the batch's leases: dropping it — on any path, including error
// returns — releases exactly those leases and nothing else.
//
// A guard must not be copied or shared between owners; duplicating it would
// misrepresent how many leases are outstanding. Pass it by pointer and call
// Release exactly once, typically via defer.
type Guard struct {
	world    *World
	query    uint64
	keys     []resourceKey
	released atomic.Bool
}

func (w *World) newGuard(query uint64, reqs []keyRequest) *Guard {
	keys := make([]resourceKey, len(reqs))
	for i, r := range reqs {
		keys[i] = r.key
	}
	return &Guard{world: w, query: query, keys: keys}
}

// View retrieves the component cell of type T for an entity through the
// guard. It delegates to the component table without re-checking the
// ledger: possession of the guard is the proof of the lease.
//
// Returns false if the entity has no component of type T.
func View[T any](g *Guard, e Entity) (*Cell[T], bool) {
	if g == nil || g.released.Load() {
		return nil, false
	}
	return Get[T](g.world, e)
}

// Release frees every lease this guard owns. Calling Release more than
// once is a no-op; a guard acquired from an empty query releases nothing.
func (g *Guard) Release() {
	if g == nil || g.released.Swap(true) {
		return
	}
	if len(g.keys) == 0 {
		return
	}
	g.world.ledger.release(g.query, g.keys)
}

// Released reports whether the guard has been released.
func (g *Guard) Released() bool {
	return g.released.Load()
}

// Entities returns the distinct entities covered by this guard's leases,
// in ascending order.
func (g *Guard) Entities() []Entity {
	out := make([]Entity, 0, len(g.keys))
	for _, key := range g.keys {
		// keys are sorted by entity, so duplicates are adjacent
		if len(out) == 0 || out[len(out)-1] != key.entity {
			out = append(out, key.entity)
		}
	}
	return out
}

// Len returns the number of resource keys this guard holds.
func (g *Guard) Len() int {
	return len(g.keys)
}
