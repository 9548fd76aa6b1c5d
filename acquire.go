package gecs

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

// ErrUnavailable is returned by TryAcquire when one or more requested keys
// are currently held in an incompatible mode. It is an expected condition
// under contention, not a program error; frame-based callers typically skip
// the work until the next frame.
var ErrUnavailable = errors.New("gecs: requested components unavailable")

// ErrUnknownEntity is returned when a query references an entity this world
// never issued. Nothing is granted, even if every other key in the query
// was free. Unlike ErrUnavailable this usually indicates a programming
// error in the caller.
var ErrUnknownEntity = errors.New("gecs: unknown entity")

// Acquire grants every (entity, component) pair the query describes as one
// indivisible batch, blocking until the whole batch can be granted. On
// success the returned guard owns the batch; releasing it frees every pair
// at once.
//
// The wait is a cooperative retry loop: each failed pass yields the
// processor and re-evaluates, so a releasing holder is always observable to
// a waiter. The loop aborts with the context's error if ctx is cancelled.
// There is no fairness guarantee; a caller can in principle be starved by a
// stream of shorter-lived competing acquisitions.
//
// An empty query succeeds immediately with a guard that owns nothing.
func (w *World) Acquire(ctx context.Context, q *Query) (*Guard, error) {
	query, reqs, err := w.prepare(q)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return w.newGuard(query, nil), nil
	}

	for {
		if w.ledger.tryGrant(query, reqs) {
			return w.newGuard(query, reqs), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		runtime.Gosched()
	}
}

// TryAcquire is the non-blocking variant of Acquire: it makes exactly one
// all-or-nothing pass over the ledger and returns ErrUnavailable if any key
// is incompatibly held. It never suspends.
func (w *World) TryAcquire(q *Query) (*Guard, error) {
	query, reqs, err := w.prepare(q)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return w.newGuard(query, nil), nil
	}

	if !w.ledger.tryGrant(query, reqs) {
		return nil, ErrUnavailable
	}
	return w.newGuard(query, reqs), nil
}

// prepare assigns a fresh query ID, resolves the query into its sorted key
// set, and validates that every referenced entity was issued by this world.
func (w *World) prepare(q *Query) (uint64, []keyRequest, error) {
	query := w.nextQueryID.Add(1)

	reqs := q.resolve()
	issued := Entity(w.nextEntity.Load())
	for _, r := range reqs {
		if r.key.entity >= issued {
			return 0, nil, fmt.Errorf("%w: entity %d was never created", ErrUnknownEntity, r.key.entity)
		}
	}
	return query, reqs, nil
}
