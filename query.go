package gecs

import (
	"slices"
)

// AccessMode is the kind of access a query requests for a component.
type AccessMode uint8

const (
	// AccessRead requests shared access; any number of concurrent readers
	// may hold the same (entity, component) pair.
	AccessRead AccessMode = iota

	// AccessWrite requests exclusive access; no other lease of any mode may
	// coexist on the pair.
	AccessWrite
)

// String returns the string representation of the access mode.
func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	default:
		return "Unknown"
	}
}

// accessRequest is one builder entry: a component type, the entities it is
// requested on, and the access mode.
type accessRequest struct {
	component ComponentID
	entities  []Entity
	mode      AccessMode
}

// Query describes the full set of (entity, component) pairs a caller wants
// to access, with the mode for each. Build one with NewQuery and the Read
// and Write functions, then pass it to World.Acquire or World.TryAcquire.
//
// A query is a plain description; building it takes no locks and a query
// may be reused across acquisitions.
type Query struct {
	requests []accessRequest
}

// NewQuery creates a new empty query. Acquiring an empty query always
// succeeds immediately and the resulting guard owns no leases.
func NewQuery() *Query {
	return &Query{}
}

// Read appends a shared-access request for component type T on the given
// entities. A call with no entities is a no-op. Returns the query for
// chaining.
func Read[T any](q *Query, entities ...Entity) *Query {
	return q.add(componentID[T](), entities, AccessRead)
}

// Write appends an exclusive-access request for component type T on the
// given entities. A call with no entities is a no-op. Returns the query for
// chaining.
func Write[T any](q *Query, entities ...Entity) *Query {
	return q.add(componentID[T](), entities, AccessWrite)
}

// ReadAll appends a shared-access request for component type T on every
// entity that currently has it.
func ReadAll[T any](q *Query, w *World) *Query {
	return q.add(componentID[T](), EntitiesWith[T](w), AccessRead)
}

// WriteAll appends an exclusive-access request for component type T on
// every entity that currently has it.
func WriteAll[T any](q *Query, w *World) *Query {
	return q.add(componentID[T](), EntitiesWith[T](w), AccessWrite)
}

func (q *Query) add(id ComponentID, entities []Entity, mode AccessMode) *Query {
	if q == nil || len(entities) == 0 {
		return q
	}
	q.requests = append(q.requests, accessRequest{
		component: id,
		entities:  slices.Clone(entities),
		mode:      mode,
	})
	return q
}

// Empty reports whether the query contains no requests.
func (q *Query) Empty() bool {
	return q == nil || len(q.requests) == 0
}

// keyRequest pairs a resource key with the access mode resolved for it.
type keyRequest struct {
	key  resourceKey
	mode AccessMode
}

// resolve flattens the query into a deduplicated, totally ordered list of
// key requests:
//
//   - every (entity, component) pair mentioned anywhere in the query
//     appears exactly once;
//   - if a pair is requested under both modes, Write wins (the more
//     conservative resolution of ambiguous intent);
//   - the result is sorted by (entity, component).
//
// The fixed sort order is the deadlock-avoidance mechanism: every caller
// evaluates compatibility against the ledger in the same global order, so
// no cycle of blocked acquisitions can form. Correctness depends on always
// resolving before evaluating, never partially.
func (q *Query) resolve() []keyRequest {
	if q.Empty() {
		return nil
	}

	modes := make(map[resourceKey]AccessMode)
	for _, req := range q.requests {
		for _, e := range req.entities {
			key := resourceKey{entity: e, component: req.component}
			if req.mode == AccessWrite || modes[key] == AccessWrite {
				modes[key] = AccessWrite
			} else {
				modes[key] = AccessRead
			}
		}
	}

	out := make([]keyRequest, 0, len(modes))
	for key, mode := range modes {
		out = append(out, keyRequest{key: key, mode: mode})
	}
	slices.SortFunc(out, func(a, b keyRequest) int {
		if a.key.entity != b.key.entity {
			if a.key.entity < b.key.entity {
				return -1
			}
			return 1
		}
		if a.key.component != b.key.component {
			if a.key.component < b.key.component {
				return -1
			}
			return 1
		}
		return 0
	})
	return out
}
