package gecs

import (
	"fmt"
	"reflect"
	"time"
)

// Stage orders system execution within a tick: Before runs first, then
// Default, then After.
type Stage int

const (
	// Before runs first. Use for input handling and setup logic that
	// other systems depend on.
	Before Stage = iota

	// Default runs second. Use for the main simulation logic.
	Default

	// After runs last. Use for cleanup, synchronization and statistics.
	After

	// stageCount is the total number of stages.
	stageCount
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case Before:
		return "Before"
	case Default:
		return "Default"
	case After:
		return "After"
	default:
		return "Unknown"
	}
}

// Access declares which component types a system reads and writes. The
// scheduler uses it twice: statically, to batch non-conflicting systems for
// parallel execution, and per tick, to build the acquisition query covering
// every entity that currently has the declared components.
type Access struct {
	Reads  []reflect.Type
	Writes []reflect.Type
}

// ReadsType appends a read declaration for component type T.
func ReadsType[T any](a Access) Access {
	a.Reads = append(a.Reads, reflect.TypeOf((*T)(nil)).Elem())
	return a
}

// WritesType appends a write declaration for component type T.
func WritesType[T any](a Access) Access {
	a.Writes = append(a.Writes, reflect.TypeOf((*T)(nil)).Elem())
	return a
}

// Conflicts reports whether two access declarations cannot run in the same
// parallel batch: any write in one overlapping any read or write in the
// other.
func (a Access) Conflicts(other Access) bool {
	for _, w := range a.Writes {
		for _, r := range other.Reads {
			if w == r {
				return true
			}
		}
		for _, ow := range other.Writes {
			if w == ow {
				return true
			}
		}
	}
	for _, r := range a.Reads {
		for _, ow := range other.Writes {
			if r == ow {
				return true
			}
		}
	}
	return false
}

// empty reports whether the declaration names no component types at all.
func (a Access) empty() bool {
	return len(a.Reads) == 0 && len(a.Writes) == 0
}

// query materializes the declaration against the world's current entity
// population: one read request per declared read type covering every entity
// that has it, likewise for writes. Declaring a type here registers it.
func (a Access) query(w *World) *Query {
	q := NewQuery()
	for _, t := range a.Reads {
		id := registerComponentType(t)
		q.add(id, w.tableFor(id).entities(), AccessRead)
	}
	for _, t := range a.Writes {
		id := registerComponentType(t)
		q.add(id, w.tableFor(id).entities(), AccessWrite)
	}
	return q
}

// System is a unit of per-tick work. The scheduler acquires the declared
// access as one batch before calling Fn; if any declared component is held
// elsewhere the system is skipped for the tick rather than blocked on.
type System struct {
	// Name identifies the system in logs. Must be unique per world.
	Name string

	// Stage selects the execution phase within a tick.
	Stage Stage

	// Access declares the component types Fn touches. Systems with empty
	// access run every tick without touching the ledger; their guard is
	// nil.
	Access Access

	// Interval throttles the system to at most one run per Interval.
	// Zero means every tick.
	Interval time.Duration

	// Fn is the system body. dt is the time since this system last ran.
	// A returned error is logged; it does not stop the scheduler.
	Fn func(g *Guard, dt time.Duration) error
}

// AddSystem registers a system with the world's scheduler. Systems can be
// added before or after Start. Registration fails if the name is empty,
// already taken, or Fn is nil.
func (w *World) AddSystem(sys System) error {
	if sys.Fn == nil {
		return fmt.Errorf("gecs: system %q has no Fn", sys.Name)
	}
	if sys.Name == "" {
		return fmt.Errorf("gecs: system must have a name")
	}
	if sys.Stage < Before || sys.Stage >= stageCount {
		return fmt.Errorf("gecs: system %q has invalid stage %d", sys.Name, sys.Stage)
	}
	return w.scheduler.addSystem(sys)
}

// RemoveSystem unregisters a system by name. Returns true if it existed.
func (w *World) RemoveSystem(name string) bool {
	return w.scheduler.removeSystem(name)
}
