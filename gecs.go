// Package gecs provides a concurrent entity-component store for game systems.
//
// GECS is a storage and coordination layer for parallel engine systems:
//   - Entity identifiers and per-type component tables
//   - Shared, read-write-locked component cells
//   - Declarative queries over (entity, component) pairs
//   - Atomic, deadlock-free batch acquisition of component access
//   - A frame scheduler that runs systems against acquired access
//
// # Quick Start
//
// Create a world, spawn entities and attach components:
//
//	w := gecs.NewWorld()
//
//	e := w.CreateEntity()
//	gecs.Add(w, e, gecs.Pos3{Pos: mgl32.Vec3{0, 1, 0}})
//	gecs.Add(w, e, Health{Current: 100, Max: 100})
//
// # Queries
//
// Systems that touch components from multiple goroutines declare what they
// need up front and acquire it as one batch:
//
//	q := gecs.Write[Health](gecs.Read[gecs.Pos3](gecs.NewQuery(), e), e)
//
//	guard, err := w.Acquire(ctx, q)
//	if err != nil {
//	    return err
//	}
//	defer guard.Release()
//
//	if cell, ok := gecs.View[Health](guard, e); ok {
//	    cell.Update(func(h *Health) { h.Current-- })
//	}
//
// The acquisition either grants every requested pair or nothing at all, and
// the fixed global ordering of resource keys makes it impossible for two
// concurrently blocking acquisitions to deadlock against each other.
// TryAcquire is the non-blocking variant: it returns ErrUnavailable instead
// of waiting, which frame-based callers typically treat as "skip this
// entity until next frame".
//
// # Systems
//
// The built-in scheduler turns declared component access into queries and
// runs systems on a worker pool, skipping a system for the frame when its
// components are held elsewhere:
//
//	w.AddSystem(gecs.System{
//	    Name:   "regen",
//	    Stage:  gecs.Default,
//	    Access: gecs.Access{Writes: []reflect.Type{reflect.TypeFor[Health]()}},
//	    Fn: func(g *gecs.Guard, dt time.Duration) error {
//	        for _, e := range g.Entities() {
//	            if cell, ok := gecs.View[Health](g, e); ok {
//	                cell.Update(func(h *Health) { h.Current++ })
//	            }
//	        }
//	        return nil
//	    },
//	})
//	w.Start()
//
// Multiple World instances can coexist in one process; each owns its own
// entity counter, ledger, and scheduler.
package gecs

// Version is the GECS version.
const Version = "1.0.0"
