package gecs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ComponentID is a stable identifier for a component type within the
// process. Valid IDs range from 0 to 255. IDs are assigned in registration
// order and define, together with the entity, the total ordering used by
// the acquisition engine.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 255

// componentRegistry manages component type registration with lock-free
// reads. Component IDs are assigned sequentially and cached for fast
// lookup. sync.Map provides lock-free reads for the hot path (turning a
// type into its ID on every query build) while still allowing safe
// concurrent registration.
type componentRegistry struct {
	// types maps reflect.Type to ComponentID
	types sync.Map // map[reflect.Type]ComponentID

	// names and typesArr store component metadata indexed by ComponentID.
	// Written once during registration, read-only afterward.
	names    [MaxComponents]string
	typesArr [MaxComponents]reflect.Type

	// nextID is the next available component ID
	nextID atomic.Uint32

	// arrMu protects writes to names and typesArr during registration
	arrMu sync.RWMutex
}

// globalRegistry is the process-wide component registry. Type identity is
// global; per-store state (entity counters, ledgers) lives on each World.
var globalRegistry = &componentRegistry{}

// registerComponentType registers a component type and returns its ID.
// Called automatically when a component type is first used.
func registerComponentType(t reflect.Type) ComponentID {
	if id, ok := globalRegistry.types.Load(t); ok {
		return id.(ComponentID)
	}

	newID := ComponentID(globalRegistry.nextID.Add(1) - 1)
	if newID >= MaxComponents {
		panic(fmt.Sprintf("gecs: component limit exceeded (max %d types)", MaxComponents))
	}

	// LoadOrStore ensures only one goroutine wins if multiple register the
	// same type simultaneously; a losing goroutine's allocated ID is wasted,
	// which is rare and harmless.
	actual, loaded := globalRegistry.types.LoadOrStore(t, newID)
	if loaded {
		return actual.(ComponentID)
	}

	globalRegistry.arrMu.Lock()
	globalRegistry.names[newID] = t.Name()
	globalRegistry.typesArr[newID] = t
	globalRegistry.arrMu.Unlock()

	return newID
}

// componentID returns the ComponentID for type T, registering it if needed.
func componentID[T any]() ComponentID {
	return registerComponentType(reflect.TypeOf((*T)(nil)).Elem())
}

// ComponentName returns the name of the component type with the given ID.
func ComponentName(id ComponentID) string {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.names[id]
}

// ComponentTypeOf returns the reflect.Type of the component with the given ID.
func ComponentTypeOf(id ComponentID) reflect.Type {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.typesArr[id]
}

// RegisteredComponentCount returns the number of registered component types.
func RegisteredComponentCount() int {
	return int(globalRegistry.nextID.Load())
}

// Cell holds one component value behind a read-write lock. A cell is shared
// by the store and by every guard that obtained a reference to it; it stays
// valid for as long as any holder keeps it, even if the store's table entry
// is later replaced.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewCell creates a cell holding the given value.
func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Load returns a copy of the cell's value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Store replaces the cell's value.
func (c *Cell[T]) Store(value T) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Update applies fn to the cell's value under the write lock.
func (c *Cell[T]) Update(fn func(*T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.value)
}

// Read applies fn to the cell's value under the read lock. The value must
// not be retained or mutated through the pointer after fn returns.
func (c *Cell[T]) Read(fn func(*T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(&c.value)
}

// detachFrom invokes the Detachable hook on the cell's value, if implemented.
func (c *Cell[T]) detachFrom(w *World, e Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := any(&c.value).(Detachable); ok {
		d.Detach(w, e)
	}
}

// table is the per-type component storage mapping an entity to its cell.
// The cells map holds *Cell[T] values for the table's component type.
type table struct {
	mu    sync.RWMutex
	cells map[Entity]any
}

func newTable() *table {
	return &table{cells: make(map[Entity]any)}
}

func (t *table) get(e Entity) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.cells[e]
	return c, ok
}

func (t *table) put(e Entity, cell any) {
	t.mu.Lock()
	t.cells[e] = cell
	t.mu.Unlock()
}

func (t *table) remove(e Entity) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.cells[e]
	if !ok {
		return nil, false
	}
	delete(t.cells, e)
	return c, true
}

func (t *table) entities() []Entity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entity, 0, len(t.cells))
	for e := range t.cells {
		out = append(out, e)
	}
	return out
}

func (t *table) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cells)
}

// Attachable is implemented by components that need initialization logic
// when attached to an entity.
type Attachable interface {
	Attach(w *World, e Entity)
}

// Detachable is implemented by components that need cleanup logic when
// detached from an entity.
type Detachable interface {
	Detach(w *World, e Entity)
}

// Add attaches a component to an entity, inserting a fresh cell. If a
// component of this type already exists on the entity, the table entry is
// replaced; holders of the previous cell keep a valid reference to it.
//
// Add is not gated by the access ledger. Callers are expected to attach
// components either before concurrent access to the entity begins or while
// holding a write lease for the pair; the store does not enforce this.
func Add[T any](w *World, e Entity, value T) {
	if w == nil {
		return
	}

	id := componentID[T]()
	cell := NewCell(value)

	// Attach runs before the cell becomes visible through the table, so the
	// hook can finish initializing the stored value without racing readers.
	if attachable, ok := any(&cell.value).(Attachable); ok {
		attachable.Attach(w, e)
	}

	w.tableFor(id).put(e, cell)
	w.setMaskBit(e, id)

	w.Publish(ComponentAttachEvent{
		Entity:        e,
		ComponentType: reflect.TypeOf((*T)(nil)).Elem(),
	})
}

// Get retrieves the component cell of type T for an entity. The returned
// cell is shared; mutations through it are visible to all holders.
//
// Get itself performs no ledger check. Outside an active guard it is an
// escape hatch for setup and teardown code; concurrent readers and writers
// must coordinate through World.Acquire.
func Get[T any](w *World, e Entity) (*Cell[T], bool) {
	if w == nil {
		return nil, false
	}

	c, ok := w.tableFor(componentID[T]()).get(e)
	if !ok {
		return nil, false
	}
	cell, ok := c.(*Cell[T])
	return cell, ok
}

// Has reports whether the entity has a component of type T.
func Has[T any](w *World, e Entity) bool {
	if w == nil {
		return false
	}
	_, ok := w.tableFor(componentID[T]()).get(e)
	return ok
}

// Remove detaches the component of type T from an entity. If the component
// implements Detachable, its Detach method is called after removal.
// Removing a component that is not present is a no-op.
func Remove[T any](w *World, e Entity) {
	if w == nil {
		return
	}

	id := componentID[T]()
	c, ok := w.tableFor(id).remove(e)
	if !ok {
		return
	}
	w.clearMaskBit(e, id)

	if cell, ok := c.(*Cell[T]); ok {
		cell.detachFrom(w, e)
	}

	w.Publish(ComponentDetachEvent{
		Entity:        e,
		ComponentType: reflect.TypeOf((*T)(nil)).Elem(),
	})
}

// EntitiesWith returns all entities that currently have a component of
// type T. The slice is a snapshot; concurrent mutation is not reflected.
func EntitiesWith[T any](w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.tableFor(componentID[T]()).entities()
}
