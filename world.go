package gecs

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// World is the central GECS store. It owns the entity counter, the per-type
// component tables, the access ledger, and the scheduler. Multiple World
// instances can coexist in the same process; nothing is shared between
// them except component type identity.
type World struct {
	// id distinguishes this store instance in logs and diagnostics
	id uuid.UUID

	// log is the structured logger for this world
	log *slog.Logger

	// cfg holds scheduler and worker configuration
	cfg Config

	// nextEntity is the entity id counter. Ids are issued from 0 and never
	// reused within the process lifetime.
	nextEntity atomic.Uint64

	// nextQueryID tags each acquisition attempt so guards can identify
	// exactly their own leases
	nextQueryID atomic.Uint64

	// tables holds per-type component storage indexed by ComponentID
	tables   map[ComponentID]*table
	tablesMu sync.RWMutex

	// masks tracks component presence per entity
	masks   map[Entity]Bitmask
	masksMu sync.RWMutex

	// ledger records all currently granted leases
	ledger *ledger

	// resources holds world-scoped singletons
	resources   map[any]any
	resourcesMu sync.RWMutex

	// subscribers holds event subscribers keyed by event type
	subscribers   map[any][]func(any)
	subscribersMu sync.RWMutex

	// scheduler manages system and task execution
	scheduler *Scheduler
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger sets the structured logger the world and its scheduler use.
// Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// WithConfig replaces the world's configuration.
func WithConfig(cfg Config) Option {
	return func(w *World) {
		w.cfg = cfg.withDefaults()
	}
}

// NewWorld creates a new store instance with its own entity counter,
// ledger, and scheduler. The scheduler does not tick until Start is called;
// queries and direct component access work immediately.
func NewWorld(opts ...Option) *World {
	w := &World{
		id:          uuid.New(),
		log:         slog.Default(),
		cfg:         defaultConfig(),
		tables:      make(map[ComponentID]*table),
		masks:       make(map[Entity]Bitmask),
		ledger:      newLedger(),
		resources:   make(map[any]any),
		subscribers: make(map[any][]func(any)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("world", w.id.String())
	w.scheduler = newScheduler(w)
	return w
}

// ID returns the unique identifier of this world instance.
func (w *World) ID() uuid.UUID {
	return w.id
}

// CreateEntity issues a new entity identifier. Identifiers increase
// monotonically and are never reused. Counter overflow is an unrecoverable
// invariant violation and panics.
func (w *World) CreateEntity() Entity {
	id := w.nextEntity.Add(1) - 1
	if id == math.MaxUint64 {
		panic("gecs: entity counter overflow")
	}
	e := Entity(id)
	w.Publish(EntitySpawnEvent{Entity: e})
	return e
}

// Exists reports whether the entity identifier has been issued by this
// world. This is an approximation: it does not account for entities whose
// components have all been removed, only for ids never created.
func (w *World) Exists(e Entity) bool {
	return uint64(e) < w.nextEntity.Load()
}

// EntityCount returns the number of entity identifiers issued so far.
func (w *World) EntityCount() int {
	return int(w.nextEntity.Load())
}

// tableFor returns the component table for the given ID, creating it if
// needed.
func (w *World) tableFor(id ComponentID) *table {
	w.tablesMu.RLock()
	t, ok := w.tables[id]
	w.tablesMu.RUnlock()
	if ok {
		return t
	}

	w.tablesMu.Lock()
	defer w.tablesMu.Unlock()
	if t, ok = w.tables[id]; ok {
		return t
	}
	t = newTable()
	w.tables[id] = t
	return t
}

// setMaskBit marks a component as present on an entity.
func (w *World) setMaskBit(e Entity, id ComponentID) {
	w.masksMu.Lock()
	mask := w.masks[e]
	mask.Set(id)
	w.masks[e] = mask
	w.masksMu.Unlock()
}

// clearMaskBit marks a component as absent on an entity.
func (w *World) clearMaskBit(e Entity, id ComponentID) {
	w.masksMu.Lock()
	mask := w.masks[e]
	mask.Clear(id)
	if mask.IsZero() {
		delete(w.masks, e)
	} else {
		w.masks[e] = mask
	}
	w.masksMu.Unlock()
}

// MaskOf returns a copy of the entity's component bitmask. Primarily for
// debugging and tests.
func (w *World) MaskOf(e Entity) Bitmask {
	w.masksMu.RLock()
	defer w.masksMu.RUnlock()
	return w.masks[e]
}

// EntitiesMatching returns all entities whose component mask contains every
// bit of require. The slice is a snapshot.
func (w *World) EntitiesMatching(require Bitmask) []Entity {
	w.masksMu.RLock()
	defer w.masksMu.RUnlock()

	var out []Entity
	for e, mask := range w.masks {
		if mask.ContainsAll(require) {
			out = append(out, e)
		}
	}
	return out
}

// ActiveLeaseCount returns the number of distinct (entity, component) pairs
// currently leased by anyone. For monitoring and tests.
func (w *World) ActiveLeaseCount() int {
	return w.ledger.activeKeyCount()
}

// ResetLedger discards all lease bookkeeping without notifying outstanding
// guards. Guards that release afterwards become no-ops. This is unsafe for
// anything except crash recovery, where abandoned leases would otherwise
// block every future acquisition forever.
func (w *World) ResetLedger() {
	w.log.Warn("ledger reset, all leases discarded")
	w.ledger.reset()
	w.Publish(LedgerResetEvent{})
}

// AddResource registers a world-scoped singleton value. Resources are
// looked up by their concrete type; registering a second value of the same
// type replaces the first.
func (w *World) AddResource(res any) {
	if res == nil {
		return
	}
	w.resourcesMu.Lock()
	w.resources[resourceKeyOf(res)] = res
	w.resourcesMu.Unlock()
}

// Resource retrieves the world-scoped singleton of type T. Returns the
// zero value and false if none is registered.
func Resource[T any](w *World) (T, bool) {
	var zero T
	if w == nil {
		return zero, false
	}
	w.resourcesMu.RLock()
	defer w.resourcesMu.RUnlock()
	if res, ok := w.resources[typeKey[T]()]; ok {
		if v, ok := res.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Start begins ticking the scheduler. Calling Start on a running world is
// a no-op.
func (w *World) Start() {
	w.scheduler.Start()
}

// Shutdown stops the scheduler and waits for in-flight systems to finish.
func (w *World) Shutdown() {
	w.scheduler.Stop()
}
