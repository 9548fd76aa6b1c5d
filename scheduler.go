package gecs

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler drives registered systems and deferred tasks. Within a stage,
// systems whose declared access does not conflict run in parallel on the
// worker pool; conflicting systems are split into sequential batches so a
// tick never stalls on ledger contention between its own systems.
type Scheduler struct {
	world *World
	log   *slog.Logger

	// System management
	systems   [stageCount][]*systemState
	batches   [stageCount][][]*systemState
	systemsMu sync.RWMutex

	// Worker pool
	workers    int
	workerPool chan func()
	workerWG   sync.WaitGroup

	// Deferred task queue
	tasks *taskQueue

	// Execution state
	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Tick tracking
	tickInterval time.Duration
	frame        atomic.Uint64
}

// systemState tracks the run timing of a single registered system.
type systemState struct {
	sys     System
	lastRun time.Time
	nextRun time.Time
}

// shouldRun checks whether the system is due at the given time.
func (st *systemState) shouldRun(now time.Time) bool {
	if st.sys.Interval == 0 {
		return true
	}
	return !now.Before(st.nextRun)
}

// markRun updates the last run time and schedules the next run without
// accumulating drift.
func (st *systemState) markRun(now time.Time) {
	st.lastRun = now
	if st.sys.Interval > 0 {
		st.nextRun = st.nextRun.Add(st.sys.Interval)
		if st.nextRun.Before(now) {
			st.nextRun = now.Add(st.sys.Interval)
		}
	}
}

func newScheduler(w *World) *Scheduler {
	return &Scheduler{
		world:        w,
		log:          w.log.With("component", "scheduler"),
		workers:      w.cfg.Workers,
		workerPool:   make(chan func(), w.cfg.Workers*4),
		tasks:        newTaskQueue(w.cfg.TaskQueueSize),
		tickInterval: w.cfg.tickInterval(),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the scheduler's tick loop and worker pool. Starting an
// already running scheduler is a no-op.
func (s *Scheduler) Start() {
	if s.running.Swap(true) {
		return
	}

	for i := 0; i < s.workers; i++ {
		s.workerWG.Add(1)
		go s.worker()
	}

	go s.tickLoop()
	s.log.Info("scheduler started", "workers", s.workers, "tick_interval", s.tickInterval)
}

// Stop shuts the scheduler down and waits for in-flight systems and tasks
// to finish. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return
	}

	close(s.stopCh)
	<-s.doneCh

	close(s.workerPool)
	s.workerWG.Wait()
	s.log.Info("scheduler stopped", "frames", s.frame.Load())
}

// worker is a pool worker executing submitted jobs.
func (s *Scheduler) worker() {
	defer s.workerWG.Done()
	for fn := range s.workerPool {
		fn()
	}
}

// submit hands a job to the worker pool, running it inline when the pool
// is saturated.
func (s *Scheduler) submit(fn func()) {
	select {
	case s.workerPool <- fn:
	default:
		fn()
	}
}

// tickLoop is the main scheduler loop.
func (s *Scheduler) tickLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return

		case now := <-ticker.C:
			s.tick(now)

		case <-s.tasks.Notify():
			s.processTasks(time.Now())
		}
	}
}

// tick executes one scheduler tick: all stages in order, then due tasks.
func (s *Scheduler) tick(now time.Time) {
	frame := s.frame.Add(1) - 1
	s.world.Publish(TickEvent{Frame: frame})

	for stage := Before; stage < stageCount; stage++ {
		s.runStage(now, stage)
	}

	s.processTasks(now)
}

// runStage executes the stage's batches in order; systems within a batch
// run in parallel.
func (s *Scheduler) runStage(now time.Time, stage Stage) {
	s.systemsMu.RLock()
	batches := s.batches[stage]
	s.systemsMu.RUnlock()

	for _, batch := range batches {
		var due []*systemState
		for _, st := range batch {
			if st.shouldRun(now) {
				due = append(due, st)
			}
		}
		if len(due) == 0 {
			continue
		}

		var wg sync.WaitGroup
		wg.Add(len(due))
		for _, st := range due {
			st := st
			s.submit(func() {
				defer wg.Done()
				s.runSystem(now, st)
			})
		}
		wg.Wait()

		for _, st := range due {
			st.markRun(now)
		}
	}
}

// runSystem acquires the system's declared access and runs its body. When
// the declared components are held elsewhere the system is skipped for
// this tick instead of blocking the stage.
func (s *Scheduler) runSystem(now time.Time, st *systemState) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("system panicked",
				"system", st.sys.Name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	dt := s.tickInterval
	if !st.lastRun.IsZero() {
		dt = now.Sub(st.lastRun)
	}

	var guard *Guard
	if !st.sys.Access.empty() {
		g, err := s.world.TryAcquire(st.sys.Access.query(s.world))
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				s.log.Debug("system skipped, access unavailable", "system", st.sys.Name)
				return
			}
			s.log.Error("system acquisition failed", "system", st.sys.Name, "err", err)
			return
		}
		guard = g
		defer guard.Release()
	}

	if err := st.sys.Fn(guard, dt); err != nil {
		s.log.Error("system failed", "system", st.sys.Name, "err", err)
	}
}

// addSystem registers a system and rebuilds the stage's parallel batches.
func (s *Scheduler) addSystem(sys System) error {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()

	for stage := Before; stage < stageCount; stage++ {
		for _, st := range s.systems[stage] {
			if st.sys.Name == sys.Name {
				return errors.New("gecs: duplicate system name " + sys.Name)
			}
		}
	}

	s.systems[sys.Stage] = append(s.systems[sys.Stage], &systemState{
		sys:     sys,
		nextRun: time.Now(),
	})
	s.rebuildBatches(sys.Stage)
	return nil
}

// removeSystem unregisters a system by name.
func (s *Scheduler) removeSystem(name string) bool {
	s.systemsMu.Lock()
	defer s.systemsMu.Unlock()

	for stage := Before; stage < stageCount; stage++ {
		for i, st := range s.systems[stage] {
			if st.sys.Name == name {
				s.systems[stage] = append(s.systems[stage][:i], s.systems[stage][i+1:]...)
				s.rebuildBatches(stage)
				return true
			}
		}
	}
	return false
}

// rebuildBatches recomputes the parallel execution batches for a stage.
// Greedy first-fit over name-sorted systems keeps batching deterministic.
func (s *Scheduler) rebuildBatches(stage Stage) {
	systems := s.systems[stage]
	if len(systems) == 0 {
		s.batches[stage] = nil
		return
	}

	sort.Slice(systems, func(i, j int) bool {
		return systems[i].sys.Name < systems[j].sys.Name
	})

	var batches [][]*systemState
	remaining := make([]*systemState, len(systems))
	copy(remaining, systems)

	for len(remaining) > 0 {
		var batch []*systemState
		var next []*systemState

		for _, candidate := range remaining {
			conflict := false
			for _, placed := range batch {
				if candidate.sys.Access.Conflicts(placed.sys.Access) {
					conflict = true
					break
				}
			}
			if conflict {
				next = append(next, candidate)
			} else {
				batch = append(batch, candidate)
			}
		}

		batches = append(batches, batch)
		remaining = next
	}

	s.batches[stage] = batches
}

// processTasks runs all tasks that are due.
func (s *Scheduler) processTasks(now time.Time) {
	due := s.tasks.PopDue(now)
	for _, t := range due {
		t := t
		s.submit(func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("deferred task panicked",
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			t.fn(s.world)
		})
	}
}
