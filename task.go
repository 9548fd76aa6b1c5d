package gecs

import (
	"sync"
	"sync/atomic"
	"time"
)

// scheduledTask is a deferred piece of work owned by the scheduler.
type scheduledTask struct {
	// executeAt is the time the task becomes due
	executeAt time.Time

	// fn is the task body, run on a scheduler worker
	fn func(*World)

	// cancelled marks the task as dead; it stays in the heap until
	// popped or compacted
	cancelled atomic.Bool

	// index is the heap index for sift operations
	index int
}

// TaskHandle allows cancelling a deferred task before it runs. For
// repeating tasks, Cancel stops all future executions.
type TaskHandle struct {
	task *scheduledTask
}

// Cancel prevents the task from running. Cancelling an already executed or
// already cancelled task is a no-op.
func (h *TaskHandle) Cancel() {
	if h != nil && h.task != nil {
		h.task.cancelled.Store(true)
	}
}

// Cancelled reports whether the task has been cancelled.
func (h *TaskHandle) Cancelled() bool {
	return h != nil && h.task != nil && h.task.cancelled.Load()
}

// taskQueue is a binary min-heap of scheduled tasks ordered by executeAt.
type taskQueue struct {
	mu    sync.Mutex
	heap  []*scheduledTask
	max   int
	notif chan struct{}
}

func newTaskQueue(max int) *taskQueue {
	return &taskQueue{
		heap:  make([]*scheduledTask, 0, 64),
		max:   max,
		notif: make(chan struct{}, 1),
	}
}

// Notify returns a channel that receives a signal when a task is pushed,
// so the scheduler loop can process immediate tasks without waiting for
// the next tick.
func (q *taskQueue) Notify() <-chan struct{} {
	return q.notif
}

// Push inserts a task. Returns false when the queue is full even after
// dropping cancelled entries.
func (q *taskQueue) Push(task *scheduledTask) bool {
	q.mu.Lock()
	if len(q.heap) >= q.max {
		q.compact()
	}
	if len(q.heap) >= q.max {
		q.mu.Unlock()
		return false
	}
	task.index = len(q.heap)
	q.heap = append(q.heap, task)
	q.up(task.index)
	q.mu.Unlock()

	select {
	case q.notif <- struct{}{}:
	default:
	}
	return true
}

// PopDue removes and returns all non-cancelled tasks with executeAt <= now.
func (q *taskQueue) PopDue(now time.Time) []*scheduledTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []*scheduledTask
	for len(q.heap) > 0 && !q.heap[0].executeAt.After(now) {
		task := q.pop()
		if !task.cancelled.Load() {
			due = append(due, task)
		}
	}
	return due
}

// compact drops cancelled tasks and restores the heap property. Caller
// must hold the lock.
func (q *taskQueue) compact() {
	write := 0
	for read := 0; read < len(q.heap); read++ {
		if !q.heap[read].cancelled.Load() {
			q.heap[write] = q.heap[read]
			q.heap[write].index = write
			write++
		}
	}
	for i := write; i < len(q.heap); i++ {
		q.heap[i] = nil
	}
	q.heap = q.heap[:write]

	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.down(i)
	}
}

// pop removes the heap root. Caller must hold the lock.
func (q *taskQueue) pop() *scheduledTask {
	n := len(q.heap) - 1
	q.swap(0, n)
	task := q.heap[n]
	q.heap[n] = nil
	q.heap = q.heap[:n]
	if n > 0 {
		q.down(0)
	}
	task.index = -1
	return task
}

func (q *taskQueue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.heap[i].index = i
	q.heap[j].index = j
}

func (q *taskQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.heap[i].executeAt.Before(q.heap[parent].executeAt) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *taskQueue) down(i int) {
	n := len(q.heap)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && q.heap[right].executeAt.Before(q.heap[left].executeAt) {
			smallest = right
		}
		if !q.heap[smallest].executeAt.Before(q.heap[i].executeAt) {
			break
		}
		q.swap(i, smallest)
		i = smallest
	}
}

// Defer schedules fn to run on a scheduler worker as soon as possible,
// outside the current call stack. Tasks execute only while the scheduler
// is running. Returns nil if the task queue is full.
func (w *World) Defer(fn func(*World)) *TaskHandle {
	return w.DeferAfter(0, fn)
}

// DeferAfter schedules fn to run on a scheduler worker after the given
// delay. Returns nil if the task queue is full.
func (w *World) DeferAfter(delay time.Duration, fn func(*World)) *TaskHandle {
	if fn == nil {
		return nil
	}
	task := &scheduledTask{
		executeAt: time.Now().Add(delay),
		fn:        fn,
	}
	if !w.scheduler.tasks.Push(task) {
		w.log.Warn("deferred task dropped, queue full")
		return nil
	}
	return &TaskHandle{task: task}
}

// DeferEvery schedules fn to run repeatedly at the given interval. If
// times is negative the task repeats until cancelled; otherwise it runs at
// most times times. Returns nil if times is zero or the queue is full.
func (w *World) DeferEvery(interval time.Duration, times int, fn func(*World)) *TaskHandle {
	if fn == nil || times == 0 || interval <= 0 {
		return nil
	}

	task := &scheduledTask{executeAt: time.Now().Add(interval)}
	remaining := times
	task.fn = func(world *World) {
		fn(world)

		if remaining > 0 {
			remaining--
			if remaining == 0 {
				return
			}
		}
		if task.cancelled.Load() {
			return
		}

		// PopDue removed the task from the heap, so the same instance can
		// be rescheduled; the handle keeps pointing at it across
		// repetitions.
		task.executeAt = time.Now().Add(interval)
		if !world.scheduler.tasks.Push(task) {
			world.log.Warn("repeating task dropped, queue full")
		}
	}

	if !w.scheduler.tasks.Push(task) {
		w.log.Warn("repeating task dropped, queue full")
		return nil
	}
	return &TaskHandle{task: task}
}
