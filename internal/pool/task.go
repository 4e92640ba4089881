package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/meeting-platform/core/internal/status"
)

// ErrOverwritten is recorded on a task displaced by the Overwrite
// back-pressure policy.
var ErrOverwritten = fmt.Errorf("pool: task overwritten")

// ErrForceStopped is recorded on every task drained during a force
// shutdown.
var ErrForceStopped = fmt.Errorf("pool: force stopped")

// ErrPoolNotRunning is returned by a submission made while the pool cannot
// accept work.
var ErrPoolNotRunning = fmt.Errorf("pool: not running")

// ErrQueueClosed is returned by a Block-policy submission against a closed
// queue.
var ErrQueueClosed = fmt.Errorf("pool: queue closed")

// task is the pool's internal unit of work. Cancel and Execute are
// mutually exclusive and each fires at most once, enforced via the done
// flag.
type task interface {
	execute()
	cancel(err error)
	// fail resolves the task's result handle with err. Called from
	// runTask's recover branch after execute has panicked partway through,
	// once the done flag is already set, so it must not re-check done.
	fail(err error)
}

// simpleTask backs Post: fire-and-forget, no result channel.
type simpleTask struct {
	fn   func()
	done atomic.Bool
}

func newSimpleTask(fn func()) *simpleTask { return &simpleTask{fn: fn} }

func (t *simpleTask) execute() {
	if t.done.Swap(true) {
		return
	}
	t.fn()
}

func (t *simpleTask) cancel(err error) {
	t.done.Store(true)
}

// fail is a no-op: Post gives the caller no handle to resolve.
func (t *simpleTask) fail(err error) {}

// futureTask backs Submit: runs fn and resolves a single-value result
// channel exactly once, from either execute or cancel.
type futureTask[T any] struct {
	fn       func() (T, error)
	resultCh chan status.Result[T]
	done     atomic.Bool
}

func newFutureTask[T any](fn func() (T, error)) *futureTask[T] {
	return &futureTask[T]{fn: fn, resultCh: make(chan status.Result[T], 1)}
}

func (t *futureTask[T]) execute() {
	if t.done.Swap(true) {
		return
	}
	value, err := t.fn()
	if err != nil {
		t.resultCh <- status.Failed[T](err)
	} else {
		t.resultCh <- status.Ok(value)
	}
}

func (t *futureTask[T]) cancel(err error) {
	if t.done.Swap(true) {
		return
	}
	t.resultCh <- status.Failed[T](err)
}

// fail delivers err to resultCh after a panic inside fn. execute already
// swapped done to true before calling fn, so cancel's done check would
// silently drop this; resultCh is buffered by one and nothing else could
// have sent on it, since a normal return from fn is the only other sender
// and that didn't happen.
func (t *futureTask[T]) fail(err error) {
	t.resultCh <- status.Failed[T](err)
}

// Future is a one-shot handle to a Submit-ted task's outcome.
type Future[T any] struct {
	ch <-chan status.Result[T]
}

// Get blocks until the task completes and returns its outcome.
func (f Future[T]) Get() (T, error) {
	r := <-f.ch
	return r.Value, r.Err
}

// exitTask is the directed sentinel used to retire a specific worker slot.
// Workers that dequeue an exitTask not addressed to themselves requeue it.
type exitTask struct {
	targetSlot uint64
}

func (t *exitTask) execute()         {}
func (t *exitTask) cancel(err error) {}
func (t *exitTask) fail(err error)   {}
