package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meeting-platform/core/internal/queue"
)

// workerSlot is the pool's per-thread bookkeeping record; its lifetime is
// strictly >= the goroutine it owns.
type workerSlot struct {
	id              uint64
	idle            atomic.Bool
	consecutiveIdle atomic.Int64
	shouldExit      atomic.Bool
	lastActive      atomic.Int64
}

// Pool is a worker-pool executor over a bounded blocking queue, with a
// dedicated load-controller goroutine that grows and shrinks the worker set
// between Config.CoreThreads and Config.MaxThreads.
type Pool struct {
	cfg    Config
	logger *slog.Logger
	queue  *queue.Blocking[task]

	state atomic.Int32

	inFlight    atomic.Int64
	inFlightMu  sync.Mutex
	inFlightCV  *sync.Cond

	pauseMu   sync.Mutex
	pauseCV   *sync.Cond

	drainMu   sync.Mutex
	drainCV   *sync.Cond

	slotsMu sync.Mutex
	slots   map[uint64]*workerSlot
	nextID  atomic.Uint64
	wg      sync.WaitGroup

	active  atomic.Int64
	current atomic.Int64
	peak    atomic.Int64

	submitted      atomic.Uint64
	completed      atomic.Uint64
	failed         atomic.Uint64
	cancelled      atomic.Uint64
	rejected       atomic.Uint64
	discarded      atomic.Uint64
	overwritten    atomic.Uint64
	pausedWaits    atomic.Uint64
	threadsCreated atomic.Uint64
	threadsDestroyed atomic.Uint64
	totalExecNanos atomic.Int64

	loadCtlDone chan struct{}
	loadCtlStop sync.Once
	loadCtlWake chan struct{}

	metrics *metrics
}

// New constructs a Pool in the Created state and starts it immediately
// (Created is a transient bookkeeping state, mirroring the reference
// implementation's constructor-starts-threads behavior).
func New(cfg Config, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CoreThreads <= 0 {
		cfg.CoreThreads = 1
	}
	if cfg.MaxThreads < cfg.CoreThreads {
		cfg.MaxThreads = cfg.CoreThreads
	}
	if cfg.DebounceHits <= 0 {
		cfg.DebounceHits = 1
	}

	p := &Pool{
		cfg:         cfg,
		logger:      logger.With("component", "pool"),
		queue:       queue.NewBlocking[task](cfg.QueueCap),
		slots:       make(map[uint64]*workerSlot),
		loadCtlDone: make(chan struct{}),
		loadCtlWake: make(chan struct{}, 1),
		metrics:     newMetrics(),
	}
	p.inFlightCV = sync.NewCond(&p.inFlightMu)
	p.pauseCV = sync.NewCond(&p.pauseMu)
	p.drainCV = sync.NewCond(&p.drainMu)

	p.state.Store(int32(Created))
	for i := 0; i < cfg.CoreThreads; i++ {
		p.spawnWorker()
	}
	p.state.Store(int32(Running))
	go p.loadControllerLoop()
	return p
}

func (p *Pool) State() State { return State(p.state.Load()) }

func (p *Pool) casState(from, to State) bool {
	return p.state.CompareAndSwap(int32(from), int32(to))
}

// Post submits a fire-and-forget closure.
func (p *Pool) Post(fn func()) error {
	t := newSimpleTask(fn)
	return p.submit(t)
}

// Submit submits fn and returns a Future resolving to its result.
func Submit[T any](p *Pool, fn func() (T, error)) (Future[T], error) {
	t := newFutureTask(fn)
	if err := p.submit(t); err != nil {
		var zero Future[T]
		return zero, err
	}
	return Future[T]{ch: t.resultCh}, nil
}

// PostBatch submits each closure in order, stopping at the first rejection,
// and returns the number accepted.
func (p *Pool) PostBatch(fns []func()) int {
	n := 0
	for _, fn := range fns {
		if err := p.Post(fn); err != nil {
			break
		}
		n++
	}
	return n
}

func (p *Pool) submit(t task) error {
	p.inFlight.Add(1)
	defer p.decInFlight()

	state := p.State()
	switch state {
	case Running:
		// proceed
	case Paused:
		p.pausedWaits.Add(1)
		p.waitWhilePaused()
	case ShuttingDown:
		// Only callers that already waited through a prior Paused phase
		// may still enqueue; a fresh submission during drain is rejected.
		p.rejected.Add(1)
		return ErrPoolNotRunning
	default:
		p.rejected.Add(1)
		return ErrPoolNotRunning
	}

	var err error
	switch p.cfg.QueuePolicy {
	case Discard:
		if p.queue.TryPush(t) {
			p.submitted.Add(1)
			return nil
		}
		p.discarded.Add(1)
		p.rejected.Add(1)
		err = fmt.Errorf("pool: queue full, task discarded")
	case Overwrite:
		displaced, wasDisplaced, ok := p.queue.OverwritePush(t)
		if wasDisplaced {
			p.overwritten.Add(1)
			displaced.cancel(ErrOverwritten)
		}
		if ok {
			p.submitted.Add(1)
			return nil
		}
		p.rejected.Add(1)
		err = fmt.Errorf("pool: overwrite push failed")
	default: // Block
		if p.queue.WaitPush(t) {
			p.submitted.Add(1)
			return nil
		}
		p.rejected.Add(1)
		err = ErrQueueClosed
	}
	return err
}

func (p *Pool) decInFlight() {
	p.inFlightMu.Lock()
	v := p.inFlight.Add(-1)
	if v == 0 {
		p.inFlightCV.Broadcast()
	}
	p.inFlightMu.Unlock()
}

func (p *Pool) waitWhilePaused() {
	p.pauseMu.Lock()
	for p.State() == Paused {
		p.pauseCV.Wait()
	}
	p.pauseMu.Unlock()
}

// Pause freezes task fetching while keeping worker goroutines alive.
func (p *Pool) Pause() {
	if !p.casState(Running, Paused) {
		p.logger.Warn("pause requested from non-running state", "state", p.State())
	}
}

// Resume wakes submitters and workers waiting on the pause condition.
func (p *Pool) Resume() {
	if !p.casState(Paused, Running) {
		p.logger.Warn("resume requested from non-paused state", "state", p.State())
		return
	}
	p.pauseMu.Lock()
	p.pauseCV.Broadcast()
	p.pauseMu.Unlock()
}

// spawnWorker creates one worker goroutine and registers its slot.
func (p *Pool) spawnWorker() *workerSlot {
	slot := &workerSlot{id: p.nextID.Add(1)}
	slot.idle.Store(true)
	slot.lastActive.Store(time.Now().UnixNano())

	p.slotsMu.Lock()
	p.slots[slot.id] = slot
	p.slotsMu.Unlock()

	cur := p.current.Add(1)
	for {
		peak := p.peak.Load()
		if cur <= peak || p.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	p.threadsCreated.Add(1)

	p.wg.Add(1)
	go p.workerLoop(slot)
	return slot
}

func (p *Pool) workerLoop(slot *workerSlot) {
	defer p.wg.Done()
	for {
		if p.State() == Paused {
			p.pauseMu.Lock()
			for p.State() == Paused {
				p.pauseCV.Wait()
			}
			p.pauseMu.Unlock()
		}
		if p.State() == ForceStopping {
			p.retireWorker(slot)
			return
		}

		t, ok := p.queue.WaitPop()
		if !ok {
			// Queue closed: nothing left to do.
			p.retireWorker(slot)
			return
		}

		if et, isExit := t.(*exitTask); isExit {
			if et.targetSlot == slot.id {
				p.retireWorker(slot)
				return
			}
			// Not addressed to this worker: requeue for its owner.
			p.queue.WaitPush(t)
			continue
		}

		slot.idle.Store(false)
		slot.consecutiveIdle.Store(0)
		p.active.Add(1)
		start := time.Now()
		p.runTask(t)
		p.totalExecNanos.Add(int64(time.Since(start)))
		p.active.Add(-1)
		slot.idle.Store(true)
		slot.lastActive.Store(time.Now().UnixNano())

		if p.Pending() == 0 && p.active.Load() == 0 {
			p.drainMu.Lock()
			p.drainCV.Broadcast()
			p.drainMu.Unlock()
		}
	}
}

// runTask executes t, recovering from panics the way the reference pool
// catches and logs task exceptions without crashing the worker.
func (p *Pool) runTask(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			p.logger.Error("task panicked", "recover", r)
			t.fail(fmt.Errorf("pool: task panicked: %v", r))
			return
		}
	}()
	t.execute()
	p.completed.Add(1)
}

func (p *Pool) retireWorker(slot *workerSlot) {
	p.slotsMu.Lock()
	delete(p.slots, slot.id)
	p.slotsMu.Unlock()
	p.current.Add(-1)
	p.threadsDestroyed.Add(1)
}

// Pending returns the queue's current observable size.
func (p *Pool) Pending() int { return p.queue.Pending() }

// Stop performs a graceful or force shutdown.
func (p *Pool) Stop(mode ShutdownOption) error {
	switch mode {
	case ShutdownForce:
		return p.stopForce()
	case ShutdownGraceful:
		return p.stopGraceful()
	default:
		return fmt.Errorf("pool: unsupported shutdown option")
	}
}

// Shutdown attempts a graceful stop, escalating to force if not Stopped by
// the deadline.
func (p *Pool) Shutdown(ctx context.Context, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- p.stopGraceful() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		p.logger.Warn("graceful shutdown deadline exceeded, escalating to force")
		return p.stopForce()
	case <-ctx.Done():
		return p.stopForce()
	}
}

func (p *Pool) stopGraceful() error {
	if !p.casState(Running, ShuttingDown) && !p.casState(Paused, ShuttingDown) {
		if p.State() != ShuttingDown {
			return nil
		}
	}
	p.pauseMu.Lock()
	p.pauseCV.Broadcast()
	p.pauseMu.Unlock()

	p.inFlightMu.Lock()
	for p.inFlight.Load() > 0 {
		p.inFlightCV.Wait()
	}
	p.inFlightMu.Unlock()

	p.drainMu.Lock()
	for p.Pending() != 0 || p.active.Load() != 0 {
		p.drainCV.Wait()
	}
	p.drainMu.Unlock()

	p.queue.Close()
	p.stopLoadController()
	p.wg.Wait()

	p.state.Store(int32(Stopped))
	return nil
}

// stopLoadController closes loadCtlDone exactly once; Shutdown's timeout
// escalation can race stopGraceful and stopForce against each other, and a
// raw channel close panics on the second call.
func (p *Pool) stopLoadController() {
	p.loadCtlStop.Do(func() { close(p.loadCtlDone) })
}

func (p *Pool) stopForce() error {
	p.state.Store(int32(ForceStopping))
	p.pauseMu.Lock()
	p.pauseCV.Broadcast()
	p.pauseMu.Unlock()

	p.queue.Clear(func(t task) {
		t.cancel(ErrForceStopped)
		p.cancelled.Add(1)
	})
	p.queue.Close()
	p.stopLoadController()
	p.wg.Wait()

	p.state.Store(int32(Stopped))
	return nil
}

// Snapshot returns a best-effort statistics snapshot.
func (p *Pool) Snapshot() Statistics {
	current := int(p.current.Load())
	active := int(p.active.Load())
	pending := p.Pending()
	busy := 0.0
	if current > 0 {
		busy = float64(active) / float64(current)
	}
	pendingRatio := 0.0
	if cap := p.queue.Capacity(); cap > 0 {
		pendingRatio = float64(pending) / float64(cap)
	}
	completed := p.completed.Load()
	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(p.totalExecNanos.Load() / int64(completed))
	}

	stats := Statistics{
		TotalSubmitted:        p.submitted.Load(),
		TotalCompleted:        completed,
		TotalFailed:           p.failed.Load(),
		TotalCancelled:        p.cancelled.Load(),
		TotalRejected:         p.rejected.Load(),
		TotalExecTime:         time.Duration(p.totalExecNanos.Load()),
		AvgExecTime:           avg,
		PendingTasks:          pending,
		BusyRatio:             busy,
		PendingRatio:          pendingRatio,
		CurrentThreads:        current,
		ActiveThreads:         active,
		PeakThreads:           int(p.peak.Load()),
		TotalThreadsCreated:   p.threadsCreated.Load(),
		TotalThreadsDestroyed: p.threadsDestroyed.Load(),
		DiscardCount:          p.discarded.Load(),
		OverwriteCount:        p.overwritten.Load(),
		PausedWaitCount:       p.pausedWaits.Load(),
	}
	p.metrics.observe(stats)
	return stats
}
