// Package pool implements the worker-pool executor: bounded submission
// against a blocking queue, a sampling load controller that grows and
// shrinks the worker set, back-pressure policies, pause/resume, and
// two-phase graceful/force shutdown.
package pool

import "time"

// State is one of the pool's lifecycle states.
type State int32

const (
	Created State = iota
	Running
	Paused
	ShuttingDown
	ForceStopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case ShuttingDown:
		return "SHUTTING_DOWN"
	case ForceStopping:
		return "FORCE_STOPPING"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// BackpressurePolicy controls submission behavior when the queue is full.
type BackpressurePolicy int

const (
	// Block waits on the queue; fails only if closed.
	Block BackpressurePolicy = iota
	// Discard tries a non-blocking push; on failure, rejects the
	// submission and increments the discard counter.
	Discard
	// Overwrite displaces the oldest queued task, cancelling it with an
	// "overwritten" error, and counts the displacement.
	Overwrite
)

func (p BackpressurePolicy) String() string {
	switch p {
	case Block:
		return "Block"
	case Discard:
		return "Discard"
	case Overwrite:
		return "Overwrite"
	default:
		return "Unknown"
	}
}

// ShutdownOption selects how Stop drains the pool. Stop accepts only
// ShutdownGraceful and ShutdownForce and returns an error for any other value.
type ShutdownOption int

const (
	ShutdownGraceful ShutdownOption = iota
	ShutdownForce
	ShutdownTimeout
)

// Config configures a Pool's capacity, sizing, and back-pressure policy.
type Config struct {
	QueueCap            int
	CoreThreads         int
	MaxThreads          int
	LoadCheckInterval   time.Duration
	KeepAlive           time.Duration
	ScaleUpThreshold    float64
	ScaleDownThreshold  float64
	PendingHi           int
	PendingLow          int
	DebounceHits        int
	Cooldown            time.Duration
	QueuePolicy         BackpressurePolicy
}

// DefaultConfig mirrors the reference ThreadPoolConfig defaults.
func DefaultConfig() Config {
	return Config{
		QueueCap:           1024,
		CoreThreads:        4,
		MaxThreads:         8,
		LoadCheckInterval:  100 * time.Millisecond,
		KeepAlive:          5 * time.Second,
		ScaleUpThreshold:   0.75,
		ScaleDownThreshold: 0.25,
		PendingHi:          64,
		PendingLow:         8,
		DebounceHits:       3,
		Cooldown:           500 * time.Millisecond,
		QueuePolicy:        Block,
	}
}

// Statistics is a best-effort, non-atomic-across-fields snapshot of pool
// counters.
type Statistics struct {
	TotalSubmitted uint64
	TotalCompleted uint64
	TotalFailed    uint64
	TotalCancelled uint64
	TotalRejected  uint64

	TotalExecTime time.Duration
	AvgExecTime   time.Duration

	PendingTasks  int
	BusyRatio     float64
	PendingRatio  float64

	CurrentThreads         int
	ActiveThreads          int
	PeakThreads            int
	TotalThreadsCreated    uint64
	TotalThreadsDestroyed  uint64

	DiscardCount    uint64
	OverwriteCount  uint64
	PausedWaitCount uint64
}
