package pool

import "github.com/prometheus/client_golang/prometheus"

// metrics exposes a pool's statistics snapshot as Prometheus gauges,
// following the collector-registration shape used for HTTP metrics
// elsewhere in the reference stack (promauto-registered Gauge/Counter
// vectors sampled on each observation rather than pushed per event).
type metrics struct {
	currentThreads prometheus.Gauge
	activeThreads  prometheus.Gauge
	pendingTasks   prometheus.Gauge
	busyRatio      prometheus.Gauge
	totalSubmitted prometheus.Gauge
	totalCompleted prometheus.Gauge
	totalFailed    prometheus.Gauge
	totalCancelled prometheus.Gauge
	totalRejected  prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		currentThreads: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_current_threads",
			Help: "Number of live worker goroutines in the pool.",
		}),
		activeThreads: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_active_threads",
			Help: "Number of worker goroutines currently executing a task.",
		}),
		pendingTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_pending_tasks",
			Help: "Number of tasks currently queued.",
		}),
		busyRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_busy_ratio",
			Help: "Ratio of active to current worker threads.",
		}),
		totalSubmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_submitted_total",
			Help: "Total tasks accepted for submission.",
		}),
		totalCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_completed_total",
			Help: "Total tasks that executed successfully.",
		}),
		totalFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_failed_total",
			Help: "Total tasks that panicked during execution.",
		}),
		totalCancelled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_cancelled_total",
			Help: "Total tasks cancelled by shutdown or overwrite.",
		}),
		totalRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meeting_pool_rejected_total",
			Help: "Total submissions rejected by back-pressure or pool state.",
		}),
	}
}

// Collectors returns the metrics for registration with a
// prometheus.Registerer; callers decide whether and where to expose them.
func (m *metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.currentThreads, m.activeThreads, m.pendingTasks, m.busyRatio,
		m.totalSubmitted, m.totalCompleted, m.totalFailed, m.totalCancelled, m.totalRejected,
	}
}

// observe updates the gauges from a snapshot. Counters are monotonic
// totals tracked by the pool itself, so they are set rather than
// incremented here to avoid double counting across snapshots.
func (m *metrics) observe(s Statistics) {
	m.currentThreads.Set(float64(s.CurrentThreads))
	m.activeThreads.Set(float64(s.ActiveThreads))
	m.pendingTasks.Set(float64(s.PendingTasks))
	m.busyRatio.Set(s.BusyRatio)
	m.totalSubmitted.Set(float64(s.TotalSubmitted))
	m.totalCompleted.Set(float64(s.TotalCompleted))
	m.totalFailed.Set(float64(s.TotalFailed))
	m.totalCancelled.Set(float64(s.TotalCancelled))
	m.totalRejected.Set(float64(s.TotalRejected))
}

// Collectors exposes the pool's Prometheus collectors for registration.
func (p *Pool) Collectors() []prometheus.Collector { return p.metrics.Collectors() }
