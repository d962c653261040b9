package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	TargetFile  = "file"
	TargetLocal = "local"

	ResultOK     = "ok"
	ResultFailed = "failed"
)

// CommitMetrics records every commit attempt against the linked file and the durable store.
type CommitMetrics struct {
	attempts   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	storageLow prometheus.Gauge
}

// NewCommitMetrics registers the commit metrics on the provided registerer.
func NewCommitMetrics(reg prometheus.Registerer) *CommitMetrics {
	if reg == nil {
		return &CommitMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commit_attempts_total",
		Help: "Commit attempts per collection and target.",
	}, []string{"collection", "target", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commit_duration_seconds",
		Help:    "Duration of commit attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "target", "result"})
	storageLow := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storage_low",
		Help: "1 while the durable store is refusing writes for lack of space.",
	})
	reg.MustRegister(attempts, duration, storageLow)
	return &CommitMetrics{
		attempts:   attempts,
		duration:   duration,
		storageLow: storageLow,
	}
}

// Observe counts one attempt and records how long it took.
func (c *CommitMetrics) Observe(collection, target string, err error, took time.Duration) {
	if c == nil || c.attempts == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	collection = normalizeLabel(collection)
	c.attempts.WithLabelValues(collection, target, result).Inc()
	c.duration.WithLabelValues(collection, target, result).Observe(took.Seconds())
}

// SetStorageLow mirrors the storage warning flag.
func (c *CommitMetrics) SetStorageLow(low bool) {
	if c == nil || c.storageLow == nil {
		return
	}
	if low {
		c.storageLow.Set(1)
		return
	}
	c.storageLow.Set(0)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
