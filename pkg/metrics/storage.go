package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics records collection reads and writes against the backend.
type StorageMetrics struct {
	ops       *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	malformed *prometheus.CounterVec
}

// NewStorageMetrics registers the storage metrics on the provided registerer.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	if reg == nil {
		return &StorageMetrics{}
	}
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_storage_operations_total",
		Help: "Collection reads and writes by outcome.",
	}, []string{"collection", "op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_storage_operation_duration_seconds",
		Help:    "Duration of backend reads and writes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op"})
	malformed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_storage_malformed_reads_total",
		Help: "Stored collections that failed to decode and were treated as empty.",
	}, []string{"collection"})
	reg.MustRegister(ops, duration, malformed)
	return &StorageMetrics{
		ops:       ops,
		duration:  duration,
		malformed: malformed,
	}
}

// Observe records one backend operation.
func (s *StorageMetrics) Observe(collection, op string, duration time.Duration, err error) {
	if s == nil || s.ops == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	collection = normalizeLabel(collection)
	s.ops.WithLabelValues(collection, op, outcome).Inc()
	s.duration.WithLabelValues(collection, op).Observe(duration.Seconds())
}

// IncMalformed counts a read that was recovered as empty.
func (s *StorageMetrics) IncMalformed(collection string) {
	if s == nil || s.malformed == nil {
		return
	}
	s.malformed.WithLabelValues(normalizeLabel(collection)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
