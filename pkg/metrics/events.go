package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics tracks change notifications flowing through the hub.
type EventMetrics struct {
	published   *prometheus.CounterVec
	panics      *prometheus.CounterVec
	subscribers prometheus.Gauge
}

// NewEventMetrics registers the event hub metrics on the provided registerer.
func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	if reg == nil {
		return &EventMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_published_total",
		Help: "Change notifications published by topic.",
	}, []string{"topic"})
	panics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_event_handler_panics_total",
		Help: "Subscriber handlers that panicked while handling an event.",
	}, []string{"topic"})
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_event_subscribers",
		Help: "Currently registered subscriptions.",
	})
	reg.MustRegister(published, panics, subscribers)
	return &EventMetrics{
		published:   published,
		panics:      panics,
		subscribers: subscribers,
	}
}

func (e *EventMetrics) IncPublished(topic string) {
	if e == nil || e.published == nil {
		return
	}
	e.published.WithLabelValues(normalizeLabel(topic)).Inc()
}

func (e *EventMetrics) IncPanic(topic string) {
	if e == nil || e.panics == nil {
		return
	}
	e.panics.WithLabelValues(normalizeLabel(topic)).Inc()
}

func (e *EventMetrics) AddSubscribers(delta int) {
	if e == nil || e.subscribers == nil {
		return
	}
	e.subscribers.Add(float64(delta))
}
