package events

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Event is a "collection changed" signal. Subscribers re-read the collection
// they care about; the event carries no payload.
type Event struct {
	Topic      enums.EventTopic `json:"topic"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Handler reacts to an event. It runs on the publisher's goroutine and must not block.
type Handler func(ctx context.Context, evt Event)

// Publisher is what repositories need: raise a signal after a write completed.
type Publisher interface {
	Publish(ctx context.Context, topic enums.EventTopic)
}

// Subscriber registers handlers for topics.
type Subscriber interface {
	Subscribe(handler Handler, topics ...enums.EventTopic) *Subscription
}

// Hub fans events out to subscribers in-process.
type Hub struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*Subscription
	logg    *logger.Logger
	metrics *metrics.EventMetrics
	now     func() time.Time
}

// Subscription is returned by Subscribe; call Unsubscribe when the consumer goes away.
type Subscription struct {
	id      uint64
	hub     *Hub
	topics  map[enums.EventTopic]struct{}
	handler Handler
	once    sync.Once
}

// NewHub builds an empty hub. logg and m may be nil.
func NewHub(logg *logger.Logger, m *metrics.EventMetrics) *Hub {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Hub{
		subs:    make(map[uint64]*Subscription),
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}
}

// Subscribe registers handler for the given topics, or for every topic when none are given.
func (h *Hub) Subscribe(handler Handler, topics ...enums.EventTopic) *Subscription {
	if len(topics) == 0 {
		topics = enums.EventTopics()
	}
	set := make(map[enums.EventTopic]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}

	h.mu.Lock()
	h.nextID++
	sub := &Subscription{id: h.nextID, hub: h, topics: set, handler: handler}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	h.metrics.AddSubscribers(1)
	return sub
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		s.hub.metrics.AddSubscribers(-1)
	})
}

// Publish delivers topic synchronously to every matching subscriber, in
// subscription order. A panicking handler is logged and skipped.
func (h *Hub) Publish(ctx context.Context, topic enums.EventTopic) {
	evt := Event{Topic: topic, OccurredAt: h.now().UTC()}

	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		if _, ok := sub.topics[topic]; ok {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()
	slices.SortFunc(targets, func(a, b *Subscription) int { return cmp.Compare(a.id, b.id) })

	h.metrics.IncPublished(string(topic))
	for _, sub := range targets {
		h.deliver(ctx, sub, evt)
	}
}

// SubscriberCount returns the number of subscriptions listening to topic.
func (h *Hub) SubscriberCount(topic enums.EventTopic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, sub := range h.subs {
		if _, ok := sub.topics[topic]; ok {
			n++
		}
	}
	return n
}

func (h *Hub) deliver(ctx context.Context, sub *Subscription, evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			h.metrics.IncPanic(string(evt.Topic))
			logCtx := h.logg.WithFields(ctx, map[string]any{
				"topic":           evt.Topic,
				"subscription_id": sub.id,
			})
			h.logg.Error(logCtx, "events.handler_panic", fmt.Errorf("panic: %v", rec))
		}
	}()
	sub.handler(ctx, evt)
}
