package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront/api/responses"
	internalevents "github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// StreamOptions tunes a client stream.
type StreamOptions struct {
	Buffer    int
	Heartbeat time.Duration
}

// Stream relays hub events to the client as server-sent events until the
// request ends. The optional "topic" query parameter (repeatable) narrows the
// subscription. A slow client drops events rather than blocking publishers.
func Stream(hub internalevents.Subscriber, opts StreamOptions, logg *logger.Logger) http.HandlerFunc {
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event hub unavailable"))
			return
		}

		topics, err := parseTopics(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		queue := make(chan internalevents.Event, opts.Buffer)
		sub := hub.Subscribe(func(_ context.Context, evt internalevents.Event) {
			select {
			case queue <- evt:
			default:
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "topic", evt.Topic), "events.stream_dropped")
				}
			}
		}, topics...)
		defer sub.Unsubscribe()

		rc := http.NewResponseController(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(opts.Heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case evt := <-queue:
				if err := writeEvent(w, evt); err != nil {
					if logg != nil {
						logg.Warn(logg.WithField(ctx, "error", err.Error()), "events.stream_write_failed")
					}
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, evt internalevents.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Topic, payload)
	return err
}

func parseTopics(r *http.Request) ([]enums.EventTopic, error) {
	raw := r.URL.Query()["topic"]
	topics := make([]enums.EventTopic, 0, len(raw))
	for _, value := range raw {
		topic, err := enums.ParseEventTopic(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid topic").
				WithDetails(map[string]string{"topic": value})
		}
		topics = append(topics, topic)
	}
	return topics, nil
}
