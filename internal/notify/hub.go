package notify

import (
	"context"
	"sync"

	"github.com/canireach/canireach/internal/domain"
	"github.com/canireach/canireach/internal/logger"
	redisstore "github.com/canireach/canireach/internal/store/redis"
)

// subscriberBuffer bounds each SSE client's queue. A slow client loses
// refresh hints, never blocks the hub.
const subscriberBuffer = 8

// Hub bridges the redis insert channel to in-process subscribers (the
// /api/events SSE handler). Events are refresh hints only; dropping one
// costs timeliness, not correctness, since dashboards re-query the
// aggregates anyway.
type Hub struct {
	notifier *redisstore.Notifier
	logger   logger.Logger

	mu   sync.Mutex
	subs map[chan domain.CheckBatchEvent]struct{}

	stopCh chan struct{}
}

func NewHub(notifier *redisstore.Notifier, log logger.Logger) *Hub {
	return &Hub{
		notifier: notifier,
		logger:   log,
		subs:     make(map[chan domain.CheckBatchEvent]struct{}),
		stopCh:   make(chan struct{}),
	}
}

// Start subscribes to the redis channel and begins fanning out events.
func (h *Hub) Start(ctx context.Context) error {
	pubsub := h.notifier.Subscribe(ctx)

	go func() {
		defer func() {
			_ = pubsub.Close()
		}()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					h.logger.Warn("insert event channel closed")
					return
				}
				ev, err := redisstore.DecodeCheckBatch(msg.Payload)
				if err != nil {
					h.logger.Warn("dropping undecodable insert event", logger.Error(err))
					continue
				}
				h.Publish(ev)
			case <-h.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the fanout loop.
func (h *Hub) Stop() {
	close(h.stopCh)
}

// Publish delivers an event to every subscriber, dropping it for
// subscribers whose buffers are full.
func (h *Hub) Publish(ev domain.CheckBatchEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Subscribe registers a listener. The returned cancel must be called
// when the listener goes away; it closes the channel.
func (h *Hub) Subscribe() (<-chan domain.CheckBatchEvent, func()) {
	ch := make(chan domain.CheckBatchEvent, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the number of connected listeners.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
