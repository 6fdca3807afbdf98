package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/canireach/canireach/internal/domain"
)

// Notifier publishes and subscribes to check-insert events. Dashboards
// use the stream only as a refresh hint; losing a message degrades
// timeliness, not correctness.
type Notifier struct {
	client *redis.Client
}

func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// PublishCheckBatch announces a persisted batch. Best effort: callers
// log a failure and move on.
func (n *Notifier) PublishCheckBatch(ctx context.Context, ev domain.CheckBatchEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal check event: %w", err)
	}
	if err := n.client.Publish(ctx, ChannelCheckInserts, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish check event: %w", err)
	}
	return nil
}

// Subscribe opens the insert-event channel. The caller owns the
// returned PubSub and must close it.
func (n *Notifier) Subscribe(ctx context.Context) *redis.PubSub {
	return n.client.Subscribe(ctx, ChannelCheckInserts)
}

// DecodeCheckBatch parses a published payload.
func DecodeCheckBatch(payload string) (domain.CheckBatchEvent, error) {
	var ev domain.CheckBatchEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to decode check event: %w", err)
	}
	return ev, nil
}
