package notifyredis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
)

// QueueDispatcher implements notify.Dispatcher by pushing events onto a
// Redis list consumed by the mailer worker.
type QueueDispatcher struct {
	client    *redis.Client
	queueName string
}

var _ notify.Dispatcher = (*QueueDispatcher)(nil)

// NewQueueDispatcher creates a Redis-backed dispatcher.
func NewQueueDispatcher(client *redis.Client, queueName string) *QueueDispatcher {
	return &QueueDispatcher{
		client:    client,
		queueName: queueName,
	}
}

type event struct {
	Kind       notify.TemplateKind `json:"kind"`
	Recipient  kernel.Email        `json:"recipient"`
	Data       map[string]any      `json:"data,omitempty"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
}

// Dispatch enqueues the event for the mailer.
func (d *QueueDispatcher) Dispatch(ctx context.Context, kind notify.TemplateKind, recipient kernel.Email, data map[string]any) error {
	payload, err := json.Marshal(event{
		Kind:       kind,
		Recipient:  recipient,
		Data:       data,
		EnqueuedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", kind, err)
	}

	if err := d.client.LPush(ctx, d.queueName, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", kind, err)
	}

	return nil
}

// QueueSize returns the number of pending notification events.
func (d *QueueDispatcher) QueueSize(ctx context.Context) (int64, error) {
	size, err := d.client.LLen(ctx, d.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("get queue size: %w", err)
	}
	return size, nil
}
