package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mortgage-underwriting/internal/domain/notification"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
)

var _ notification.Notifier = (*Publisher)(nil)

// Message is the JSON body published for every lifecycle event.
type Message struct {
	EventID    string                 `json:"event_id"`
	Event      notification.EventType `json:"event"`
	LoanID     string                 `json:"loan_id"`
	Payload    map[string]any         `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher sends lifecycle events to a Pub/Sub topic, ordered per loan.
type Publisher struct {
	topic *pubsub.Topic
	now   func() time.Time
}

func NewPublisher(client *pubsub.Client, topicID string) *Publisher {
	t := client.Topic(topicID)
	t.EnableMessageOrdering = true
	return &Publisher{topic: t, now: func() time.Time { return time.Now().UTC() }}
}

// Notify blocks until the server acknowledged the message.
func (p *Publisher) Notify(ctx context.Context, event notification.EventType, loanID string, payload map[string]any) error {
	msg := Message{
		EventID:    uuid.NewString(),
		Event:      event,
		LoanID:     loanID,
		Payload:    payload,
		OccurredAt: p.now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:        data,
		OrderingKey: loanID,
		Attributes: map[string]string{
			"event_id":   msg.EventID,
			"event_type": string(event),
			"loan_id":    loanID,
		},
	})
	if _, err := res.Get(ctx); err != nil {
		// a failed ordered publish pauses the key until resumed
		p.topic.ResumePublish(loanID)
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Stop flushes pending messages.
func (p *Publisher) Stop() { p.topic.Stop() }
