package clicks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nahpet/shortener/internal/model"
)

// QueuePublisher forwards click events to a message queue for downstream
// analytics consumers.
type QueuePublisher struct {
	channel *amqp.Channel
	queue   string
}

func NewQueuePublisher(channel *amqp.Channel, queue string) *QueuePublisher {
	return &QueuePublisher{channel: channel, queue: queue}
}

// Record publishes the click as a persistent JSON message on the default
// exchange, routed to the configured queue.
func (p *QueuePublisher) Record(ctx context.Context, click *model.ClickEvent) error {
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(click)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    click.CreatedAt,
		Body:         body,
	})
}

var _ Recorder = (*QueuePublisher)(nil)
var _ Recorder = (*StoreRecorder)(nil)
