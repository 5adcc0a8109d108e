package testutil

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/testcontainers/testcontainers-go"
	rabbitTC "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nahpet/shortener/internal/infra"
)

// TestQueue holds test message queue resources
type TestQueue struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	Queue     string
	container *rabbitTC.RabbitMQContainer
}

// SetupTestQueue creates a new test RabbitMQ container with the given
// queue declared.
func SetupTestQueue(ctx context.Context, queue string) (*TestQueue, error) {
	container, err := rabbitTC.Run(ctx,
		"rabbitmq:3-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		if terr := container.Terminate(ctx); terr != nil {
			err = terr
		}
		return nil, err
	}

	conn, ch, err := infra.NewQueueChannel(amqpURL, queue)
	if err != nil {
		if terr := container.Terminate(ctx); terr != nil {
			err = terr
		}
		return nil, err
	}

	return &TestQueue{Conn: conn, Channel: ch, Queue: queue, container: container}, nil
}

// Container exposes the underlying container for tests that need raw
// connection details.
func (t *TestQueue) Container() *rabbitTC.RabbitMQContainer {
	return t.container
}

// Cleanup drains the queue.
func (t *TestQueue) Cleanup(ctx context.Context) {
	if t == nil || t.Channel == nil {
		return
	}
	if _, err := t.Channel.QueuePurge(t.Queue, false); err != nil {
		return
	}
}

// Teardown closes connections and terminates container
func (t *TestQueue) Teardown(ctx context.Context) {
	if t.Channel != nil {
		t.Channel.Close()
	}
	if t.Conn != nil {
		t.Conn.Close()
	}
	if t.container != nil {
		if err := t.container.Terminate(ctx); err != nil {
			return
		}
	}
}
