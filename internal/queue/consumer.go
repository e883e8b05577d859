package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one extraction job. A nil return acknowledges the
// delivery; an error requeues it for redelivery. Handlers absorb permanent
// failures themselves and return errors only for transient conditions, so a
// poisoned message cannot spin here.
type HandlerFunc func(ctx context.Context, fileID int64) error

// Executor runs a delivery's handling, typically on a worker pool. Submit
// blocks while the executor is saturated and returns false if ctx is
// cancelled before the work is accepted.
type Executor interface {
	Submit(ctx context.Context, fn func(context.Context)) bool
}

// Consumer consumes extraction jobs from a durable queue with manual acks.
// Delivery is at-least-once; the pipeline's idempotent overwrite makes
// duplicate deliveries safe.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	exec     Executor
	logger   *slog.Logger
}

// NewConsumer builds a consumer. prefetch bounds the number of unacked
// deliveries in flight, which in turn bounds the executor's backlog. A nil
// executor handles deliveries inline, one at a time.
func NewConsumer(url, queue string, prefetch int, exec Executor, logger *slog.Logger) *Consumer {
	if prefetch <= 0 {
		prefetch = 1
	}
	if exec == nil {
		exec = inlineExecutor{}
	}
	return &Consumer{url: url, queue: queue, prefetch: prefetch, exec: exec, logger: logger}
}

type inlineExecutor struct{}

func (inlineExecutor) Submit(ctx context.Context, fn func(context.Context)) bool {
	if ctx.Err() != nil {
		return false
	}
	fn(ctx)
	return true
}

// Run connects to the broker and consumes until ctx is cancelled. Broker
// failures trigger a reconnect loop with capped exponential backoff; the
// consumer keeps running across broker restarts.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Error("broker dial failed", "error", err, "retry_in", backoff.String())
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn, handle)
		_ = conn.Close()
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.logger.Error("consume loop ended, reconnecting", "error", err)
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, handle HandlerFunc) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.dispatch(ctx, d, handle)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery, handle HandlerFunc) {
	var job ExtractionJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.logger.Error("malformed job payload", "error", err)
		_ = d.Nack(false, false)
		return
	}
	accepted := c.exec.Submit(ctx, func(ctx context.Context) {
		if err := handle(ctx, job.FileID); err != nil {
			// Handler errors are transient (e.g. the catalog write failed);
			// requeue so the job is redelivered. The handler's idempotent
			// overwrite makes the retry safe.
			c.logger.Error("job handling failed, requeueing", "file_id", job.FileID, "error", err)
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
	})
	if !accepted {
		// Shutting down; hand the delivery back for another consumer.
		_ = d.Nack(false, true)
	}
}
