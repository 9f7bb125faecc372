// Package queue connects the resume intake to the scoring worker through
// RabbitMQ. The publisher enqueues scoring jobs at submission time; the
// consumer runs them in the background with at-least-once delivery.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"hireflow/internal/config"
	"hireflow/internal/service"
)

// Client wraps one AMQP connection and channel bound to the scoring queue
type Client struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

// New connects to the broker and declares the scoring queue
func New(cfg *config.QueueConfig) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// One unacked message per consumer keeps slow scoring from hoarding work.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	return &Client{conn: conn, channel: channel, queueName: cfg.QueueName}, nil
}

// Close tears down the channel and connection
func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// EnqueueScoring publishes a scoring job. Implements service.ScoringEnqueuer.
func (c *Client) EnqueueScoring(job service.ScoringJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal scoring job: %w", err)
	}

	return c.channel.Publish(
		"",          // default exchange
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume runs the scoring worker until ctx is cancelled. Messages that fail
// processing are requeued once; a second failure dead-ends the message so a
// poison job cannot spin the worker.
func (c *Client) Consume(ctx context.Context, scorer *service.ScoringService) error {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case delivery, ok := <-deliveries:
				if !ok {
					return fmt.Errorf("delivery channel closed")
				}
				c.handle(ctx, scorer, delivery)
			}
		}
	})

	slog.Info("scoring consumer started", "queue", c.queueName)
	return g.Wait()
}

func (c *Client) handle(ctx context.Context, scorer *service.ScoringService, delivery amqp.Delivery) {
	var job service.ScoringJob
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		slog.Error("dropping malformed scoring message", "error", err)
		delivery.Nack(false, false)
		return
	}

	if err := scorer.Process(ctx, job); err != nil {
		requeue := !delivery.Redelivered
		slog.Error("scoring job failed",
			"evaluation_id", job.EvaluationID, "requeue", requeue, "error", err)
		delivery.Nack(false, requeue)
		return
	}

	delivery.Ack(false)
}

// InlineEnqueuer runs scoring synchronously in a goroutine when no broker is
// configured. Deliveries are lost on process restart; acceptable for
// development setups only.
type InlineEnqueuer struct {
	Scorer *service.ScoringService
}

// EnqueueScoring implements service.ScoringEnqueuer
func (e *InlineEnqueuer) EnqueueScoring(job service.ScoringJob) error {
	go func() {
		if err := e.Scorer.Process(context.Background(), job); err != nil {
			slog.Error("inline scoring failed", "evaluation_id", job.EvaluationID, "error", err)
		}
	}()
	return nil
}
