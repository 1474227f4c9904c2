package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const defaultRabbitQueueName = "railway_reservation.events"

type RabbitQueueConfig struct {
	URL         string
	QueueName   string
	DialTimeout time.Duration
}

// amqpChannel is the part of *amqp.Channel the queue relies on
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitQueue publishes tasks as persistent JSON messages to a durable
// RabbitMQ queue through the default exchange.
type RabbitQueue struct {
	conn         *amqp.Connection
	channel      amqpChannel
	queueName    string
	retryManager *RetryManager
	now          func() time.Time
}

func NewRabbitQueue(cfg RabbitQueueConfig, retryManager *RetryManager) (*RabbitQueue, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if cfg.QueueName == "" {
		cfg.QueueName = defaultRabbitQueueName
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{Dial: amqp.DefaultDial(cfg.DialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		cfg.QueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		amqp.Table{
			"x-queue-mode": "lazy",
		},
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logrus.WithField("queue", cfg.QueueName).Info("RabbitQueue initialized")

	q := newRabbitQueue(channel, cfg.QueueName, retryManager)
	q.conn = conn
	return q, nil
}

func newRabbitQueue(channel amqpChannel, queueName string, retryManager *RetryManager) *RabbitQueue {
	if retryManager == nil {
		retryManager = NewRetryManager(0, 0)
	}
	return &RabbitQueue{
		channel:      channel,
		queueName:    queueName,
		retryManager: retryManager,
		now:          time.Now,
	}
}

func (r *RabbitQueue) Publish(ctx context.Context, task *Task) error {
	if err := prepareTask(task, r.now); err != nil {
		return err
	}

	return publishWithRetry(ctx, "rabbitmq", task, r.retryManager, func(ctx context.Context, task *Task, payload []byte) error {
		return r.channel.PublishWithContext(
			ctx,
			"",          // exchange
			r.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         payload,
				DeliveryMode: amqp.Persistent,
				MessageId:    task.ID,
				Type:         string(task.Type),
				Timestamp:    task.CreatedAt,
			},
		)
	})
}

func (r *RabbitQueue) HealthCheck(_ context.Context) error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	return nil
}

func (r *RabbitQueue) Close() error {
	var errs []error

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ: %w", errors.Join(errs...))
	}
	logrus.Info("RabbitQueue closed")
	return nil
}
