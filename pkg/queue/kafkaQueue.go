package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const defaultKafkaTopic = "railway-reservation-events"

type KafkaQueueConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// messageWriter is the part of *kafka.Writer the queue relies on
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQueue writes tasks to a Kafka topic. Messages are keyed by booking so
// that the events of one booking land on the same partition in order.
type KafkaQueue struct {
	writer       messageWriter
	brokers      []string
	topic        string
	retryManager *RetryManager
	now          func() time.Time
}

// NewKafkaQueue builds a writer for cfg.Topic and dials the brokers once, so an
// unreachable cluster is reported here rather than on the first publish.
func NewKafkaQueue(ctx context.Context, cfg KafkaQueueConfig, retryManager *RetryManager) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = defaultKafkaTopic
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		// retries are driven by RetryManager
		MaxAttempts: 1,
	}

	q := newKafkaQueue(writer, cfg.Topic, retryManager)
	q.brokers = cfg.Brokers

	dialCtx, cancel := context.WithTimeout(ctx, cfg.WriteTimeout)
	defer cancel()
	if err := q.HealthCheck(dialCtx); err != nil {
		writer.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Info("KafkaQueue initialized")

	return q, nil
}

func newKafkaQueue(writer messageWriter, topic string, retryManager *RetryManager) *KafkaQueue {
	if retryManager == nil {
		retryManager = NewRetryManager(0, 0)
	}
	return &KafkaQueue{
		writer:       writer,
		topic:        topic,
		retryManager: retryManager,
		now:          time.Now,
	}
}

func (k *KafkaQueue) Publish(ctx context.Context, task *Task) error {
	if err := prepareTask(task, k.now); err != nil {
		return err
	}

	return publishWithRetry(ctx, "kafka", task, k.retryManager, func(ctx context.Context, task *Task, payload []byte) error {
		return k.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(partitionKey(task)),
			Value: payload,
			Time:  task.CreatedAt,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(task.Type)},
				{Key: "task_id", Value: []byte(task.ID)},
			},
		})
	})
}

func partitionKey(task *Task) string {
	if id, ok := task.Data["booking_id"]; ok {
		return fmt.Sprint(id)
	}
	return task.ID
}

// HealthCheck dials the first reachable broker
func (k *KafkaQueue) HealthCheck(ctx context.Context) error {
	if len(k.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	var lastErr error
	for _, broker := range k.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return nil
	}
	return fmt.Errorf("kafka brokers unreachable: %w", lastErr)
}

func (k *KafkaQueue) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	logrus.Info("KafkaQueue closed")
	return nil
}
