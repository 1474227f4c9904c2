package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const defaultEventKey = "railway_reservation:events"

// listClient is the part of *redis.Client the queue relies on
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisQueue pushes tasks as JSON onto a Redis list, newest first.
// Consumers pop from the other end (RPOP/BRPOP) to read them in order.
type RedisQueue struct {
	client       listClient
	key          string
	retryManager *RetryManager
	now          func() time.Time
}

// NewRedisQueue creates a queue writing to key. A nil retryManager disables retries.
func NewRedisQueue(client *redis.Client, key string, retryManager *RetryManager) *RedisQueue {
	return newRedisQueue(client, key, retryManager)
}

func newRedisQueue(client listClient, key string, retryManager *RetryManager) *RedisQueue {
	if key == "" {
		key = defaultEventKey
	}
	if retryManager == nil {
		retryManager = NewRetryManager(0, 0)
	}

	logrus.WithField("key", key).Info("RedisQueue initialized")

	return &RedisQueue{
		client:       client,
		key:          key,
		retryManager: retryManager,
		now:          time.Now,
	}
}

// Publish sends a task to the queue, retrying transient failures with backoff
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if err := prepareTask(task, r.now); err != nil {
		return err
	}

	return publishWithRetry(ctx, "redis", task, r.retryManager, func(ctx context.Context, _ *Task, payload []byte) error {
		return r.client.LPush(ctx, r.key, payload).Err()
	})
}

// HealthCheck performs a health check on the queue
func (r *RedisQueue) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (r *RedisQueue) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	logrus.Info("RedisQueue closed")
	return nil
}
