package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListClient struct {
	failures int
	pushErr  error
	pushed   [][]byte
	keys     []string
	pingErr  error
	closed   bool
}

func (f *fakeListClient) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.failures > 0 {
		f.failures--
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		f.pushed = append(f.pushed, v.([]byte))
		f.keys = append(f.keys, key)
	}
	return redis.NewIntResult(int64(len(f.pushed)), nil)
}

func (f *fakeListClient) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.pingErr)
}

func (f *fakeListClient) Close() error {
	f.closed = true
	return nil
}

func TestRedisQueuePublish(t *testing.T) {
	client := &fakeListClient{}
	q := newRedisQueue(client, "events", NewRetryManager(2, time.Millisecond))

	task := &Task{
		Type: TaskTypeBookingCreated,
		Data: map[string]interface{}{"booking_id": 1},
	}
	require.NoError(t, q.Publish(context.Background(), task))

	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, 1, task.Attempts)
	require.Len(t, client.pushed, 1)
	assert.Equal(t, "events", client.keys[0])

	var decoded Task
	require.NoError(t, json.Unmarshal(client.pushed[0], &decoded))
	assert.Equal(t, task.ID, decoded.ID)
	assert.Equal(t, TaskTypeBookingCreated, decoded.Type)
}

func TestRedisQueuePublishRetries(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		maxRetries   int
		wantErr      bool
		wantAttempts int
	}{
		{name: "recovers after transient failures", failures: 2, maxRetries: 3, wantAttempts: 3},
		{name: "gives up when retries are exhausted", failures: 5, maxRetries: 2, wantErr: true, wantAttempts: 3},
		{name: "no retries configured", failures: 1, maxRetries: 0, wantErr: true, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeListClient{failures: tt.failures, pushErr: errors.New("connection reset")}
			q := newRedisQueue(client, "events", NewRetryManager(tt.maxRetries, time.Millisecond))

			task := &Task{Type: TaskTypeBookingCancelled, Data: map[string]interface{}{}}
			err := q.Publish(context.Background(), task)

			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, client.pushed)
			} else {
				require.NoError(t, err)
				assert.Len(t, client.pushed, 1)
			}
			assert.Equal(t, tt.wantAttempts, task.Attempts)
		})
	}
}

func TestRedisQueuePublishStopsOnCancelledContext(t *testing.T) {
	client := &fakeListClient{failures: 10, pushErr: errors.New("timeout")}
	q := newRedisQueue(client, "events", NewRetryManager(10, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Publish(ctx, &Task{Type: TaskTypeBookingCreated, Data: map[string]interface{}{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisQueueRejectsInvalidTask(t *testing.T) {
	q := newRedisQueue(&fakeListClient{}, "", nil)

	require.Error(t, q.Publish(context.Background(), nil))
	require.Error(t, q.Publish(context.Background(), &Task{Data: map[string]interface{}{}}))
	require.Error(t, q.Publish(context.Background(), &Task{Type: TaskTypeBookingCreated, MaxRetries: -1}))
	assert.Equal(t, defaultEventKey, q.key)
}

func TestRedisQueueHealthCheckAndClose(t *testing.T) {
	client := &fakeListClient{}
	q := newRedisQueue(client, "events", nil)

	require.NoError(t, q.HealthCheck(context.Background()))

	client.pingErr = errors.New("refused")
	require.Error(t, q.HealthCheck(context.Background()))

	require.NoError(t, q.Close())
	assert.True(t, client.closed)
}
