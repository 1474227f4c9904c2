package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	messages []kafka.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("leader not available")
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaQueuePublish(t *testing.T) {
	w := &fakeWriter{failures: 2}
	q := newKafkaQueue(w, "events", NewRetryManager(3, time.Millisecond))

	task := &Task{Type: TaskTypeBookingCancelled, Data: map[string]interface{}{"booking_id": int64(12)}}
	require.NoError(t, q.Publish(context.Background(), task))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "type", Value: []byte(TaskTypeBookingCancelled)})
	assert.Equal(t, 3, task.Attempts)
}

func TestKafkaPartitionKeyFallsBackToTaskID(t *testing.T) {
	task := &Task{ID: "t-1", Data: map[string]interface{}{}}
	assert.Equal(t, "t-1", partitionKey(task))
}

func TestKafkaQueueConfigAndClose(t *testing.T) {
	_, err := NewKafkaQueue(context.Background(), KafkaQueueConfig{}, nil)
	require.Error(t, err)

	w := &fakeWriter{}
	q := newKafkaQueue(w, "events", nil)
	assert.Error(t, q.HealthCheck(context.Background()))
	require.NoError(t, q.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaQueueUnreachableBroker(t *testing.T) {
	start := time.Now()
	q, err := NewKafkaQueue(context.Background(), KafkaQueueConfig{
		Brokers:      []string{"127.0.0.1:1"},
		Topic:        "events",
		WriteTimeout: 500 * time.Millisecond,
	}, nil)
	require.Error(t, err)
	assert.Nil(t, q)
	assert.Contains(t, err.Error(), "kafka brokers unreachable")
	assert.Less(t, time.Since(start), 2*time.Second)
}
