package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryManagerShouldRetry(t *testing.T) {
	rm := NewRetryManager(3, 100*time.Millisecond)
	errTransient := errors.New("connection reset")

	tests := []struct {
		name      string
		task      Task
		err       error
		wantRetry bool
	}{
		{name: "first failure", task: Task{Attempts: 1}, err: errTransient, wantRetry: true},
		{name: "last allowed retry", task: Task{Attempts: 3}, err: errTransient, wantRetry: true},
		{name: "limit reached", task: Task{Attempts: 4}, err: errTransient, wantRetry: false},
		{name: "task limit overrides manager", task: Task{Attempts: 2, MaxRetries: 1}, err: errTransient, wantRetry: false},
		{name: "cancelled context", task: Task{Attempts: 1}, err: context.Canceled, wantRetry: false},
		{name: "deadline exceeded", task: Task{Attempts: 1}, err: context.DeadlineExceeded, wantRetry: false},
		{name: "nil error", task: Task{Attempts: 1}, err: nil, wantRetry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retry, delay := rm.ShouldRetry(&tt.task, tt.err)
			assert.Equal(t, tt.wantRetry, retry)
			if tt.wantRetry {
				assert.Positive(t, delay)
			} else {
				assert.Zero(t, delay)
			}
		})
	}
}

func TestRetryManagerBackoffBounds(t *testing.T) {
	base := 100 * time.Millisecond
	rm := NewRetryManager(10, base)

	for attempt := 1; attempt <= 10; attempt++ {
		delay := rm.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, delay, base*3/4, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, 16*base, "attempt %d", attempt)
	}
}

func TestNewRetryManagerDefaultsBaseDelay(t *testing.T) {
	rm := NewRetryManager(1, 0)
	assert.Equal(t, 100*time.Millisecond, rm.baseDelay)
	assert.Equal(t, 1600*time.Millisecond, rm.maxDelay)
}
