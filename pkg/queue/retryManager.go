package queue

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryManager manages retry logic for failed publishes
type RetryManager struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryManager creates a new RetryManager
func NewRetryManager(maxRetries int, baseDelay time.Duration) *RetryManager {
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &RetryManager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16, // Maximum 16x base delay
	}
}

// ShouldRetry determines if a task should be retried and returns the delay
func (r *RetryManager) ShouldRetry(task *Task, err error) (bool, time.Duration) {
	limit := task.MaxRetries
	if limit == 0 {
		limit = r.maxRetries
	}
	if task.Attempts > limit {
		return false, 0
	}

	if !r.isRetryableError(err) {
		return false, 0
	}

	return true, r.calculateBackoff(task.Attempts)
}

func (r *RetryManager) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// calculateBackoff calculates exponential backoff delay with jitter
func (r *RetryManager) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return r.baseDelay
	}

	// Exponential backoff: base * 2^(attempt-1)
	backoff := r.baseDelay * time.Duration(1<<(attempt-1))
	if backoff > r.maxDelay || backoff <= 0 {
		backoff = r.maxDelay
	}

	// Apply jitter (±25%)
	jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
	if rand.Intn(2) == 0 {
		backoff += jitter
	} else {
		backoff -= jitter
	}

	if backoff > r.maxDelay {
		backoff = r.maxDelay
	}
	return backoff
}
