package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type TaskType string

const (
	TaskTypeBookingCreated   TaskType = "booking_created"
	TaskTypeBookingCancelled TaskType = "booking_cancelled"
)

// Queue accepts tasks for downstream consumers
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// Task represents a unit of work in the queue
type Task struct {
	ID         string                 `json:"id"`
	Type       TaskType               `json:"type"`
	Data       map[string]interface{} `json:"data"`
	CreatedAt  time.Time              `json:"created_at"`
	Attempts   int                    `json:"attempts"`
	MaxRetries int                    `json:"max_retries"`
}

// Validate checks if the task is valid
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task ID is required")
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return fmt.Errorf("task type is required")
	}
	if t.Data == nil {
		return fmt.Errorf("task data is required")
	}
	if t.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}
