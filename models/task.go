package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// CompareTask represents an async comparison run for one page.
type CompareTask struct {
	ID          string            `json:"id"`
	PageURL     string            `json:"page_url"`
	Status      TaskStatus        `json:"status"`
	Message     string            `json:"message"`
	Result      *ComparisonReport `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewCompareTask creates a queued comparison task.
func NewCompareTask(pageURL string) *CompareTask {
	return &CompareTask{
		ID:        generateTaskID(),
		PageURL:   pageURL,
		Status:    TaskStatusQueued,
		Message:   "Task queued for processing",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *CompareTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Running price comparison..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with result
func (t *CompareTask) Complete(result *ComparisonReport) {
	t.Status = TaskStatusCompleted
	t.Message = "Comparison completed"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with error
func (t *CompareTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Comparison failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *CompareTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still running
func (t *CompareTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns the duration of the task
func (t *CompareTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "task_" + time.Now().Format("20060102150405")
	}
	return "task_" + time.Now().Format("20060102150405") + "_" + hex.EncodeToString(b)
}
