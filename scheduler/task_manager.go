package scheduler

import (
	"log"
	"sync"
	"time"

	"crossprice/models"
)

// CompareFunc runs the comparison pipeline for one page URL.
type CompareFunc func(pageURL string) (*models.ComparisonReport, error)

// TaskManager manages async comparison tasks
type TaskManager struct {
	tasks       map[string]*models.CompareTask
	taskQueue   chan *models.CompareTask
	workers     int
	maxWorkers  int
	compareFunc CompareFunc
	mutex       sync.RWMutex
	stopChan    chan bool
}

// NewTaskManager creates a new task manager
func NewTaskManager(compareFunc CompareFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:       make(map[string]*models.CompareTask),
		taskQueue:   make(chan *models.CompareTask, 100), // Buffer for 100 tasks
		workers:     0,
		maxWorkers:  maxWorkers,
		compareFunc: compareFunc,
		stopChan:    make(chan bool),
	}

	go tm.processTasks()
	log.Printf("🚀 Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask submits a new comparison task
func (tm *TaskManager) SubmitTask(pageURL string) *models.CompareTask {
	task := models.NewCompareTask(pageURL)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	// Submit to queue
	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Task %s submitted for %s", task.ID, pageURL)
	default:
		task.Fail("Task queue is full")
		log.Printf("❌ Failed to submit task %s - queue full", task.ID)
	}

	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.CompareTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// GetActiveTasks returns all active tasks
func (tm *TaskManager) GetActiveTasks() []*models.CompareTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var activeTasks []*models.CompareTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			activeTasks = append(activeTasks, task)
		}
	}

	return activeTasks
}

// CleanupOldTasks removes completed tasks older than specified duration
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
			log.Printf("🧹 Cleaned up old task: %s", taskID)
		}
	}
}

// processTasks processes tasks from the queue
func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(5 * time.Second) // Cleanup every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			// Start a new worker if we haven't reached max
			if tm.tryAcquireWorker() {
				go tm.worker(task)
			} else {
				// Re-queue the task if we're at max workers
				go func() {
					time.Sleep(1 * time.Second) // Wait a bit before re-queuing
					select {
					case tm.taskQueue <- task:
						log.Printf("🔄 Re-queued task %s (max workers reached)", task.ID)
					default:
						task.Fail("System overloaded, unable to process task")
						log.Printf("❌ Failed to re-queue task %s", task.ID)
					}
				}()
			}

		case <-ticker.C:
			// Periodic cleanup
			tm.CleanupOldTasks(1 * time.Hour) // Keep tasks for 1 hour

		case <-tm.stopChan:
			log.Println("🛑 Task manager stopped")
			return
		}
	}
}

// tryAcquireWorker claims a worker slot when one is free
func (tm *TaskManager) tryAcquireWorker() bool {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	if tm.workers >= tm.maxWorkers {
		return false
	}
	tm.workers++
	return true
}

// releaseWorker frees a worker slot and returns the remaining count
func (tm *TaskManager) releaseWorker() int {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()
	tm.workers--
	return tm.workers
}

// worker processes a single task
func (tm *TaskManager) worker(task *models.CompareTask) {
	defer func() {
		log.Printf("👷 Worker finished, active workers: %d", tm.releaseWorker())
	}()

	log.Printf("👷 Worker started processing task %s for %s", task.ID, task.PageURL)

	task.Start()

	report, err := tm.compareFunc(task.PageURL)
	if err != nil {
		task.Fail("Comparison failed: " + err.Error())
		return
	}

	task.Complete(report)

	log.Printf("✅ Task %s completed successfully in %v", task.ID, task.Duration())
}

// Stop stops the task manager
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
	log.Println("🛑 Task manager stopping...")
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks":    len(tm.tasks),
		"active_workers": tm.workers,
		"max_workers":    tm.maxWorkers,
		"queue_size":     len(tm.taskQueue),
	}

	// Count tasks by status
	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		status := string(task.Status)
		statusCounts[status]++
	}
	stats["tasks_by_status"] = statusCounts

	return stats
}
