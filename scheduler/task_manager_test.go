package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossprice/models"
)

func TestTaskManagerWorkerCountStaysConsistent(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 16)

	compare := func(pageURL string) (*models.ComparisonReport, error) {
		started <- struct{}{}
		<-release
		return &models.ComparisonReport{PageURL: pageURL}, nil
	}

	tm := NewTaskManager(compare, 2)
	defer tm.Stop()

	var tasks []*models.CompareTask
	for i := 0; i < 4; i++ {
		tasks = append(tasks, tm.SubmitTask(fmt.Sprintf("https://shop.example/p/%d", i)))
	}

	// Two workers run, the rest waits; hammer GetStats concurrently while
	// they do, and the cap must hold in every sample
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("workers did not start")
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				stats := tm.GetStats()
				active := stats["active_workers"].(int)
				assert.LessOrEqual(t, active, 2)
				assert.GreaterOrEqual(t, active, 0)
			}
		}()
	}
	wg.Wait()

	close(release)

	require.NoError(t, waitForCompletion(tm, tasks, 15*time.Second))

	for _, task := range tasks {
		got, ok := tm.GetTask(task.ID)
		require.True(t, ok)
		assert.Equal(t, models.TaskStatusCompleted, got.Status)
	}
}

func waitForCompletion(tm *TaskManager, tasks []*models.CompareTask, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		done := 0
		for _, task := range tasks {
			if got, ok := tm.GetTask(task.ID); ok && got.IsCompleted() {
				done++
			}
		}
		if done == len(tasks) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return errors.New("tasks did not complete in time")
}
