package reminders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"taskorganizer/internal/models"
	"taskorganizer/internal/scheduler"
)

// JobKey derives the scheduler key for a task. One key per task id means a
// task can never own more than one pending reminder job.
func JobKey(taskID int64) string {
	return "reminder:" + strconv.FormatInt(taskID, 10)
}

type jobScheduler interface {
	Schedule(key string, fireAt time.Time, fn scheduler.JobFunc, taskID int64)
	Cancel(key string)
}

type reminderSource interface {
	ListWithFutureReminder(ctx context.Context, now time.Time) ([]models.Task, error)
}

// Coordinator keeps the scheduler's pending set consistent with the stored
// tasks. Task handlers call the OnTask* hooks after the corresponding row has
// been written; RebuildAll reconstructs the schedule on startup.
type Coordinator struct {
	sched    jobScheduler
	tasks    reminderSource
	dispatch scheduler.JobFunc
}

func NewCoordinator(sched jobScheduler, tasks reminderSource, dispatch scheduler.JobFunc) *Coordinator {
	return &Coordinator{sched: sched, tasks: tasks, dispatch: dispatch}
}

func (c *Coordinator) OnTaskCreated(task *models.Task) {
	c.scheduleIfNeeded(task)
}

// OnTaskUpdated cancels first so that cleared reminders, done tasks and
// payload-affecting edits all converge on the same path: re-evaluate from the
// stored task alone.
func (c *Coordinator) OnTaskUpdated(task *models.Task) {
	c.sched.Cancel(JobKey(task.ID))
	c.scheduleIfNeeded(task)
}

func (c *Coordinator) OnTaskDeleted(taskID int64) {
	c.sched.Cancel(JobKey(taskID))
}

// RebuildAll schedules a job for every stored task whose reminder is still in
// the future. Keys are task-derived, so running it again replaces rather than
// duplicates. Must be called after the scheduler loop is running and before
// the API starts accepting mutations.
func (c *Coordinator) RebuildAll(ctx context.Context) error {
	tasks, err := c.tasks.ListWithFutureReminder(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("list tasks with future reminder: %w", err)
	}
	for i := range tasks {
		c.scheduleIfNeeded(&tasks[i])
	}
	log.Info().Int("count", len(tasks)).Msg("reminder jobs rebuilt")
	return nil
}

// scheduleIfNeeded registers a job when the task carries a future reminder.
// Done tasks are skipped: completing a task settles its reminder.
func (c *Coordinator) scheduleIfNeeded(task *models.Task) {
	if task.RemindAt == nil || task.Status == models.StatusDone {
		return
	}
	if !task.RemindAt.After(time.Now()) {
		return
	}
	c.sched.Schedule(JobKey(task.ID), *task.RemindAt, c.dispatch, task.ID)
}
