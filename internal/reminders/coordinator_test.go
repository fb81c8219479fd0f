package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskorganizer/internal/models"
	"taskorganizer/internal/scheduler"
)

type fakeReminderSource struct {
	tasks []models.Task
	err   error
}

func (f *fakeReminderSource) ListWithFutureReminder(ctx context.Context, now time.Time) ([]models.Task, error) {
	return f.tasks, f.err
}

func futureTask(id int64, remindIn time.Duration) *models.Task {
	remind := time.Now().Add(remindIn)
	return &models.Task{
		ID:       id,
		UserID:   1,
		Title:    "write report",
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		RemindAt: &remind,
	}
}

func newTestCoordinator(src *fakeReminderSource) (*Coordinator, *scheduler.Scheduler) {
	sched := scheduler.New()
	c := NewCoordinator(sched, src, func(int64) {})
	return c, sched
}

func TestOnTaskCreatedSchedulesFutureReminder(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	task := futureTask(42, time.Hour)
	c.OnTaskCreated(task)

	assert.True(t, sched.Contains(JobKey(42)))
	assert.Equal(t, 1, sched.Len())

	fireAt, ok := sched.FireTime(JobKey(42))
	require.True(t, ok)
	assert.True(t, fireAt.Equal(*task.RemindAt))
}

func TestOnTaskCreatedSkipsPastReminder(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	remind := time.Now().Add(-time.Minute)
	c.OnTaskCreated(&models.Task{ID: 1, RemindAt: &remind, Status: models.StatusTodo})

	assert.Equal(t, 0, sched.Len())
}

func TestOnTaskCreatedSkipsNoReminder(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	c.OnTaskCreated(&models.Task{ID: 1, Status: models.StatusTodo})

	assert.Equal(t, 0, sched.Len())
}

func TestOnTaskCreatedSkipsDoneTask(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	task := futureTask(1, time.Hour)
	task.Status = models.StatusDone
	c.OnTaskCreated(task)

	assert.Equal(t, 0, sched.Len())
}

func TestOnTaskUpdatedNeverDuplicates(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	task := futureTask(7, time.Hour)
	c.OnTaskCreated(task)

	for i := 1; i <= 10; i++ {
		remind := time.Now().Add(time.Duration(i) * time.Hour)
		task.RemindAt = &remind
		c.OnTaskUpdated(task)
		assert.Equal(t, 1, sched.Len())
	}

	fireAt, ok := sched.FireTime(JobKey(7))
	require.True(t, ok)
	assert.True(t, fireAt.Equal(*task.RemindAt))
}

func TestOnTaskUpdatedClearedReminderCancels(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	task := futureTask(7, time.Hour)
	c.OnTaskCreated(task)
	require.True(t, sched.Contains(JobKey(7)))

	task.RemindAt = nil
	c.OnTaskUpdated(task)

	assert.False(t, sched.Contains(JobKey(7)))
	assert.Equal(t, 0, sched.Len())
}

func TestOnTaskUpdatedDoneCancels(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	task := futureTask(7, time.Hour)
	c.OnTaskCreated(task)

	task.Status = models.StatusDone
	c.OnTaskUpdated(task)

	assert.False(t, sched.Contains(JobKey(7)))
}

func TestOnTaskDeletedCancels(t *testing.T) {
	c, sched := newTestCoordinator(&fakeReminderSource{})

	c.OnTaskCreated(futureTask(9, time.Hour))
	c.OnTaskDeleted(9)

	assert.Equal(t, 0, sched.Len())

	// deleting a task that never had a job is fine
	c.OnTaskDeleted(10)
}

func TestRebuildAllIsIdempotent(t *testing.T) {
	src := &fakeReminderSource{tasks: []models.Task{
		*futureTask(1, time.Hour),
		*futureTask(2, 2*time.Hour),
		*futureTask(3, 3*time.Hour),
	}}
	c, sched := newTestCoordinator(src)

	require.NoError(t, c.RebuildAll(context.Background()))
	assert.Equal(t, 3, sched.Len())

	require.NoError(t, c.RebuildAll(context.Background()))
	assert.Equal(t, 3, sched.Len())
}

func TestRebuildAllPropagatesStoreError(t *testing.T) {
	src := &fakeReminderSource{err: assert.AnError}
	c, sched := newTestCoordinator(src)

	err := c.RebuildAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, sched.Len())
}

func TestJobKeyDeterministic(t *testing.T) {
	assert.Equal(t, "reminder:42", JobKey(42))
	assert.Equal(t, JobKey(7), JobKey(7))
	assert.NotEqual(t, JobKey(7), JobKey(8))
}
