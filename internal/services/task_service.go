package services

import (
	"context"
	"errors"
	"time"

	"taskorganizer/internal/models"
	"taskorganizer/internal/repositories"
)

// ErrRemindAfterDue is returned when a task carries both timestamps and the
// reminder falls after the deadline.
var ErrRemindAfterDue = errors.New("remind_at must be before or equal to due_at")

// ReminderHooks is what the task service needs from the reminder coordinator.
// Hooks run synchronously after the task row has been written.
type ReminderHooks interface {
	OnTaskCreated(task *models.Task)
	OnTaskUpdated(task *models.Task)
	OnTaskDeleted(taskID int64)
}

// TaskService defines task business logic scoped to the owning user.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, userID, id int64, updateData *models.Task) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type taskService struct {
	repo      repositories.TaskRepository
	reminders ReminderHooks
}

// NewTaskService creates a new instance of TaskService. reminders may be nil.
func NewTaskService(repo repositories.TaskRepository, reminders ReminderHooks) TaskService {
	return &taskService{repo: repo, reminders: reminders}
}

func validateReminder(task *models.Task) error {
	if task.RemindAt != nil && task.DueAt != nil && task.RemindAt.After(*task.DueAt) {
		return ErrRemindAfterDue
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := validateReminder(task); err != nil {
		return nil, err
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	if s.reminders != nil {
		s.reminders.OnTaskCreated(task)
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil || task.UserID != userID {
		return nil, nil
	}
	return task, nil
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, userID, id int64, updateData *models.Task) (*models.Task, error) {
	existing, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	existing.Title = updateData.Title
	existing.Description = updateData.Description
	existing.Priority = updateData.Priority
	existing.Status = updateData.Status
	existing.DueAt = updateData.DueAt
	existing.RemindAt = updateData.RemindAt

	if err := validateReminder(existing); err != nil {
		return nil, err
	}

	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if s.reminders != nil {
		s.reminders.OnTaskUpdated(existing)
	}
	return existing, nil
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	existing, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.reminders != nil {
		s.reminders.OnTaskDeleted(id)
	}
	return nil
}
