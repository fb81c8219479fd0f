package services

import (
	"context"
	"time"

	"taskorganizer/internal/models"
	"taskorganizer/internal/repositories"
)

type UpcomingDeadline struct {
	ID       int64               `json:"id"`
	Title    string              `json:"title"`
	DueAt    *time.Time          `json:"due_at,omitempty"`
	Priority models.TaskPriority `json:"priority"`
}

type AnalyticsSummary struct {
	TotalTasks        int                `json:"total_tasks"`
	CompletedTasks    int                `json:"completed_tasks"`
	OverdueTasks      int                `json:"overdue_tasks"`
	CompletionRate    float64            `json:"completion_rate"`
	TasksPerDay       map[string]int     `json:"tasks_per_day"`
	UpcomingDeadlines []UpcomingDeadline `json:"upcoming_deadlines"`
}

type AnalyticsService interface {
	GetSummary(ctx context.Context, userID int64) (*AnalyticsSummary, error)
}

type analyticsService struct {
	tasks repositories.TaskRepository
}

func NewAnalyticsService(tasks repositories.TaskRepository) AnalyticsService {
	return &analyticsService{tasks: tasks}
}

func (s *analyticsService) GetSummary(ctx context.Context, userID int64) (*AnalyticsSummary, error) {
	now := time.Now()

	total, err := s.tasks.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.tasks.CountByUserAndStatus(ctx, userID, models.StatusDone)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.CountOverdue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	perDay, err := s.tasks.CreatedPerDay(ctx, userID, now.AddDate(0, 0, -14))
	if err != nil {
		return nil, err
	}
	upcoming, err := s.tasks.ListUpcoming(ctx, userID, now, now.AddDate(0, 0, 7), 10)
	if err != nil {
		return nil, err
	}

	deadlines := make([]UpcomingDeadline, 0, len(upcoming))
	for _, t := range upcoming {
		deadlines = append(deadlines, UpcomingDeadline{
			ID:       t.ID,
			Title:    t.Title,
			DueAt:    t.DueAt,
			Priority: t.Priority,
		})
	}

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	return &AnalyticsSummary{
		TotalTasks:        total,
		CompletedTasks:    completed,
		OverdueTasks:      overdue,
		CompletionRate:    rate,
		TasksPerDay:       perDay,
		UpcomingDeadlines: deadlines,
	}, nil
}
