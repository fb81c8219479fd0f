package services

import (
	"bytes"
	"context"
	"fmt"

	"taskorganizer/internal/models"
	"taskorganizer/internal/pdf"
	"taskorganizer/internal/repositories"
)

type ReportService interface {
	TasksPDF(ctx context.Context, userID int64) ([]byte, error)
}

type reportService struct {
	tasks repositories.TaskRepository
	users repositories.UserRepository
	gen   pdf.Generator
}

func NewReportService(tasks repositories.TaskRepository, users repositories.UserRepository, gen pdf.Generator) ReportService {
	return &reportService{tasks: tasks, users: users, gen: gen}
}

func (s *reportService) TasksPDF(ctx context.Context, userID int64) ([]byte, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := ""
	if user != nil {
		name = user.Name
	}

	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.gen.TasksReport(&buf, name, tasks); err != nil {
		return nil, fmt.Errorf("render tasks report: %w", err)
	}
	return buf.Bytes(), nil
}
