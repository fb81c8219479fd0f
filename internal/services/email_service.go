package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"taskorganizer/internal/models"
)

type EmailService interface {
	SendTaskReminder(to string, task *models.Task) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendTaskReminder(to string, task *models.Task) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reminder: "+task.Title)

	due := "No deadline"
	if task.DueAt != nil {
		due = task.DueAt.Format("2006-01-02 15:04")
	}

	description := ""
	if task.Description != "" {
		description = fmt.Sprintf("<p>%s</p>", task.Description)
	}

	body := fmt.Sprintf(`
		<h2>Task Reminder</h2>
		<p><strong>%s</strong></p>
		%s
		<p>Due: %s</p>
		<p>Priority: %s</p>
	`, task.Title, description, due, task.Priority)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	return nil
}
