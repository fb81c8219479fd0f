package reminders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"taskorganizer/internal/models"
)

type taskStore interface {
	FindByID(ctx context.Context, id int64) (*models.Task, error)
}

type userStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type notificationStore interface {
	Store(ctx context.Context, n *models.Notification) error
	Update(ctx context.Context, n *models.Notification) error
}

type subscriptionStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.PushSubscription, error)
}

type emailSender interface {
	SendTaskReminder(to string, task *models.Task) error
}

type pushSender interface {
	Send(sub models.PushSubscription, payload []byte) error
}

// Dispatcher runs as the scheduler's fire callback. It re-reads the task from
// storage (the job carries only the id, never task fields), records a
// notification row, fans the payload out to web push and email, and stamps
// delivered_at once the attempts are done. Channel failures are logged and
// contained; nothing here ever reaches the scheduler loop.
type Dispatcher struct {
	tasks         taskStore
	users         userStore
	notifications notificationStore
	subscriptions subscriptionStore
	email         emailSender
	push          pushSender
}

func NewDispatcher(
	tasks taskStore,
	users userStore,
	notifications notificationStore,
	subscriptions subscriptionStore,
	email emailSender,
	push pushSender,
) *Dispatcher {
	return &Dispatcher{
		tasks:         tasks,
		users:         users,
		notifications: notifications,
		subscriptions: subscriptions,
		email:         email,
		push:          push,
	}
}

// Dispatch delivers the reminder for taskID. It is safe to call for tasks that
// were deleted after scheduling: the firing aborts without side effects.
func (d *Dispatcher) Dispatch(taskID int64) {
	ctx := context.Background()

	task, err := d.tasks.FindByID(ctx, taskID)
	if err != nil {
		log.Error().Err(err).Int64("task_id", taskID).Msg("reminder: fetch task failed")
		return
	}
	if task == nil {
		log.Debug().Int64("task_id", taskID).Msg("reminder: task gone, skipping")
		return
	}

	payload, _ := json.Marshal(models.NotificationPayload{
		Title:  "Reminder: " + task.Title,
		Body:   reminderBody(task),
		TaskID: task.ID,
	})

	n := &models.Notification{
		UserID:       task.UserID,
		TaskID:       &task.ID,
		Channel:      models.ChannelWebPush,
		ScheduledFor: scheduledFor(task),
		Payload:      payload,
	}
	if err := d.notifications.Store(ctx, n); err != nil {
		log.Error().Err(err).Int64("task_id", taskID).Msg("reminder: store notification failed")
		return
	}

	d.sendWebPush(ctx, task.UserID, payload)
	d.sendEmail(ctx, task)

	now := time.Now()
	n.DeliveredAt = &now
	if err := d.notifications.Update(ctx, n); err != nil {
		log.Error().Err(err).Int64("notification_id", n.ID).Msg("reminder: mark delivered failed")
	}
}

// scheduledFor falls back through due time to now so that rebuilt jobs whose
// reminder was cleared concurrently still produce a coherent record.
func scheduledFor(task *models.Task) time.Time {
	switch {
	case task.RemindAt != nil:
		return *task.RemindAt
	case task.DueAt != nil:
		return *task.DueAt
	default:
		return time.Now()
	}
}

func reminderBody(task *models.Task) string {
	if task.Description != "" {
		return task.Description
	}
	return "Task reminder"
}

func (d *Dispatcher) sendWebPush(ctx context.Context, userID int64, payload []byte) {
	subs, err := d.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("reminder: list push subscriptions failed")
		return
	}
	if len(subs) == 0 {
		return
	}
	for _, sub := range subs {
		if err := d.push.Send(sub, payload); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Str("endpoint", sub.Endpoint).
				Msg("reminder: web push failed")
		}
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, task *models.Task) {
	user, err := d.users.FindByID(ctx, task.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", task.UserID).Msg("reminder: fetch user failed")
		return
	}
	if user == nil {
		return
	}
	if err := d.email.SendTaskReminder(user.Email, task); err != nil {
		log.Warn().Err(err).Int64("task_id", task.ID).Msg("reminder: email failed")
	}
}
