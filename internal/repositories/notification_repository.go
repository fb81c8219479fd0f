package repositories

import (
	"context"
	"database/sql"

	"taskorganizer/internal/models"
)

type NotificationRepository interface {
	Store(ctx context.Context, n *models.Notification) error
	Update(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Store(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, task_id, channel, scheduled_for, delivered_at, payload)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		n.UserID, n.TaskID, n.Channel, n.ScheduledFor, n.DeliveredAt, []byte(n.Payload),
	).Scan(&n.ID)
}

func (r *notificationRepository) Update(ctx context.Context, n *models.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET delivered_at=$1, payload=$2 WHERE id=$3`,
		n.DeliveredAt, []byte(n.Payload), n.ID)
	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	q := `
SELECT id, user_id, task_id, channel, scheduled_for, delivered_at, payload
FROM notifications
WHERE user_id = $1
ORDER BY scheduled_for DESC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var payload []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Channel, &n.ScheduledFor, &n.DeliveredAt, &payload); err != nil {
			return nil, err
		}
		n.Payload = payload
		out = append(out, n)
	}
	return out, rows.Err()
}
