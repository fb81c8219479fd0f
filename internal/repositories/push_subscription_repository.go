package repositories

import (
	"context"
	"database/sql"

	"taskorganizer/internal/models"
)

type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID int64) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error
}

type pushSubscriptionRepository struct {
	db *sql.DB
}

func NewPushSubscriptionRepository(db *sql.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

// Upsert keeps one credential row per user+endpoint; re-subscribing from the
// same browser refreshes the key material.
func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, endpoint)
		DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.CreatedAt,
	).Scan(&sub.ID, &sub.CreatedAt)
}

func (r *pushSubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]models.PushSubscription, error) {
	q := `
SELECT id, user_id, endpoint, p256dh, auth, created_at
FROM push_subscriptions
WHERE user_id = $1
ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE user_id=$1 AND endpoint=$2`, userID, endpoint)
	return err
}
