package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskorganizer/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error

	// ListWithFutureReminder returns tasks whose reminder is still ahead of now.
	// Done tasks are excluded; their reminders are considered settled.
	ListWithFutureReminder(ctx context.Context, now time.Time) ([]models.Task, error)

	// analytics
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByUserAndStatus(ctx context.Context, userID int64, status models.TaskStatus) (int, error)
	CountOverdue(ctx context.Context, userID int64, now time.Time) (int, error)
	CreatedPerDay(ctx context.Context, userID int64, since time.Time) (map[string]int, error)
	ListUpcoming(ctx context.Context, userID int64, from, to time.Time, limit int) ([]models.Task, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, priority, status, due_at, remind_at, created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.DueAt, &t.RemindAt, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, priority, status, due_at, remind_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Priority, task.Status,
		task.DueAt, task.RemindAt, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, query, id), task)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
	args = append(args, filter.UserID)
	argID++

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, *filter.Priority)
		argID++
	}
	if filter.DueFrom != nil {
		conditions = append(conditions, fmt.Sprintf("due_at >= $%d", argID))
		args = append(args, *filter.DueFrom)
		argID++
	}
	if filter.DueTo != nil {
		conditions = append(conditions, fmt.Sprintf("due_at <= $%d", argID))
		args = append(args, *filter.DueTo)
		argID++
	}

	baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	baseQuery += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		baseQuery += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, priority=$3, status=$4,
			due_at=$5, remind_at=$6, updated_at=$7
		WHERE id=$8`
	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Priority, task.Status,
		task.DueAt, task.RemindAt, task.UpdatedAt, task.ID,
	)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *taskRepository) ListWithFutureReminder(ctx context.Context, now time.Time) ([]models.Task, error) {
	q := `
SELECT ` + taskColumns + `
FROM tasks
WHERE remind_at IS NOT NULL
  AND remind_at > $1
  AND status <> 'done'
ORDER BY remind_at ASC`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *taskRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func (r *taskRepository) CountByUserAndStatus(ctx context.Context, userID int64, status models.TaskStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id=$1 AND status=$2`, userID, status).Scan(&n)
	return n, err
}

func (r *taskRepository) CountOverdue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id=$1 AND due_at < $2 AND status <> 'done'`,
		userID, now).Scan(&n)
	return n, err
}

func (r *taskRepository) CreatedPerDay(ctx context.Context, userID int64, since time.Time) (map[string]int, error) {
	q := `
SELECT DATE(created_at) AS day, COUNT(*) AS cnt
FROM tasks
WHERE user_id=$1 AND created_at >= $2
GROUP BY DATE(created_at)
ORDER BY day`
	rows, err := r.db.QueryContext(ctx, q, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var cnt int
		if err := rows.Scan(&day, &cnt); err != nil {
			return nil, err
		}
		out[day.Format("2006-01-02")] = cnt
	}
	return out, rows.Err()
}

func (r *taskRepository) ListUpcoming(ctx context.Context, userID int64, from, to time.Time, limit int) ([]models.Task, error) {
	q := `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id=$1 AND due_at >= $2 AND due_at <= $3 AND status <> 'done'
ORDER BY due_at ASC
LIMIT $4`
	rows, err := r.db.QueryContext(ctx, q, userID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
