package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, user_id, title, description, category, priority, is_completed, due_date, created_date`

// TaskRepository handles task persistence. Every read and write of a single
// task goes through ownedTask, so a task id never matches without its owner.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts task and replaces it with the stored row, including the
// generated ID and creation time.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (user_id, title, description, category, priority, is_completed, due_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			task.UserID, task.Title, task.Description, task.Category, task.Priority, task.IsCompleted, task.DueDate,
		)
		if err != nil {
			return fmt.Errorf("inserting task: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading task id: %w", err)
		}

		stored, err := ownedTask(ctx, tx, task.UserID, id, false)
		if err != nil {
			return err
		}
		*task = *stored
		return nil
	})
}

// GetOwned retrieves a task by ID if and only if it belongs to userID.
func (r *TaskRepository) GetOwned(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	return ownedTask(ctx, r.db, userID, taskID, false)
}

// ListByUser retrieves all tasks owned by userID in insertion order.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

// Update writes every mutable field of task to the row identified by
// (task.ID, task.UserID) and replaces task with the stored row.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := ownedTask(ctx, tx, task.UserID, task.ID, true); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE tasks SET title = ?, description = ?, category = ?, priority = ?, is_completed = ?, due_date = ?
			WHERE id = ? AND user_id = ?`,
			task.Title, task.Description, task.Category, task.Priority, task.IsCompleted, task.DueDate,
			task.ID, task.UserID,
		)
		if err != nil {
			return fmt.Errorf("updating task: %w", err)
		}

		stored, err := ownedTask(ctx, tx, task.UserID, task.ID, false)
		if err != nil {
			return err
		}
		*task = *stored
		return nil
	})
}

// Delete removes the task identified by (taskID, userID).
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int64) error {
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := ownedTask(ctx, tx, userID, taskID, true); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID); err != nil {
			return fmt.Errorf("deleting task: %w", err)
		}
		return nil
	})
}

// ownedTask is the single ownership filter: it loads the task matching both
// taskID and userID or returns ErrTaskNotFound. With lock set the row is held
// until the surrounding transaction ends.
func ownedTask(ctx context.Context, q querier, userID, taskID int64, lock bool) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`
	if lock {
		query += ` FOR UPDATE`
	}

	t, err := scanTask(q.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t           model.Task
		description sql.NullString
		dueDate     sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &description, &t.Category, &t.Priority,
		&t.IsCompleted, &dueDate, &t.CreatedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return &t, nil
}
