package service

import (
	"context"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// UserStore persists user accounts. Implementations return
// repository.ErrUserNotFound and repository.ErrDuplicateEmail.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TaskStore persists tasks. Every single-task operation is scoped to the
// owner; a task owned by someone else yields repository.ErrTaskNotFound.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetOwned(ctx context.Context, userID, taskID int64) (*model.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, taskID int64) error
}
