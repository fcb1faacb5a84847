package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// TaskService handles task business logic. Every method is scoped to the
// calling user; tasks of other users behave as if they did not exist.
type TaskService struct {
	store TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Get returns one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	task, err := s.store.GetOwned(ctx, userID, taskID)
	if err != nil {
		return nil, mapTaskError(err, "getting task")
	}
	return task, nil
}

// List returns all of the user's tasks, oldest first. Never nil.
func (s *TaskService) List(ctx context.Context, userID int64) ([]model.Task, error) {
	tasks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Create stores a new task owned by the user.
func (s *TaskService) Create(ctx context.Context, userID int64, req model.TaskRequest) (*model.Task, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	task := &model.Task{UserID: userID}
	req.Apply(task)

	if err := s.store.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return task, nil
}

// Update replaces every mutable field of the user's task with req.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, req model.TaskRequest) (*model.Task, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	task := &model.Task{ID: taskID, UserID: userID}
	req.Apply(task)

	if err := s.store.Update(ctx, task); err != nil {
		return nil, mapTaskError(err, "updating task")
	}
	return task, nil
}

// Delete removes the user's task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := s.store.Delete(ctx, userID, taskID); err != nil {
		return mapTaskError(err, "deleting task")
	}
	return nil
}

func mapTaskError(err error, op string) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
