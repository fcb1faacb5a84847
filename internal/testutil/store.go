// Package testutil provides in-memory stand-ins for the MySQL repositories.
// They return the same sentinel errors as package repository, so services
// and handlers can be tested without a database.
package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// UserStore is an in-memory user repository.
type UserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedDate = now()
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// TaskStore is an in-memory task repository enforcing the same owner filter
// as the SQL one.
type TaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]model.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[int64]model.Task)}
}

func (s *TaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task.ID = s.nextID
	task.CreatedDate = now()
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *TaskStore) GetOwned(_ context.Context, userID, taskID int64) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.owned(userID, taskID)
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (s *TaskStore) ListByUser(_ context.Context, userID int64) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			tasks = append(tasks, cloneTask(t))
		}
	}
	slices.SortFunc(tasks, func(a, b model.Task) int {
		return int(a.ID - b.ID)
	})
	return tasks, nil
}

func (s *TaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.owned(task.UserID, task.ID)
	if !ok {
		return repository.ErrTaskNotFound
	}

	task.CreatedDate = stored.CreatedDate
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *TaskStore) Delete(_ context.Context, userID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(userID, taskID); !ok {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// Len returns the number of stored tasks across all users.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *TaskStore) owned(userID, taskID int64) (model.Task, bool) {
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return model.Task{}, false
	}
	return t, true
}

func cloneTask(t model.Task) model.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}
