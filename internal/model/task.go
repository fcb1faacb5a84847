package model

import "time"

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
	CreatedDate time.Time  `json:"created_date"`
}

// TaskRequest is the body of task create and update requests. Updates replace
// every mutable field with these values; an omitted field is reset to its
// zero value (NULL for description and due_date).
type TaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Category    string     `json:"category" validate:"max=50"`
	Priority    string     `json:"priority" validate:"max=20"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
}

// Apply overwrites the mutable fields of t with the request values.
func (r TaskRequest) Apply(t *Task) {
	t.Title = r.Title
	t.Description = r.Description
	t.Category = r.Category
	t.Priority = r.Priority
	t.IsCompleted = r.IsCompleted
	t.DueDate = r.DueDate
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
