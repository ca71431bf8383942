package models

import "time"

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerUserID int64
}

// OwnerID is 0 for a nil task.
func (t *Task) OwnerID() int64 {
	if t == nil {
		return 0
	}
	return t.OwnerUserID
}

// TaskUpdate is a partial update; nil fields are left untouched. The owner
// is deliberately absent: it never changes after creation.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil && u.DueDate == nil
}
