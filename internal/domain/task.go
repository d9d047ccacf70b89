package domain

import (
	"errors"
	"strings"
	"time"
)

// UnassignedName is the assignedUserName of a task without an owner.
const UnassignedName = "unassigned"

// Task validation errors
var (
	ErrEmptyTaskID     = errors.New("task ID cannot be empty")
	ErrEmptyTaskName   = errors.New("name cannot be empty")
	ErrMissingDeadline = errors.New("deadline is required")
)

// Task is a unit of work that may be assigned to a single user.
//
// AssignedUser is empty when the task has no owner. AssignedUserName caches the
// owner's name as of the last write that touched the relationship, or
// UnassignedName.
type Task struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Deadline         *time.Time `json:"deadline"`
	Completed        bool       `json:"completed"`
	AssignedUser     string     `json:"assignedUser"`
	AssignedUserName string     `json:"assignedUserName"`
	DateCreated      time.Time  `json:"dateCreated"`
}

// NewTask creates an unassigned Task with a generated ID and creation timestamp.
// Returns an error if validation fails.
func NewTask(name, description string, deadline *time.Time, completed bool) (*Task, error) {
	task := &Task{
		ID:               NewID(),
		Name:             strings.TrimSpace(name),
		Description:      description,
		Deadline:         deadline,
		Completed:        completed,
		AssignedUserName: UnassignedName,
		DateCreated:      time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == "" {
		return &BadRequestError{Field: "id", Message: ErrEmptyTaskID.Error()}
	}
	if t.Name == "" {
		return &BadRequestError{Field: "name", Message: ErrEmptyTaskName.Error()}
	}
	if t.Deadline == nil || t.Deadline.IsZero() {
		return &BadRequestError{Field: "deadline", Message: ErrMissingDeadline.Error()}
	}
	return nil
}

// IsAssigned reports whether the task has an owner.
func (t *Task) IsAssigned() bool {
	return t.AssignedUser != ""
}

// IsPending reports whether the task belongs in its owner's pending set.
func (t *Task) IsPending() bool {
	return t.IsAssigned() && !t.Completed
}

// Clone returns a copy of the task that shares no mutable state with t.
func (t *Task) Clone() *Task {
	c := *t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	return &c
}
