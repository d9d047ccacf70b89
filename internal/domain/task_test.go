package domain

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	deadline := time.Now().Add(time.Hour)

	task, err := NewTask(" report ", "", &deadline, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Name != "report" {
		t.Errorf("Expected trimmed name, got %q", task.Name)
	}
	if task.IsAssigned() || task.AssignedUserName != UnassignedName {
		t.Errorf("Expected unassigned task, got %q/%q", task.AssignedUser, task.AssignedUserName)
	}
	if task.IsPending() {
		t.Error("Unassigned task must not be pending")
	}

	task.AssignedUser = NewID()
	if !task.IsPending() {
		t.Error("Assigned incomplete task must be pending")
	}
	task.Completed = true
	if task.IsPending() {
		t.Error("Completed task must not be pending")
	}
}

func TestNewTaskValidation(t *testing.T) {
	deadline := time.Now()

	if _, err := NewTask("", "", &deadline, false); err == nil {
		t.Error("Expected error for empty name")
	}

	_, err := NewTask("report", "", nil, false)
	bre, ok := AsBadRequest(err)
	if !ok || bre.Field != "deadline" {
		t.Errorf("Expected deadline bad request, got %v", err)
	}

	zero := time.Time{}
	if _, err := NewTask("report", "", &zero, false); err == nil {
		t.Error("Expected error for zero deadline")
	}
}

func TestTaskClone(t *testing.T) {
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewTask("report", "", &deadline, false)
	if err != nil {
		t.Fatal(err)
	}

	c := task.Clone()
	*c.Deadline = c.Deadline.Add(time.Hour)
	if !task.Deadline.Equal(deadline) {
		t.Error("Clone shares the deadline")
	}
}
