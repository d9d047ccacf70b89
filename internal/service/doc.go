// Package service contains the application use cases for the user and task
// collections. It validates inputs, talks to the stores defined in
// internal/store, and delegates every change to the task/user relationship to
// the assignment.Synchronizer so that neither collection's use cases write the
// other collection directly.
package service
