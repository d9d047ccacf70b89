// Package assignment keeps the two halves of the task ownership relationship
// consistent: a task's owner pointer (AssignedUser, AssignedUserName) and the
// owner's pending set (User.PendingTasks).
//
// Every write path that changes either half goes through a Synchronizer. The
// store offers no multi-document transactions, so each scenario is an ordered
// sequence of idempotent steps (DetachTask, AttachTask, single task writes).
// Re-running a sequence converges to the same state; a failure part way through
// leaves the relationship inconsistent until the next write touches it.
package assignment
