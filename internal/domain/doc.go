// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, tasks, and the validation rules
// that apply to them independently of any storage or transport.
package domain
