package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// User validation errors
var (
	ErrEmptyUserID  = errors.New("user ID cannot be empty")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("invalid email format")
)

var validate = validator.New()

// User is a person tasks can be assigned to.
// PendingTasks lists the ids of tasks assigned to the user that are not yet completed.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PendingTasks []string  `json:"pendingTasks"`
	DateCreated  time.Time `json:"dateCreated"`
}

// NewUser creates a new User with a generated ID and creation timestamp.
// The email is normalized before validation. Returns an error if validation fails.
func NewUser(name, email string, pendingTasks []string) (*User, error) {
	user := &User{
		ID:           NewID(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PendingTasks: pendingTasks,
		DateCreated:  time.Now().UTC(),
	}
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Emails are unique case-insensitively, so every stored email is normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
// Failures are returned as *BadRequestError values naming the field.
func (u *User) Validate() error {
	if u.ID == "" {
		return &BadRequestError{Field: "id", Message: ErrEmptyUserID.Error()}
	}
	if u.Name == "" {
		return &BadRequestError{Field: "name", Message: ErrEmptyName.Error()}
	}
	if u.Email == "" {
		return &BadRequestError{Field: "email", Message: ErrEmptyEmail.Error()}
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return &BadRequestError{Field: "email", Message: ErrInvalidEmail.Error()}
	}
	return nil
}

// Clone returns a copy of the user that shares no mutable state with u.
func (u *User) Clone() *User {
	c := *u
	c.PendingTasks = append([]string(nil), u.PendingTasks...)
	if c.PendingTasks == nil {
		c.PendingTasks = []string{}
	}
	return &c
}
