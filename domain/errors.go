package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user id resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
)

// InvalidTaskDataError reports a task field that failed validation.
type InvalidTaskDataError struct {
	Message string
}

func (e InvalidTaskDataError) Error() string { return e.Message }

// TaskNotFoundError covers both a missing task and a task owned by
// another user, so existence never leaks across owners.
type TaskNotFoundError struct {
	ID int64
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found (id %d)", e.ID)
}

// IsNotFound reports whether err is a TaskNotFoundError.
func IsNotFound(err error) bool {
	var nf TaskNotFoundError
	return errors.As(err, &nf)
}

// IsInvalidData reports whether err is an InvalidTaskDataError.
func IsInvalidData(err error) bool {
	var inv InvalidTaskDataError
	return errors.As(err, &inv)
}
