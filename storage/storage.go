// Package storage provides the persistence layer for tasks and users.
// Every task statement is filtered by owner; there is no code path that
// queries by id alone.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/Aliladla/hackathon2phase3/domain"
)

const (
	// DefaultListLimit applies when a list request does not specify one.
	DefaultListLimit = 100
	// MaxListLimit caps a single page.
	MaxListLimit = 1000
)

// TaskFilter narrows List and Count results.
type TaskFilter struct {
	Completed *bool
	Limit     int
	Offset    int
}

// TaskPatch carries the fields of a partial update. Nil fields are left
// untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskStore is the persistence contract shared by the Postgres and the
// in-memory implementations.
type TaskStore interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string) (domain.Task, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (domain.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]domain.Task, error)
	Count(ctx context.Context, userID uuid.UUID, completed *bool) (int64, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, patch TaskPatch) (domain.Task, error)
	Toggle(ctx context.Context, userID uuid.UUID, id int64) (domain.Task, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func normalizeFilter(f TaskFilter) TaskFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
