package domain

import (
	"context"
	"time"
)

// Todo is a single item owned by exactly one user.
// CompletedAt is set (epoch milliseconds) iff Completed is true.
type Todo struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *int64
	CreatorID   string
	CreatedAt   time.Time
}

// TodoPatch carries the client-supplied fields of a partial update.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// TodoUpdate is the resolved set of fields written by a single update.
// A nil Text leaves the stored text unchanged.
type TodoUpdate struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}

// TodoRepository defines owner-scoped persistence operations for todos.
// Every lookup by id returns ErrNotFound when the id is malformed, absent,
// or owned by another user.
type TodoRepository interface {
	Create(ctx context.Context, todo *Todo) error
	ListByCreator(ctx context.Context, creatorID string) ([]Todo, error)
	GetOwned(ctx context.Context, id, creatorID string) (*Todo, error)
	UpdateOwned(ctx context.Context, id, creatorID string, update TodoUpdate) (*Todo, error)
	DeleteOwned(ctx context.Context, id, creatorID string) (*Todo, error)
}
