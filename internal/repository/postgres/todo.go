package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/todo-api/internal/domain"
)

const todoColumns = `id, creator_id, text, completed, completed_at, created_at`

// TodoRepository implements domain.TodoRepository on PostgreSQL.
type TodoRepository struct {
	db DBTX
}

// NewTodoRepository creates a TodoRepository bound to db.
func NewTodoRepository(db DBTX) *TodoRepository {
	return &TodoRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*domain.Todo, error) {
	t := &domain.Todo{}
	var completedAt sql.NullInt64
	if err := s.Scan(&t.ID, &t.CreatorID, &t.Text, &t.Completed, &completedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Int64
	}
	return t, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	id := uuid.NewString()
	now := time.Now().UTC()

	query :=
		`INSERT INTO todos (id, creator_id, text, completed, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	var completedAt sql.NullInt64
	if todo.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: *todo.CompletedAt, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, id, todo.CreatorID, todo.Text, todo.Completed, completedAt, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	todo.ID = id
	todo.CreatedAt = now
	return nil
}

func (r *TodoRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Todo, error) {
	todos := []domain.Todo{}
	if !validID(creatorID) {
		return todos, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE creator_id = $1 ORDER BY seq`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) GetOwned(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	return r.one(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND creator_id = $2`,
		id, creatorID)
}

func (r *TodoRepository) UpdateOwned(ctx context.Context, id, creatorID string, update domain.TodoUpdate) (*domain.Todo, error) {
	var text sql.NullString
	if update.Text != nil {
		text = sql.NullString{String: *update.Text, Valid: true}
	}
	var completedAt sql.NullInt64
	if update.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: *update.CompletedAt, Valid: true}
	}

	return r.one(ctx,
		`UPDATE todos SET text = COALESCE($3, text), completed = $4, completed_at = $5
		 WHERE id = $1 AND creator_id = $2
		 RETURNING `+todoColumns,
		id, creatorID, text, update.Completed, completedAt)
}

func (r *TodoRepository) DeleteOwned(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	return r.one(ctx,
		`DELETE FROM todos WHERE id = $1 AND creator_id = $2 RETURNING `+todoColumns,
		id, creatorID)
}

// one runs a single-row statement whose $1 and $2 are the todo id and creator id.
func (r *TodoRepository) one(ctx context.Context, query, id, creatorID string, args ...any) (*domain.Todo, error) {
	if !validID(id) || !validID(creatorID) {
		return nil, domain.ErrNotFound
	}

	t, err := scanTodo(r.db.QueryRowContext(ctx, query, append([]any{id, creatorID}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
