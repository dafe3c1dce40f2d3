package sqlite

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

// todoRepo implements domain.TodoRepository using SQLite.
type todoRepo struct {
	db *sql.DB
}

// NewTodoRepository creates a new SQLite-backed TodoRepository.
func NewTodoRepository(db *DB) domain.TodoRepository {
	return &todoRepo{db: db.SqlDB}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	t := &domain.Todo{}
	var completedAt sql.NullInt64
	var createdAt int64
	if err := row.Scan(&t.ID, &t.CreatorID, &t.Text, &t.Completed, &completedAt, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Int64
	}
	return t, nil
}

func (r *todoRepo) Create(ctx context.Context, todo *domain.Todo) error {
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, creator_id, text, completed, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, todo.CreatorID, todo.Text, todo.Completed, nullableMillis(todo.CompletedAt), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}

	todo.ID = id
	todo.CreatedAt = now
	return nil
}

func (r *todoRepo) ListByCreator(ctx context.Context, creatorID string) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE creator_id = ? ORDER BY rowid`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

func (r *todoRepo) GetOwned(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	t, err := scanTodo(r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND creator_id = ?`, id, creatorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (r *todoRepo) UpdateOwned(ctx context.Context, id, creatorID string, update domain.TodoUpdate) (*domain.Todo, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	t, err := scanTodo(r.db.QueryRowContext(ctx,
		`UPDATE todos SET text = COALESCE(?, text), completed = ?, completed_at = ?
		 WHERE id = ? AND creator_id = ?
		 RETURNING `+todoColumns,
		nullableText(update.Text), update.Completed, nullableMillis(update.CompletedAt), id, creatorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

func (r *todoRepo) DeleteOwned(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	t, err := scanTodo(r.db.QueryRowContext(ctx,
		`DELETE FROM todos WHERE id = ? AND creator_id = ? RETURNING `+todoColumns, id, creatorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete todo: %w", err)
	}
	return t, nil
}

func nullableMillis(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableText(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
