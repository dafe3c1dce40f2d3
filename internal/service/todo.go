package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/todo-api/internal/domain"
)

// TodoService handles todo business logic. Every operation is scoped to the
// creator passed in by the caller.
type TodoService struct {
	todos domain.TodoRepository
	now   func() time.Time
}

// NewTodoService creates a new TodoService.
func NewTodoService(todos domain.TodoRepository) *TodoService {
	return &TodoService{todos: todos, now: time.Now}
}

// Create validates text and stores a new pending todo.
func (s *TodoService) Create(ctx context.Context, creatorID, text string) (*domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "is required")
	}

	todo := &domain.Todo{
		Text:      text,
		CreatorID: creatorID,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// List returns all todos owned by creatorID.
func (s *TodoService) List(ctx context.Context, creatorID string) ([]domain.Todo, error) {
	todos, err := s.todos.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Get returns the todo if it exists and is owned by creatorID.
func (s *TodoService) Get(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	return s.todos.GetOwned(ctx, id, creatorID)
}

// Update applies patch to an owned todo. A completed=true patch stamps
// completedAt with the current time; any other patch leaves the todo pending
// with completedAt cleared.
func (s *TodoService) Update(ctx context.Context, id, creatorID string, patch domain.TodoPatch) (*domain.Todo, error) {
	var update domain.TodoUpdate

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, domain.NewValidationError("text", "must not be empty")
		}
		update.Text = &text
	}

	if patch.Completed != nil && *patch.Completed {
		at := s.now().UnixMilli()
		update.Completed = true
		update.CompletedAt = &at
	}

	return s.todos.UpdateOwned(ctx, id, creatorID, update)
}

// Delete removes an owned todo and returns its prior state.
func (s *TodoService) Delete(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	return s.todos.DeleteOwned(ctx, id, creatorID)
}
