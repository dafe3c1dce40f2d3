package handler

import (
	"github.com/msomdec/todo-api/internal/domain"
)

// UserDTO is the JSON representation of a user. The password hash and
// token list never leave the server.
type UserDTO struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
	}
}

// TodoDTO is the JSON representation of a todo. CompletedAt is epoch
// milliseconds, or null while the todo is pending.
type TodoDTO struct {
	ID          string `json:"_id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"_creator"`
}

func toTodoDTO(t *domain.Todo) TodoDTO {
	return TodoDTO{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		CreatorID:   t.CreatorID,
	}
}

func toTodoDTOs(todos []domain.Todo) []TodoDTO {
	dtos := make([]TodoDTO, len(todos))
	for i := range todos {
		dtos[i] = toTodoDTO(&todos[i])
	}
	return dtos
}
