package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/service"
)

// TodoHandler handles todo CRUD for the authenticated user.
type TodoHandler struct {
	todos *service.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// HandleCreate stores a new todo.
// POST /todos
// Request:  {"text":"..."}
// Response: the todo
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	todo, err := h.todos.Create(r.Context(), user.ID, req.Text)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidInput) {
			slog.Error("create todo", "error", err)
		}
		writeInputError(w, err, "Could not create todo.")
		return
	}
	writeJSON(w, http.StatusOK, toTodoDTO(todo))
}

// HandleList returns the caller's todos.
// GET /todos
// Response: {"todos": [...]}
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	todos, err := h.todos.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list todos", "error", err)
		writeError(w, http.StatusBadRequest, "Could not list todos.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todos": toTodoDTOs(todos)})
}

// HandleGet returns one of the caller's todos.
// GET /todos/{id}
// Response: {"todo": {...}}
func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	todo, err := h.todos.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeLookupError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todo": toTodoDTO(todo)})
}

// HandleUpdate patches text and completion of one of the caller's todos.
// PATCH /todos/{id}
// Request:  {"text":"...","completed":true}, both optional
// Response: {"todo": {...}}
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	todo, err := h.todos.Update(r.Context(), r.PathValue("id"), user.ID, domain.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeInputError(w, err, "Invalid todo.")
			return
		}
		writeLookupError(w, "update todo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todo": toTodoDTO(todo)})
}

// HandleDelete removes one of the caller's todos.
// DELETE /todos/{id}
// Response: {"todo": {...}} holding the removed todo
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	todo, err := h.todos.Delete(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeLookupError(w, "delete todo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todo": toTodoDTO(todo)})
}

// writeLookupError answers 404 for absent, foreign or malformed ids and 400
// for anything else.
func writeLookupError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Todo not found.")
		return
	}
	slog.Error(op, "error", err)
	writeError(w, http.StatusBadRequest, "Could not process request.")
}
