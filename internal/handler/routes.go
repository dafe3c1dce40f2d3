package handler

import (
	"net/http"

	"github.com/msomdec/todo-api/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. limiter guards
// registration and login; nil disables it.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, todos *service.TodoService, db Pinger, limiter *service.TokenBucket) {
	authHandler := NewAuthHandler(auth)
	todoHandler := NewTodoHandler(todos)

	protect := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /readyz", HandleReadyz(db))

	mux.Handle("POST /users", RateLimit(limiter, http.HandlerFunc(authHandler.HandleRegister)))
	mux.Handle("POST /users/login", RateLimit(limiter, http.HandlerFunc(authHandler.HandleLogin)))
	mux.Handle("GET /users/me", protect(authHandler.HandleMe))
	mux.Handle("DELETE /users/me/token", protect(authHandler.HandleLogout))

	mux.Handle("POST /todos", protect(todoHandler.HandleCreate))
	mux.Handle("GET /todos", protect(todoHandler.HandleList))
	mux.Handle("GET /todos/{id}", protect(todoHandler.HandleGet))
	mux.Handle("PATCH /todos/{id}", protect(todoHandler.HandleUpdate))
	mux.Handle("DELETE /todos/{id}", protect(todoHandler.HandleDelete))
}
