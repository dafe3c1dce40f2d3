package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/todo-api/internal/domain"
	"github.com/msomdec/todo-api/internal/handler"
	"github.com/msomdec/todo-api/internal/repository/sqlite"
	"github.com/msomdec/todo-api/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	db    *sqlite.DB
	auth  *service.AuthService
	todos *service.TodoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:    db,
		auth:  service.NewAuthService(db.Users(), service.NewTokenService(testJWTSecret, 0), 4),
		todos: service.NewTodoService(db.Todos()),
	}
}

// server starts the full middleware chain over the routes. limiter may be nil.
func (e *testEnv) server(t *testing.T, limiter *service.TokenBucket) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, e.auth, e.todos, e.db, limiter)
	srv := httptest.NewServer(handler.SecurityHeaders(handler.RequestLogger(mux)))
	t.Cleanup(srv.Close)
	return srv
}

type seedUser struct {
	user     *domain.User
	password string
	token    string
}

type seed struct {
	one, two seedUser
	oneTodo *domain.Todo // pending, owned by one
	twoTodo *domain.Todo // completed at 123, owned by two
}

// populate creates two users with one session each, and one todo per user.
func (e *testEnv) populate(t *testing.T) seed {
	t.Helper()
	ctx := context.Background()

	register := func(email, password string) seedUser {
		user, token, err := e.auth.Register(ctx, email, password)
		if err != nil {
			t.Fatalf("Register %s: %v", email, err)
		}
		return seedUser{user: user, password: password, token: token}
	}
	s := seed{
		one: register("sarp@example.com", "userOnePass"),
		two: register("ogulcan@example.com", "userTwoPass"),
	}

	s.oneTodo = &domain.Todo{Text: "First test todo", CreatorID: s.one.user.ID}
	at := int64(123)
	s.twoTodo = &domain.Todo{Text: "Second test todo", Completed: true, CompletedAt: &at, CreatorID: s.two.user.ID}
	for _, td := range []*domain.Todo{s.oneTodo, s.twoTodo} {
		if err := e.db.Todos().Create(ctx, td); err != nil {
			t.Fatalf("Create todo: %v", err)
		}
	}
	return s
}

// do sends a request with an optional JSON body and x-auth token, and
// returns the response with its body already read.
func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth", token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

type todoJSON struct {
	ID          string `json:"_id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	Creator     string `json:"_creator"`
}

type userJSON struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

func wantStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d (body %s)", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, body)
	}
}

func storedTokens(t *testing.T, e *testEnv, userID string) []domain.Token {
	t.Helper()
	u, err := e.db.Users().GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return u.Tokens
}
