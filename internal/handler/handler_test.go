package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-go/internal/crypto"
	"github.com/taskflow/taskflow-go/internal/middleware"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
	"github.com/taskflow/taskflow-go/internal/service"
)

type memUserStore struct {
	users []model.User
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.users = append(s.users, *user)
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type memTaskStore struct {
	tasks []model.Task
}

func (s *memTaskStore) Insert(_ context.Context, t *model.Task) error {
	s.tasks = append(s.tasks, *t)
	return nil
}

func (s *memTaskStore) GetByOwner(_ context.Context, userID, taskID string) (*model.Task, error) {
	for _, t := range s.tasks {
		if t.ID == taskID && t.UserID == userID {
			c := t
			return &c, nil
		}
	}
	return nil, repository.ErrTaskNotFound
}

func (s *memTaskStore) List(_ context.Context, userID string, _ model.TaskFilter, _ model.TaskSort) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTaskStore) Update(_ context.Context, task *model.Task) error {
	for i, t := range s.tasks {
		if t.ID == task.ID && t.UserID == task.UserID {
			s.tasks[i] = *task
		}
	}
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, userID, taskID string) error {
	for i, t := range s.tasks {
		if t.ID == taskID && t.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

func (s *memTaskStore) DistinctCategories(_ context.Context, userID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.tasks {
		if t.UserID == userID && t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out, nil
}

type testEnv struct {
	router *chi.Mux
	tokens *crypto.TokenService
	users  *memUserStore
	tasks  *memTaskStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens := crypto.NewTokenService("handler-test-secret", 30*time.Minute)
	users := &memUserStore{}
	tasks := &memTaskStore{}

	authService := service.NewAuthService(users, crypto.NewPasswordHasher(), tokens)
	taskService := service.NewTaskService(tasks)

	authHandler := NewAuthHandler(authService)
	taskHandler := NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens, authService))
			r.Get("/auth/profile", authHandler.HandleProfile)
			r.Post("/tasks", taskHandler.HandleCreate)
			r.Get("/tasks", taskHandler.HandleList)
			r.Get("/tasks/stats", taskHandler.HandleStats)
			r.Get("/tasks/categories", taskHandler.HandleCategories)
			r.Get("/tasks/{task_id}", taskHandler.HandleGet)
			r.Put("/tasks/{task_id}", taskHandler.HandleUpdate)
			r.Delete("/tasks/{task_id}", taskHandler.HandleDelete)
		})
	})

	return &testEnv{router: r, tokens: tokens, users: users, tasks: tasks}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns the access token and user ID.
func (e *testEnv) signup(t *testing.T, email string) (string, string) {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "name": "Test User", "password": "pw12345",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp model.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, resp.User.ID
}

func TestSignupLoginProfile(t *testing.T) {
	env := newTestEnv(t)

	token, userID := env.signup(t, "a@x.com")

	rec := env.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile model.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "a@x.com", profile.Email)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "pw12345",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupDuplicateEmailConflict(t *testing.T) {
	env := newTestEnv(t)

	env.signup(t, "a@x.com")

	rec := env.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "a@x.com", "name": "Again", "password": "pw",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, kindConflict, body.Kind)
	assert.Len(t, env.users.users, 1)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "not-an-email", "name": "X", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, kindUnauthenticated, body.Kind)
}

func TestExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	_, userID := env.signup(t, "a@x.com")

	// Same secret, negative lifetime: expired the moment it is issued.
	expiredIssuer := crypto.NewTokenService("handler-test-secret", -time.Minute)
	expired, err := expiredIssuer.Issue(userID)
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/tasks", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestUnknownSubject(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue("no-such-user")
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/tasks", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "a@x.com")

	rec := env.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Write report", "priority": "high", "category": "Work",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created model.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "high", created.Priority)
	assert.Equal(t, userID, created.UserID)

	rec = env.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)

	rec = env.do(http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task deleted successfully")

	rec = env.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetForeignTaskNotFound(t *testing.T) {
	env := newTestEnv(t)
	tokenA, _ := env.signup(t, "a@x.com")
	tokenB, _ := env.signup(t, "b@x.com")

	rec := env.do(http.MethodPost, "/api/tasks", tokenA, map[string]any{"title": "mine"})
	require.Equal(t, http.StatusOK, rec.Code)
	var created model.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(http.MethodDelete, "/api/tasks/"+created.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, env.tasks.tasks, 1, "foreign delete must not remove the task")
}

func TestListRejectsUnknownSort(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "a@x.com")

	rec := env.do(http.MethodGet, "/api/tasks?sort_by=priority_order", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, kindValidation, body.Kind)

	rec = env.do(http.MethodGet, "/api/tasks?sort_order=sideways", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsBadCompleted(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "a@x.com")

	rec := env.do(http.MethodGet, "/api/tasks?completed=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "a@x.com")

	rec := env.do(http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestCreateRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "a@x.com")

	rec := env.do(http.MethodPost, "/api/tasks", token, map[string]any{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "x", "priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "x", "due_date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
