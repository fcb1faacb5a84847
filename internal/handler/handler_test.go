package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/taskmanager-go/internal/config"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
	"github.com/taskmanager/taskmanager-go/internal/testutil"
)

const testTTL = time.Hour

type testServer struct {
	*httptest.Server
	tokens *crypto.TokenManager
	tasks  *testutil.TaskStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hasher, err := crypto.NewPasswordHasher(crypto.SchemeBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := crypto.NewTokenManager("handler-test-secret", "HS256")
	require.NoError(t, err)

	tasks := testutil.NewTaskStore()
	h := Handlers{
		System: NewSystemHandler(config.AppConfig{Name: "Task Manager API", Version: "1.0.0"}),
		Auth:   NewAuthHandler(service.NewAuthService(testutil.NewUserStore(), hasher, tokens, testTTL), false),
		Tasks:  NewTaskHandler(service.NewTaskService(tasks)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(NewRouter(ctx, config.ServerConfig{
		FrontendURL:    "http://localhost:3000",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}, h, tokens))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return &testServer{Server: srv, tokens: tokens, tasks: tasks}
}

// client returns an HTTP client with its own cookie jar, one per simulated user.
func (s *testServer) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (s *testServer) doJSON(t *testing.T, c *http.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	return do(t, c, method, s.URL+path, r, "application/json")
}

func (s *testServer) register(t *testing.T, c *http.Client, email, password string) *http.Response {
	t.Helper()
	resp, _ := s.doJSON(t, c, http.MethodPost, "/auth/", map[string]string{"email": email, "password": password})
	return resp
}

func (s *testServer) login(t *testing.T, c *http.Client, email, password string) (*http.Response, []byte) {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	return do(t, c, http.MethodPost, s.URL+"/auth/token", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (s *testServer) signedIn(t *testing.T, email string) *http.Client {
	t.Helper()
	c := s.client(t)
	require.Equal(t, http.StatusCreated, s.register(t, c, email, "password1").StatusCode)
	resp, _ := s.login(t, c, email, "password1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := s.doJSON(t, c, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"message": "Task Manager API", "status": "running", "version": "1.0.0"},
		decode[map[string]string](t, body))

	resp, body = s.doJSON(t, c, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "healthy"}, decode[map[string]string](t, body))
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := s.doJSON(t, c, http.MethodPost, "/auth/", map[string]string{"email": "a@x.com", "password": "pw"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, map[string]string{"response": "User Created"}, decode[map[string]string](t, body))

	resp, _ = s.doJSON(t, c, http.MethodPost, "/auth/", map[string]string{"email": "a@x.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_Invalid(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := s.doJSON(t, c, http.MethodPost, "/auth/", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got := decode[errorBody](t, body)
	assert.Equal(t, "email", got.Fields["email"])
	assert.Equal(t, "required", got.Fields["password"])

	resp, _ = do(t, c, http.MethodPost, s.URL+"/auth/", strings.NewReader("{not json"), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_PasswordLimitInBytes(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := s.doJSON(t, c, http.MethodPost, "/auth/", map[string]string{
		"email":    "a@x.com",
		"password": strings.Repeat("é", 40),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "maxbytes", decode[errorBody](t, body).Fields["password"])
}

func TestLogin_SetsCookie(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	require.Equal(t, http.StatusCreated, s.register(t, c, "a@x.com", "pw").StatusCode)

	resp, body := s.login(t, c, "a@x.com", "pw")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tok := decode[model.TokenResponse](t, body)
	assert.Equal(t, "bearer", tok.TokenType)

	id, err := s.tokens.Verify(tok.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id.Email)

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "jwt" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, tok.AuthToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(testTTL.Seconds()), cookie.MaxAge)
}

func TestLogin_UniformFailure(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	require.Equal(t, http.StatusCreated, s.register(t, c, "a@x.com", "pw").StatusCode)

	wrongResp, wrongBody := s.login(t, c, "a@x.com", "bad")
	unknownResp, unknownBody := s.login(t, c, "b@x.com", "pw")

	assert.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownResp.StatusCode)
	assert.JSONEq(t, string(wrongBody), string(unknownBody))
	assert.Equal(t, "Could not validate user", decode[errorBody](t, wrongBody).Detail)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	c := s.signedIn(t, "a@x.com")

	resp, _ := s.doJSON(t, c, http.MethodGet, "/taskmanager/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.doJSON(t, c, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", decode[model.MessageResponse](t, body).Message)

	resp, body = s.doJSON(t, c, http.MethodGet, "/taskmanager/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token not found in cookies", decode[errorBody](t, body).Detail)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	c := s.signedIn(t, "a@x.com")

	resp, body := s.doJSON(t, c, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	me := decode[map[string]any](t, body)
	assert.Equal(t, "a@x.com", me["email"])
	assert.NotContains(t, me, "hashed_password")
	assert.NotContains(t, me, "HashedPassword")
}

func TestTasksRequireSession(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/taskmanager/tasks"},
		{http.MethodGet, "/taskmanager/1"},
		{http.MethodPost, "/taskmanager/"},
		{http.MethodPut, "/taskmanager/1"},
		{http.MethodPatch, "/taskmanager/1"},
		{http.MethodDelete, "/taskmanager/1"},
		{http.MethodGet, "/auth/me"},
	} {
		resp, _ := s.doJSON(t, c, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := newTestServer(t)
	token, err := s.tokens.Issue("a@x.com", 1, -time.Second)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, s.URL+"/taskmanager/tasks", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidTaskID(t *testing.T) {
	s := newTestServer(t)
	c := s.signedIn(t, "a@x.com")

	resp, body := s.doJSON(t, c, http.MethodGet, "/taskmanager/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid task id", decode[errorBody](t, body).Detail)
}

func TestTaskIsolationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.signedIn(t, "alice@x.com")
	bob := s.signedIn(t, "bob@x.com")

	resp, body := s.doJSON(t, alice, http.MethodPost, "/taskmanager/", map[string]any{"title": "alice's"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decode[model.Task](t, body)

	path := "/taskmanager/" + strconv.FormatInt(task.ID, 10)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		resp, body := s.doJSON(t, bob, method, path, map[string]any{"title": "bob's now"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
		assert.Equal(t, "Task not found", decode[errorBody](t, body).Detail, method)
	}

	resp, body = s.doJSON(t, alice, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice's", decode[model.Task](t, body).Title)
}

func TestPatchIsFullReplace(t *testing.T) {
	s := newTestServer(t)
	c := s.signedIn(t, "a@x.com")

	resp, body := s.doJSON(t, c, http.MethodPost, "/taskmanager/", map[string]any{
		"title":       "buy milk",
		"description": "two litres",
		"category":    "shopping",
		"priority":    "high",
		"due_date":    "2026-05-01T09:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.Task](t, body)

	resp, body = s.doJSON(t, c, http.MethodPatch, "/taskmanager/"+strconv.FormatInt(created.ID, 10), map[string]any{
		"title":        "buy bread",
		"is_completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Task](t, body)

	assert.Equal(t, "buy bread", updated.Title)
	assert.True(t, updated.IsCompleted)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Empty(t, updated.Category)
	assert.Empty(t, updated.Priority)
}

func TestCreateTask_Validation(t *testing.T) {
	s := newTestServer(t)
	c := s.signedIn(t, "a@x.com")

	resp, body := s.doJSON(t, c, http.MethodPost, "/taskmanager/", map[string]any{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "required", decode[errorBody](t, body).Fields["title"])
	assert.Zero(t, s.tasks.Len())
}

// Register, log in, create, list, delete, list.
func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	require.Equal(t, http.StatusCreated, s.register(t, c, "a@x.com", "pw").StatusCode)
	resp, _ := s.login(t, c, "a@x.com", "pw")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.doJSON(t, c, http.MethodPost, "/taskmanager/", map[string]any{
		"title":    "buy milk",
		"category": "shopping",
		"priority": "low",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.Task](t, body)
	assert.False(t, created.IsCompleted)
	assert.Equal(t, "shopping", created.Category)

	resp, body = s.doJSON(t, c, http.MethodGet, "/taskmanager/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]model.Task](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "buy milk", list[0].Title)

	resp, body = s.doJSON(t, c, http.MethodDelete, "/taskmanager/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Task deleted successfully", decode[model.MessageResponse](t, body).Message)

	resp, body = s.doJSON(t, c, http.MethodGet, "/taskmanager/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.URL+"/taskmanager/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
