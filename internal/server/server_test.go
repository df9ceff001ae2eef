package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donezo/internal/models"
)

// stubStorage implements Storage for handler tests, recording the arguments
// each operation was called with.
type stubStorage struct {
	registerID  string
	registerErr error
	user        models.Document
	userErr     error
	createID    string
	createErr   error
	groups      []models.TaskGroup
	groupsErr   error
	updateErr   error
	moveDoc     models.Document
	moveErr     error
	deleteErr   error
	pingErr     error

	gotUser     models.Document
	gotEmail    string
	gotCategory string
	gotTask     models.Document
	gotID       string
	gotTitle    string
	gotDesc     string
	gotModified time.Time
	gotUpsert   bool
}

func (f *stubStorage) RegisterUser(_ context.Context, user models.Document) (string, error) {
	f.gotUser = user
	return f.registerID, f.registerErr
}

func (f *stubStorage) GetUserByEmail(_ context.Context, email string) (models.Document, error) {
	f.gotEmail = email
	return f.user, f.userErr
}

func (f *stubStorage) CreateTask(_ context.Context, task models.Document) (string, error) {
	f.gotTask = task
	return f.createID, f.createErr
}

func (f *stubStorage) ListTasksGrouped(_ context.Context, email, category string) ([]models.TaskGroup, error) {
	f.gotEmail = email
	f.gotCategory = category
	return f.groups, f.groupsErr
}

func (f *stubStorage) UpdateTaskFields(_ context.Context, id, title, description string) error {
	f.gotID = id
	f.gotTitle = title
	f.gotDesc = description
	return f.updateErr
}

func (f *stubStorage) MoveTask(_ context.Context, id, category string, modified time.Time, upsert bool) (models.Document, error) {
	f.gotID = id
	f.gotCategory = category
	f.gotModified = modified
	f.gotUpsert = upsert
	return f.moveDoc, f.moveErr
}

func (f *stubStorage) DeleteTask(_ context.Context, id string) error {
	f.gotID = id
	return f.deleteErr
}

func (f *stubStorage) Ping(_ context.Context) error {
	return f.pingErr
}

var testOrigins = []string{"http://localhost:5173"}

func newTestServer(store Storage) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, logger, testOrigins, false)
}

func perform(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestWelcome(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStorage{})
	w := perform(t, srv, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the DoneZo TODO app backend", w.Body.String())
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStorage{})
	w := perform(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	srv = newTestServer(&stubStorage{pingErr: assert.AnError})
	w = perform(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStorage{})
	w := perform(t, srv, http.MethodGet, "/", nil)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSAllowedOrigin(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubStorage{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
