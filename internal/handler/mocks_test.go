package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/handler"
)

// mockTaskServicer is a test double for handler.TaskServicer.
// Set only the method fields your test needs.
type mockTaskServicer struct {
	list     func(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error)
	create   func(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (domain.Task, error)
	get      func(ctx context.Context, ownerID, id uuid.UUID) (domain.Task, error)
	update   func(ctx context.Context, ownerID, id uuid.UUID, in domain.TaskInput) (domain.Task, error)
	delete   func(ctx context.Context, ownerID, id uuid.UUID) error
	listTags func(ctx context.Context, ownerID, id uuid.UUID) ([]domain.Tag, error)
}

func (m *mockTaskServicer) List(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockTaskServicer) Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (domain.Task, error) {
	return m.create(ctx, ownerID, in)
}
func (m *mockTaskServicer) Get(ctx context.Context, ownerID, id uuid.UUID) (domain.Task, error) {
	return m.get(ctx, ownerID, id)
}
func (m *mockTaskServicer) Update(ctx context.Context, ownerID, id uuid.UUID, in domain.TaskInput) (domain.Task, error) {
	return m.update(ctx, ownerID, id, in)
}
func (m *mockTaskServicer) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}
func (m *mockTaskServicer) ListTags(ctx context.Context, ownerID, id uuid.UUID) ([]domain.Tag, error) {
	return m.listTags(ctx, ownerID, id)
}

// mockTagServicer is a test double for handler.TagServicer.
type mockTagServicer struct {
	create func(ctx context.Context, name string) (domain.Tag, error)
	get    func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	list   func(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	rename func(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagServicer) Create(ctx context.Context, name string) (domain.Tag, error) {
	return m.create(ctx, name)
}
func (m *mockTagServicer) Get(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.get(ctx, id)
}
func (m *mockTagServicer) List(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	return m.list(ctx, search, p)
}
func (m *mockTagServicer) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error) {
	return m.rename(ctx, id, name)
}
func (m *mockTagServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockAccountServicer is a test double for handler.AccountServicer.
// When authenticate is nil, tokens are resolved through knownTokens.
type mockAccountServicer struct {
	register     func(ctx context.Context, username, password string) (domain.User, error)
	login        func(ctx context.Context, username, password string) (string, error)
	authenticate func(ctx context.Context, token string) (domain.User, error)
}

func (m *mockAccountServicer) Register(ctx context.Context, username, password string) (domain.User, error) {
	return m.register(ctx, username, password)
}
func (m *mockAccountServicer) Login(ctx context.Context, username, password string) (string, error) {
	return m.login(ctx, username, password)
}
func (m *mockAccountServicer) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if m.authenticate != nil {
		return m.authenticate(ctx, token)
	}
	if u, ok := knownTokens[token]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUnauthenticated
}

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, ownerID)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TaskServicer    = (*mockTaskServicer)(nil)
	_ handler.TagServicer     = (*mockTagServicer)(nil)
	_ handler.AccountServicer = (*mockAccountServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

var (
	alice = domain.User{ID: uuid.New(), Username: "alice"}
	bob   = domain.User{ID: uuid.New(), Username: "bob"}

	knownTokens = map[string]domain.User{
		"alice-token": alice,
		"bob-token":   bob,
	}
)

// deps collects the doubles a test wires into the server. Nil fields get an
// empty mock whose methods panic if called.
type deps struct {
	tasks    *mockTaskServicer
	tags     *mockTagServicer
	accounts *mockAccountServicer
	export   *mockExportServicer
	opts     []handler.Option
}

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(d deps) http.Handler {
	if d.tasks == nil {
		d.tasks = &mockTaskServicer{}
	}
	if d.tags == nil {
		d.tags = &mockTagServicer{}
	}
	if d.accounts == nil {
		d.accounts = &mockAccountServicer{}
	}
	if d.export == nil {
		d.export = &mockExportServicer{}
	}
	return handler.NewServer(d.tasks, d.tags, d.accounts, d.export, d.opts...).Routes()
}

// serve sends one request. body, when non-nil, is JSON-encoded; token, when
// non-empty, is sent as a bearer token.
func serve(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func taskFixture(owner uuid.UUID) domain.Task {
	return domain.Task{
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       "Buy milk",
		Description: "2 litres",
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Tags:        []domain.Tag{{ID: uuid.New(), Name: "home"}},
	}
}
