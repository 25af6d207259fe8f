package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/repo"
	"github.com/pkordes/tasktracker/internal/service"
)

// mockTaskRepo is a hand-written test double for repo.TaskRepo.
// Each method is a function field: set only the ones your test needs.
type mockTaskRepo struct {
	create      func(ctx context.Context, task domain.Task) (domain.Task, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Task, error)
	listPaged   func(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error)
	listByOwner func(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error)
	update      func(ctx context.Context, task domain.Task, replaceTags bool) (domain.Task, error)
	delete      func(ctx context.Context, id uuid.UUID) error
	titleExists func(ctx context.Context, ownerID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	return m.create(ctx, task)
}
func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	return m.getByID(ctx, id)
}
func (m *mockTaskRepo) ListPaged(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTaskRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockTaskRepo) Update(ctx context.Context, task domain.Task, replaceTags bool) (domain.Task, error) {
	return m.update(ctx, task, replaceTags)
}
func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTaskRepo) TitleExists(ctx context.Context, ownerID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	return m.titleExists(ctx, ownerID, title, excludeID)
}

// mockTagRepo is a hand-written test double for repo.TagRepo.
type mockTagRepo struct {
	create     func(ctx context.Context, name string) (domain.Tag, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	nameExists func(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	listPaged  func(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	listByIDs  func(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)
	listByTask func(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error)
	update     func(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagRepo) Create(ctx context.Context, name string) (domain.Tag, error) {
	return m.create(ctx, name)
}
func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagRepo) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	return m.nameExists(ctx, name, excludeID)
}
func (m *mockTagRepo) ListPaged(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	return m.listPaged(ctx, search, p)
}
func (m *mockTagRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockTagRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error) {
	return m.listByTask(ctx, taskID)
}
func (m *mockTagRepo) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	return m.update(ctx, tag)
}
func (m *mockTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockUserRepo is a hand-written test double for repo.UserRepo.
type mockUserRepo struct {
	create        func(ctx context.Context, username, passwordHash string) (domain.User, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByUsername func(ctx context.Context, username string) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (domain.User, error) {
	return m.create(ctx, username, passwordHash)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.getByUsername(ctx, username)
}

// fakeHasher "hashes" by prefixing, so tests can assert on stored hashes
// without paying for bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// mockTokens is a hand-written test double for service.TokenIssuer.
type mockTokens struct {
	issue func(userID uuid.UUID) (string, error)
	parse func(token string) (uuid.UUID, error)
}

func (m *mockTokens) Issue(userID uuid.UUID) (string, error) { return m.issue(userID) }
func (m *mockTokens) Parse(token string) (uuid.UUID, error)  { return m.parse(token) }

// compile-time checks: the doubles must satisfy the interfaces they replace.
var (
	_ repo.TaskRepo          = (*mockTaskRepo)(nil)
	_ repo.TagRepo           = (*mockTagRepo)(nil)
	_ repo.UserRepo          = (*mockUserRepo)(nil)
	_ service.PasswordHasher = fakeHasher{}
	_ service.TokenIssuer    = (*mockTokens)(nil)
)

func ptr[T any](v T) *T { return &v }
