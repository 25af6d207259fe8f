// Package handler implements the HTTP handlers for the task tracker API.
// All handlers are methods on Server. Methods are split into
// resource-specific files (task.go, tag.go, account.go, ...) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/tasktracker/internal/auth"
	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/middleware"
)

// TaskServicer defines the task operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TaskServicer interface {
	List(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error)
	Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (domain.Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (domain.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in domain.TaskInput) (domain.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListTags(ctx context.Context, ownerID, id uuid.UUID) ([]domain.Tag, error)
}

// TagServicer defines the tag operations the handlers depend on.
type TagServicer interface {
	Create(ctx context.Context, name string) (domain.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	List(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountServicer defines registration, login and token resolution.
type AccountServicer interface {
	Register(ctx context.Context, username, password string) (domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// ExportServicer produces a flat export of one user's tasks.
type ExportServicer interface {
	Export(ctx context.Context, ownerID uuid.UUID) ([]domain.ExportRow, error)
}

// Pinger reports whether a backing store is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	tasks    TaskServicer
	tags     TagServicer
	accounts AccountServicer
	export   ExportServicer

	db       Pinger
	log      *slog.Logger
	validate *validator.Validate
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithLogger sets the logger used for unexpected (500) errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithPinger sets the store checked by GET /readyz.
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.db = p }
}

// NewServer constructs the Server with all its dependencies.
// Without WithLogger, errors are discarded.
func NewServer(tasks TaskServicer, tags TagServicer, accounts AccountServicer, export ExportServicer, opts ...Option) *Server {
	s := &Server{
		tasks:    tasks,
		tags:     tags,
		accounts: accounts,
		export:   export,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the API router. Trailing slashes are optional on every
// path, so /tasks/ and /tasks reach the same handler.
// Everything except health, docs, register and login requires a bearer token.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)

	r.Get("/healthz", s.GetHealth)
	r.Get("/readyz", s.GetReady)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/docs", s.GetDocs)

	r.Post("/register", s.Register)
	r.Post("/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator(s.accounts))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.ListTasks)
			r.Post("/", s.CreateTask)
			r.Get("/export", s.ExportTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTask)
				r.Put("/", s.UpdateTask)
				r.Patch("/", s.PatchTask)
				r.Delete("/", s.DeleteTask)
				r.Get("/tags", s.ListTaskTags)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.ListTags)
			r.Post("/", s.CreateTag)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTag)
				r.Put("/", s.UpdateTag)
				r.Patch("/", s.UpdateTag)
				r.Delete("/", s.DeleteTag)
			})
		})
	})

	return r
}

// pathID parses the {id} URL parameter. A malformed id can never name an
// existing resource, so callers answer 404 rather than 400.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// currentUser returns the user placed in the context by the authenticator.
func currentUser(r *http.Request) domain.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}
