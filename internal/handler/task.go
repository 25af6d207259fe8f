package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tasktracker/internal/domain"
)

// Task is the JSON representation of a task. The owner is never exposed.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	Tags        []Tag     `json:"tags"`
}

// TaskRequest is the body of POST, PUT and PATCH /tasks. TagsID is
// write-only: it replaces the task's tag set when present. Owner fields in
// the body are ignored.
type TaskRequest struct {
	Title       *string               `json:"title" validate:"required"`
	Description *string               `json:"description"`
	Completed   *bool                 `json:"completed"`
	TagsID      *[]openapi_types.UUID `json:"tags_id"`
}

func (TaskRequest) nonNullFields() []string {
	return []string{"title", "description", "completed", "tags_id"}
}

// ListTasks handles GET /tasks.
// Supports ?completed=, ?tags= (repeatable), ?search=, ?ordering=, ?page=, ?limit=.
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	f, p, err := bindTaskListParams(r)
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}
	f.OwnerID = currentUser(r).ID

	tasks, total, err := s.tasks.List(r.Context(), f, p)
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}

	data := make([]Task, len(tasks))
	for i, t := range tasks {
		data[i] = taskToResponse(t)
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, data))
}

// CreateTask handles POST /tasks. The owner is always the caller.
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var body TaskRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err, "task")
		return
	}

	created, err := s.tasks.Create(r.Context(), currentUser(r).ID, body.toInput())
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}
	writeJSON(w, http.StatusCreated, taskToResponse(created))
}

// GetTask handles GET /tasks/{id}.
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "task")
		return
	}

	task, err := s.tasks.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id}. Title is required; other fields left
// out of the body keep their current values.
func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	s.updateTask(w, r, true)
}

// PatchTask handles PATCH /tasks/{id}. Only the supplied fields change.
func (s *Server) PatchTask(w http.ResponseWriter, r *http.Request) {
	s.updateTask(w, r, false)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, full bool) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "task")
		return
	}

	var body TaskRequest
	var err error
	if full {
		err = s.decode(r, &body)
	} else {
		err = s.decodePartial(r, &body)
	}
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}

	updated, err := s.tasks.Update(r.Context(), currentUser(r).ID, id, body.toInput())
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(updated))
}

// DeleteTask handles DELETE /tasks/{id}.
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "task")
		return
	}

	if err := s.tasks.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		s.fail(w, r, err, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTaskTags handles GET /tasks/{id}/tags.
func (s *Server) ListTaskTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "task")
		return
	}

	tags, err := s.tasks.ListTags(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.fail(w, r, err, "task")
		return
	}
	resp := make([]Tag, len(tags))
	for i, t := range tags {
		resp[i] = tagToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- mapping helpers --------------------------------------------------------

// bindTaskListParams reads the filter, ordering and paging query parameters.
// The owner is left unset; the caller fills it from the authenticated user.
func bindTaskListParams(r *http.Request) (domain.TaskFilter, domain.PaginationParams, error) {
	q := r.URL.Query()
	var (
		f                domain.TaskFilter
		tags             *[]openapi_types.UUID
		search, ordering *string
	)
	if err := bindQuery(q, "completed", &f.Completed); err != nil {
		return f, domain.PaginationParams{}, err
	}
	if err := bindQuery(q, "tags", &tags); err != nil {
		return f, domain.PaginationParams{}, err
	}
	if err := bindQuery(q, "search", &search); err != nil {
		return f, domain.PaginationParams{}, err
	}
	if err := bindQuery(q, "ordering", &ordering); err != nil {
		return f, domain.PaginationParams{}, err
	}
	p, err := bindPagination(q)
	if err != nil {
		return f, domain.PaginationParams{}, err
	}

	if tags != nil {
		f.TagIDs = *tags
	}
	f.Search = derefString(search)
	f.Ordering = domain.ParseTaskOrdering(derefString(ordering))
	return f, p, nil
}

func (b TaskRequest) toInput() domain.TaskInput {
	return domain.TaskInput{
		Title:       b.Title,
		Description: b.Description,
		Completed:   b.Completed,
		TagIDs:      b.TagsID,
	}
}

// taskToResponse converts a domain.Task into its JSON representation.
func taskToResponse(t domain.Task) Task {
	tags := make([]Tag, len(t.Tags))
	for i, tag := range t.Tags {
		tags[i] = tagToResponse(tag)
	}
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		Tags:        tags,
	}
}
