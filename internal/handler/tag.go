package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tasktracker/internal/domain"
)

// Tag is the JSON representation of a tag.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TagRequest is the body of POST, PUT and PATCH /tags.
type TagRequest struct {
	Name *string `json:"name" validate:"required"`
}

func (TagRequest) nonNullFields() []string { return []string{"name"} }

// ListTags handles GET /tags.
// The optional ?search= parameter filters tags by a case-insensitive
// substring of their name.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var search *string
	if err := bindQuery(q, "search", &search); err != nil {
		s.fail(w, r, err, "tag")
		return
	}
	p, err := bindPagination(q)
	if err != nil {
		s.fail(w, r, err, "tag")
		return
	}

	tags, total, err := s.tags.List(r.Context(), derefString(search), p)
	if err != nil {
		s.fail(w, r, err, "tag")
		return
	}

	data := make([]Tag, len(tags))
	for i, t := range tags {
		data[i] = tagToResponse(t)
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, data))
}

// CreateTag handles POST /tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var body TagRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err, "tag")
		return
	}

	tag, err := s.tags.Create(r.Context(), *body.Name)
	if err != nil {
		s.fail(w, r, err, "tag")
		return
	}
	writeJSON(w, http.StatusCreated, tagToResponse(tag))
}

// GetTag handles GET /tags/{id}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "tag")
		return
	}

	tag, err := s.tags.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "tag")
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(tag))
}

// UpdateTag handles PUT and PATCH /tags/{id}. Name is the only writable
// field, so both methods require it.
func (s *Server) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "tag")
		return
	}

	var body TagRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err, "tag")
		return
	}

	tag, err := s.tags.Rename(r.Context(), id, *body.Name)
	if err != nil {
		s.fail(w, r, err, "tag")
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(tag))
}

// DeleteTag handles DELETE /tags/{id}.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.fail(w, r, domain.ErrNotFound, "tag")
		return
	}

	if err := s.tags.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, "tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tagToResponse converts a domain.Tag to its JSON representation.
func tagToResponse(t domain.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name}
}
