package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// Credentials is the body of POST /register and POST /login.
type Credentials struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

// User is the public representation of an account. It never carries the
// password or its hash.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body Credentials
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err, "user")
		return
	}

	u, err := s.accounts.Register(r.Context(), *body.Username, *body.Password)
	if err != nil {
		s.fail(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, User{ID: u.ID, Username: u.Username})
}

// Login handles POST /login. The returned token goes in the Authorization
// header of every later request: "Authorization: Bearer <token>".
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body Credentials
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err, "user")
		return
	}

	token, err := s.accounts.Login(r.Context(), *body.Username, *body.Password)
	if err != nil {
		s.fail(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
