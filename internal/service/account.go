package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/repo"
)

// PasswordHasher hashes and verifies passwords. *auth.PasswordHasher satisfies it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer mints and verifies bearer tokens. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
	Parse(token string) (uuid.UUID, error)
}

// usernamePattern allows letters, digits and @ . + - _
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// AccountService registers users, exchanges credentials for bearer tokens,
// and resolves tokens back to users.
type AccountService struct {
	users  repo.UserRepo
	hasher PasswordHasher
	tokens TokenIssuer

	// dummyHash is compared against on unknown usernames so a failed login
	// takes the same time whether or not the user exists.
	dummyHash string
}

// NewAccountService constructs an AccountService.
func NewAccountService(users repo.UserRepo, hasher PasswordHasher, tokens TokenIssuer) *AccountService {
	dummy, _ := hasher.Hash("dummy-password-for-timing")
	return &AccountService{users: users, hasher: hasher, tokens: tokens, dummyHash: dummy}
}

// Register creates a user with a hashed password.
// Returns a *domain.FieldError for an invalid or taken username or a blank password.
func (s *AccountService) Register(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return domain.User{}, domain.NewFieldError("username", "this field may not be blank")
	case utf8.RuneCountInString(username) > domain.UsernameMaxLen:
		return domain.User{}, domain.NewFieldError("username",
			fmt.Sprintf("ensure this field has no more than %d characters", domain.UsernameMaxLen))
	case !usernamePattern.MatchString(username):
		return domain.User{}, domain.NewFieldError("username",
			"enter a valid username: letters, numbers, and @/./+/-/_ characters only")
	}
	if strings.TrimSpace(password) == "" {
		return domain.User{}, domain.NewFieldError("password", "this field may not be blank")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AccountService.Register: %w", err)
	}
	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AccountService.Register: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns a bearer token.
// Returns domain.ErrInvalidCredentials for an unknown user or wrong password.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		_ = s.hasher.Compare(s.dummyHash, password)
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("service.AccountService.Login: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("service.AccountService.Login: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user.
// Returns domain.ErrUnauthenticated if the token is invalid or its user is gone.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AccountService.Authenticate: %w: %v", domain.ErrUnauthenticated, err)
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("service.AccountService.Authenticate: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AccountService.Authenticate: %w", err)
	}
	return user, nil
}
