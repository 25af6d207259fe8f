package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns tasks.
// PasswordHash is a bcrypt hash and must never be serialized to clients.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UsernameMaxLen is the longest username the store accepts.
const UsernameMaxLen = 150
