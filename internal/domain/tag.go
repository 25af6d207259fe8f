package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a named label that can be applied to tasks.
// Tags are global (not owned by any user) and Name is unique across all tags.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// TagNameMaxLen is the longest tag name the store accepts.
const TagNameMaxLen = 100
