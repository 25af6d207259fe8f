package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportRow is a single row in a user's task export.
// Tags holds the tag names of the task, ordered alphabetically.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	TaskID      uuid.UUID
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	Tags        []string
}
