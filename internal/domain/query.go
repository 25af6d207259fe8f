package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TaskOrderField names a column tasks can be listed by.
type TaskOrderField string

// Supported ordering fields. TaskOrderTagName sorts by each task's
// alphabetically first tag name; untagged tasks sort last.
const (
	TaskOrderCreatedAt TaskOrderField = "created_at"
	TaskOrderTitle     TaskOrderField = "title"
	TaskOrderTagName   TaskOrderField = "tag_name"
)

// TaskOrdering is a field plus direction.
type TaskOrdering struct {
	Field TaskOrderField
	Desc  bool
}

// DefaultTaskOrdering lists the newest tasks first.
var DefaultTaskOrdering = TaskOrdering{Field: TaskOrderCreatedAt, Desc: true}

// ParseTaskOrdering reads an ordering query value such as "title" or
// "-created_at". A leading "-" selects descending order. Empty or unknown
// fields fall back to DefaultTaskOrdering rather than failing the request.
func ParseTaskOrdering(s string) TaskOrdering {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")

	switch field {
	case "created_at":
		return TaskOrdering{Field: TaskOrderCreatedAt, Desc: desc}
	case "title":
		return TaskOrdering{Field: TaskOrderTitle, Desc: desc}
	case "tag_name", "tags__name":
		return TaskOrdering{Field: TaskOrderTagName, Desc: desc}
	default:
		return DefaultTaskOrdering
	}
}

// String renders the ordering back into its query form.
func (o TaskOrdering) String() string {
	if o.Desc {
		return "-" + string(o.Field)
	}
	return string(o.Field)
}

// TaskFilter holds the optional refinements of a task listing.
// OwnerID is mandatory: list queries are always scoped to one user.
type TaskFilter struct {
	OwnerID   uuid.UUID
	Completed *bool
	TagIDs    []uuid.UUID // task matches if it carries any of these
	Search    string      // case-insensitive substring over title, description, tag names
	Ordering  TaskOrdering
}
