// Package domain contains the core data types for the task tracker.
// This package has no dependencies on other internal packages and is
// imported by every layer (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TitleMaxLen is the longest task title the store accepts.
const TitleMaxLen = 200

// Task is a single to-do item owned by exactly one user.
// OwnerID is set once at creation and never changes.
type Task struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	Tags        []Tag // ordered by name
}

// OwnedBy reports whether userID owns the task.
func (t Task) OwnedBy(userID uuid.UUID) bool {
	return t.OwnerID == userID
}

// TagIDs returns the IDs of the task's tags in the same order as Tags.
func (t Task) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Tags))
	for i, tag := range t.Tags {
		ids[i] = tag.ID
	}
	return ids
}

// TaskInput carries the writable fields of a task create or update.
// A nil field was not supplied: on update it is left unchanged, on create it
// takes its default. A non-nil TagIDs replaces the whole tag set, so a
// pointer to an empty slice clears it.
type TaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	TagIDs      *[]uuid.UUID
}

// Apply returns a copy of t with the supplied fields written over it.
// Tags are not touched; the caller resolves TagIDs against the store.
func (p TaskInput) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
