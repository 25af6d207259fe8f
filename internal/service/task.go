// Package service contains the business logic for the task tracker.
// Services validate inputs, enforce ownership and uniqueness rules, and
// orchestrate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/repo"
)

// TaskService implements business logic for Task operations.
// Every method takes the acting user's ID; tasks of other users behave as
// if they did not exist.
type TaskService struct {
	tasks repo.TaskRepo
	tags  repo.TagRepo
}

// NewTaskService constructs a TaskService backed by the provided repos.
func NewTaskService(tasks repo.TaskRepo, tags repo.TagRepo) *TaskService {
	return &TaskService{tasks: tasks, tags: tags}
}

// List returns one page of f.OwnerID's tasks matching f and the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TaskService) List(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error) {
	if f.OwnerID == uuid.Nil {
		return nil, 0, fmt.Errorf("service.TaskService.List: %w", domain.ErrUnauthenticated)
	}
	tasks, total, err := s.tasks.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TaskService.List: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, total, nil
}

// Create validates in and persists a new task owned by ownerID.
// Returns domain.ErrValidation (as a *domain.FieldError) for a blank or
// duplicate title and for unknown tag IDs.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (domain.Task, error) {
	if in.Title == nil {
		return domain.Task{}, domain.NewFieldError("title", "this field is required")
	}
	task := domain.Task{OwnerID: ownerID}

	title, err := s.validTitle(ctx, ownerID, *in.Title, uuid.Nil)
	if err != nil {
		return domain.Task{}, err
	}
	in.Title = &title
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	task = in.Apply(task)

	if in.TagIDs != nil {
		if task.Tags, err = s.resolveTags(ctx, *in.TagIDs); err != nil {
			return domain.Task{}, err
		}
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.Create: %w", err)
	}
	return created, nil
}

// Get returns a task if ownerID owns it.
// Returns domain.ErrNotFound if it does not exist or belongs to someone else.
func (s *TaskService) Get(ctx context.Context, ownerID, id uuid.UUID) (domain.Task, error) {
	task, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.Get: %w", err)
	}
	return task, nil
}

// Update applies the supplied fields of in to a task ownerID owns.
// A supplied title is re-validated with the task itself excluded from the
// duplicate check. Supplied TagIDs replace the task's whole tag set.
func (s *TaskService) Update(ctx context.Context, ownerID, id uuid.UUID, in domain.TaskInput) (domain.Task, error) {
	current, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.Update: %w", err)
	}

	if in.Title != nil {
		title, err := s.validTitle(ctx, ownerID, *in.Title, id)
		if err != nil {
			return domain.Task{}, err
		}
		in.Title = &title
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	next := in.Apply(current)

	replaceTags := in.TagIDs != nil
	if replaceTags {
		if next.Tags, err = s.resolveTags(ctx, *in.TagIDs); err != nil {
			return domain.Task{}, err
		}
	}

	updated, err := s.tasks.Update(ctx, next, replaceTags)
	if err != nil {
		return domain.Task{}, fmt.Errorf("service.TaskService.Update: %w", err)
	}
	return updated, nil
}

// Delete permanently removes a task ownerID owns.
func (s *TaskService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service.TaskService.Delete: %w", err)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TaskService.Delete: %w", err)
	}
	return nil
}

// ListTags returns the tags of a task ownerID owns, ordered by name.
func (s *TaskService) ListTags(ctx context.Context, ownerID, id uuid.UUID) ([]domain.Tag, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, fmt.Errorf("service.TaskService.ListTags: %w", err)
	}
	tags, err := s.tags.ListByTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.TaskService.ListTags: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// owned loads a task and checks it belongs to ownerID. A task owned by
// someone else is reported as domain.ErrNotFound so its existence never leaks.
// Every single-task operation goes through here.
func (s *TaskService) owned(ctx context.Context, ownerID, id uuid.UUID) (domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !task.OwnedBy(ownerID) {
		return domain.Task{}, domain.ErrNotFound
	}
	return task, nil
}

// validTitle trims title and checks it is non-blank, short enough, and not
// used by another task of the same owner. excludeID is the task being
// updated, or uuid.Nil on create.
//
// The check and the subsequent write are separate statements: two
// concurrent requests can both pass it and store the same title.
func (s *TaskService) validTitle(ctx context.Context, ownerID uuid.UUID, title string, excludeID uuid.UUID) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.NewFieldError("title", "this field may not be blank")
	}
	if utf8.RuneCountInString(title) > domain.TitleMaxLen {
		return "", domain.NewFieldError("title",
			fmt.Sprintf("ensure this field has no more than %d characters", domain.TitleMaxLen))
	}

	exists, err := s.tasks.TitleExists(ctx, ownerID, title, excludeID)
	if err != nil {
		return "", fmt.Errorf("service.TaskService: title check: %w", err)
	}
	if exists {
		return "", domain.NewFieldError("title", "a task with this title already exists")
	}
	return title, nil
}

// resolveTags de-duplicates ids and loads the matching tags. Any id with no
// tag behind it fails the whole write; unknown tags are never created.
func (s *TaskService) resolveTags(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return []domain.Tag{}, nil
	}

	tags, err := s.tags.ListByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("service.TaskService: resolve tags: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(tags))
	for _, t := range tags {
		found[t.ID] = true
	}
	for _, id := range unique {
		if !found[id] {
			return nil, domain.NewFieldError("tags_id", fmt.Sprintf("invalid tag id %q: object does not exist", id))
		}
	}
	return tags, nil
}
