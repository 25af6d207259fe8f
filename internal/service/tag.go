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

// TagService implements business logic for the shared tag vocabulary.
// Tags are global: any authenticated user may create, rename or delete any
// tag, so no method takes an owner.
type TagService struct {
	tags repo.TagRepo
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// Create validates name and persists a new tag.
// Returns a *domain.FieldError for a blank, overlong or duplicate name.
func (s *TagService) Create(ctx context.Context, name string) (domain.Tag, error) {
	name, err := s.validName(ctx, name, uuid.Nil)
	if err != nil {
		return domain.Tag{}, err
	}
	tag, err := s.tags.Create(ctx, name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return tag, nil
}

// Get returns a single tag by ID.
func (s *TagService) Get(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Get: %w", err)
	}
	return tag, nil
}

// List returns one page of tags whose name contains search, ordered by name.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TagService) List(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	tags, total, err := s.tags.ListPaged(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, total, nil
}

// Rename changes a tag's name. Renaming a tag to its current name succeeds.
func (s *TagService) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error) {
	if _, err := s.tags.GetByID(ctx, id); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Rename: %w", err)
	}
	name, err := s.validName(ctx, name, id)
	if err != nil {
		return domain.Tag{}, err
	}
	tag, err := s.tags.Update(ctx, domain.Tag{ID: id, Name: name})
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Rename: %w", err)
	}
	return tag, nil
}

// Delete removes a tag. Tasks carrying it silently lose it.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return nil
}

// validName trims name and enforces the non-blank, length and uniqueness
// rules. excludeID is the tag being renamed, or uuid.Nil on create.
func (s *TagService) validName(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewFieldError("name", "this field may not be blank")
	}
	if utf8.RuneCountInString(name) > domain.TagNameMaxLen {
		return "", domain.NewFieldError("name",
			fmt.Sprintf("ensure this field has no more than %d characters", domain.TagNameMaxLen))
	}
	exists, err := s.tags.NameExists(ctx, name, excludeID)
	if err != nil {
		return "", fmt.Errorf("service.TagService: name check: %w", err)
	}
	if exists {
		return "", domain.NewFieldError("name", "a tag with this name already exists")
	}
	return name, nil
}
