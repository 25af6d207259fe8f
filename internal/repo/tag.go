package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tasktracker/internal/domain"
)

// TagRepo defines the persistence operations for the global tag vocabulary.
type TagRepo interface {
	// Create inserts a tag and returns the persisted record.
	// Returns a *domain.FieldError if the name is already taken.
	Create(ctx context.Context, name string) (domain.Tag, error)

	// GetByID returns domain.ErrNotFound if no tag has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// NameExists reports whether a tag other than excludeID is named name.
	// Pass uuid.Nil as excludeID when creating.
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)

	// ListPaged returns one page of tags whose name contains search
	// (case-insensitive), ordered by name, plus the total match count.
	ListPaged(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error)

	// ListByIDs returns the tags among ids that exist, ordered by name.
	// Unknown ids are silently absent from the result.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)

	// ListByTask returns all tags linked to a task, ordered by name.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error)

	// Update renames a tag. Returns domain.ErrNotFound if it does not exist
	// and a *domain.FieldError if the new name is taken.
	Update(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// Delete removes a tag and, via ON DELETE CASCADE, every task link to it.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

var errDuplicateTagName = domain.NewFieldError("name", "a tag with this name already exists")

func (r *pgTagRepo) Create(ctx context.Context, name string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name)
		VALUES (@name)
		RETURNING id, name, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", translateTagErr(err))
	}
	return result, nil
}

func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	const q = `SELECT id, name, created_at FROM tags WHERE id = @id`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTagRepo) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM tags WHERE name = @name AND id <> @exclude_id)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name, "exclude_id": excludeID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.TagRepo.NameExists: %w", err)
	}
	return exists, nil
}

// ListPaged returns one page of tags matching search ordered by name.
// An empty search matches every tag.
func (r *pgTagRepo) ListPaged(ctx context.Context, search string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	const countQ = `SELECT count(*) FROM tags WHERE name ILIKE @pattern`
	const q = `
		SELECT id, name, created_at
		FROM tags
		WHERE name ILIKE @pattern
		ORDER BY name, id
		LIMIT @limit OFFSET @offset`

	pattern := containsPattern(search)

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"pattern": pattern}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"pattern": pattern,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	return tags, total, nil
}

func (r *pgTagRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}
	const q = `
		SELECT id, name, created_at
		FROM tags
		WHERE id = ANY(@ids::uuid[])
		ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByIDs: %w", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByIDs: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT g.id, g.name, g.created_at
		FROM tags g
		JOIN task_tags tt ON tt.tag_id = g.id
		WHERE tt.task_id = @task_id
		ORDER BY g.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"task_id": taskID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByTask: %w", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByTask: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	const q = `
		UPDATE tags
		SET name = @name
		WHERE id = @id
		RETURNING id, name, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": tag.ID, "name": tag.Name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: %w", translateTagErr(err))
	}
	return result, nil
}

func (r *pgTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tags WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// translateTagErr turns a unique violation on tags.name into the field error
// the service's pre-check would have produced. The pre-check and the write
// are separate statements, so the constraint is the last line of defence.
func translateTagErr(err error) error {
	if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == "tags_name_key" {
		return errDuplicateTagName
	}
	return err
}

// collectTags drains rows into a non-nil slice and closes them.
func collectTags(rows pgx.Rows) ([]domain.Tag, error) {
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = fromPgUUID(id)
	return t, nil
}
