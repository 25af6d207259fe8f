package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tasktracker/internal/domain"
)

// TaskRepo defines the persistence operations for Tasks and their tag links.
// Reads always return tasks with Tags populated (ordered by name).
type TaskRepo interface {
	// Create inserts a task linked to task.Tags and returns the persisted
	// record with DB-generated id and created_at.
	Create(ctx context.Context, task domain.Task) (domain.Task, error)

	// GetByID retrieves a single task regardless of owner.
	// Returns domain.ErrNotFound if no task with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error)

	// ListPaged returns one page of the filter's owner's tasks plus the
	// total number of matches.
	ListPaged(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error)

	// ListByOwner returns every task of ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error)

	// Update overwrites title, description and completed. When replaceTags
	// is true the task's tag links are replaced by task.Tags; otherwise
	// they are left alone. Returns domain.ErrNotFound if the task is gone.
	Update(ctx context.Context, task domain.Task, replaceTags bool) (domain.Task, error)

	// Delete removes a task and its tag links.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// TitleExists reports whether ownerID has a task titled title other
	// than excludeID. Pass uuid.Nil as excludeID when creating.
	TitleExists(ctx context.Context, ownerID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
}

// pgTaskRepo is the Postgres implementation of TaskRepo.
type pgTaskRepo struct {
	db db
}

// NewTaskRepo constructs a TaskRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTaskRepo(db db) TaskRepo {
	return &pgTaskRepo{db: db}
}

const taskColumns = `t.id, t.owner_id, t.title, t.description, t.completed, t.created_at`

// Create inserts the task row and its tag links in one statement so a
// failure on either leaves nothing behind.
func (r *pgTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	const q = `
		WITH t AS (
			INSERT INTO tasks (owner_id, title, description, completed)
			VALUES (@owner_id, @title, @description, @completed)
			RETURNING id, owner_id, title, description, completed, created_at
		), links AS (
			INSERT INTO task_tags (task_id, tag_id)
			SELECT t.id, u.tag_id FROM t, unnest(@tag_ids::uuid[]) AS u(tag_id)
		)
		SELECT ` + taskColumns + ` FROM t`

	args := pgx.NamedArgs{
		"owner_id":    task.OwnerID,
		"title":       task.Title,
		"description": task.Description,
		"completed":   task.Completed,
		"tag_ids":     task.TagIDs(),
	}

	created, err := scanTask(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.Create: %w", translateTaskErr(err))
	}
	if err := r.loadTags(ctx, []*domain.Task{&created}); err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = @id`

	task, err := scanTask(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.GetByID: %w", err)
	}
	if err := r.loadTags(ctx, []*domain.Task{&task}); err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.GetByID: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepo) ListPaged(ctx context.Context, f domain.TaskFilter, p domain.PaginationParams) ([]domain.Task, int64, error) {
	where, args := taskWhere(f)

	var total int64
	countQ := `SELECT count(*) FROM tasks t WHERE ` + where
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TaskRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + taskColumns + ` FROM tasks t WHERE ` + where +
		` ORDER BY ` + taskOrderBy(f.Ordering) +
		` LIMIT @limit OFFSET @offset`
	args["limit"] = p.Limit
	args["offset"] = p.Offset()

	tasks, err := r.queryTasks(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TaskRepo.ListPaged: %w", err)
	}
	return tasks, total, nil
}

func (r *pgTaskRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	const q = `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.owner_id = @owner_id
		ORDER BY t.created_at DESC, t.id`

	tasks, err := r.queryTasks(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TaskRepo.ListByOwner: %w", err)
	}
	return tasks, nil
}

// Update writes the task row and, when asked, swaps its tag links in one
// statement: links not in the new set are deleted, missing ones inserted.
func (r *pgTaskRepo) Update(ctx context.Context, task domain.Task, replaceTags bool) (domain.Task, error) {
	const q = `
		WITH t AS (
			UPDATE tasks
			SET title       = @title,
			    description = @description,
			    completed   = @completed
			WHERE id = @id
			RETURNING id, owner_id, title, description, completed, created_at
		), unlinked AS (
			DELETE FROM task_tags
			WHERE @replace_tags
			  AND task_id IN (SELECT id FROM t)
			  AND tag_id <> ALL(@tag_ids::uuid[])
		), linked AS (
			INSERT INTO task_tags (task_id, tag_id)
			SELECT t.id, u.tag_id FROM t, unnest(@tag_ids::uuid[]) AS u(tag_id)
			WHERE @replace_tags
			ON CONFLICT (task_id, tag_id) DO NOTHING
		)
		SELECT ` + taskColumns + ` FROM t`

	args := pgx.NamedArgs{
		"id":           task.ID,
		"title":        task.Title,
		"description":  task.Description,
		"completed":    task.Completed,
		"replace_tags": replaceTags,
		"tag_ids":      task.TagIDs(), // never nil, so "<> ALL" sees an array, not NULL
	}

	updated, err := scanTask(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.Update: %w", translateTaskErr(err))
	}
	if err := r.loadTags(ctx, []*domain.Task{&updated}); err != nil {
		return domain.Task{}, fmt.Errorf("repo.TaskRepo.Update: %w", err)
	}
	return updated, nil
}

func (r *pgTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tasks WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TaskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TaskRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTaskRepo) TitleExists(ctx context.Context, ownerID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE owner_id = @owner_id AND title = @title AND id <> @exclude_id
		)`

	var exists bool
	args := pgx.NamedArgs{"owner_id": ownerID, "title": title, "exclude_id": excludeID}
	if err := r.db.QueryRow(ctx, q, args).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.TaskRepo.TitleExists: %w", err)
	}
	return exists, nil
}

// queryTasks runs q, scans every row and attaches tags.
// Always returns a non-nil slice on success.
func (r *pgTaskRepo) queryTasks(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	ptrs := make([]*domain.Task, len(tasks))
	for i := range tasks {
		ptrs[i] = &tasks[i]
	}
	if err := r.loadTags(ctx, ptrs); err != nil {
		return nil, err
	}
	return tasks, nil
}

// loadTags fills Tags on every task with a single query.
func (r *pgTaskRepo) loadTags(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(tasks))
	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	for i, t := range tasks {
		t.Tags = []domain.Tag{}
		ids[i] = t.ID
		byID[t.ID] = t
	}

	const q = `
		SELECT tt.task_id, g.id, g.name, g.created_at
		FROM task_tags tt
		JOIN tags g ON g.id = tt.tag_id
		WHERE tt.task_id = ANY(@ids::uuid[])
		ORDER BY g.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID, tagID pgtype.UUID
			tag           domain.Tag
		)
		if err := rows.Scan(&taskID, &tagID, &tag.Name, &tag.CreatedAt); err != nil {
			return fmt.Errorf("load tags: scan: %w", err)
		}
		tag.ID = fromPgUUID(tagID)
		if t, ok := byID[fromPgUUID(taskID)]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load tags: rows: %w", err)
	}
	return nil
}

// taskWhere builds the WHERE clause for a task listing. The owner condition
// comes first and is unconditional. Each whitespace-separated search term
// must match at least one of title, description or a tag name.
func taskWhere(f domain.TaskFilter) (string, pgx.NamedArgs) {
	conds := []string{"t.owner_id = @owner_id"}
	args := pgx.NamedArgs{"owner_id": f.OwnerID}

	if f.Completed != nil {
		conds = append(conds, "t.completed = @completed")
		args["completed"] = *f.Completed
	}

	if len(f.TagIDs) > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM task_tags ft
			WHERE ft.task_id = t.id AND ft.tag_id = ANY(@tag_ids::uuid[]))`)
		args["tag_ids"] = f.TagIDs
	}

	for i, term := range strings.Fields(f.Search) {
		name := "search_" + strconv.Itoa(i)
		conds = append(conds, fmt.Sprintf(`(
			t.title ILIKE @%[1]s
			OR t.description ILIKE @%[1]s
			OR EXISTS (
				SELECT 1 FROM task_tags st
				JOIN tags sg ON sg.id = st.tag_id
				WHERE st.task_id = t.id AND sg.name ILIKE @%[1]s))`, name))
		args[name] = containsPattern(term)
	}

	return strings.Join(conds, " AND "), args
}

// taskOrderBy maps an ordering onto a whitelisted ORDER BY expression.
// t.id is appended as a tie-breaker so pages never overlap.
func taskOrderBy(o domain.TaskOrdering) string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	switch o.Field {
	case domain.TaskOrderTitle:
		return "t.title " + dir + ", t.id"
	case domain.TaskOrderTagName:
		return `(SELECT min(og.name) FROM task_tags ot JOIN tags og ON og.id = ot.tag_id
			WHERE ot.task_id = t.id) ` + dir + " NULLS LAST, t.id"
	default:
		return "t.created_at " + dir + ", t.id"
	}
}

// translateTaskErr maps a tag link to a tag deleted between validation and
// write onto the same field error validation reports.
func translateTaskErr(err error) error {
	if code, constraint := pgErrorCode(err); code == pgForeignKeyViolation && constraint == "task_tags_tag_id_fkey" {
		return domain.NewFieldError("tags_id", "one or more tags no longer exist")
	}
	return err
}

// scanTask maps a single row into a domain.Task without tags.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t       domain.Task
		id      pgtype.UUID
		ownerID pgtype.UUID
	)
	err := s.Scan(&id, &ownerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.ID = fromPgUUID(id)
	t.OwnerID = fromPgUUID(ownerID)
	return t, nil
}
