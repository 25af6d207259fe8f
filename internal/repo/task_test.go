package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tasktracker/internal/domain"
	"github.com/pkordes/tasktracker/internal/repo"
	"github.com/pkordes/tasktracker/testutil"
)

// taskFixture bundles repos sharing one rolled-back transaction with two
// users, so tests can check owner isolation.
type taskFixture struct {
	tx         pgx.Tx
	tasks      repo.TaskRepo
	tags       repo.TagRepo
	alice, bob domain.User
}

func newTaskFixture(t *testing.T) taskFixture {
	t.Helper()
	tx := testutil.NewTx(t)
	users := repo.NewUserRepo(tx)

	alice, err := users.Create(context.Background(), "alice", "x")
	require.NoError(t, err)
	bob, err := users.Create(context.Background(), "bob", "x")
	require.NoError(t, err)

	return taskFixture{tx: tx, tasks: repo.NewTaskRepo(tx), tags: repo.NewTagRepo(tx), alice: alice, bob: bob}
}

// mustCreateTask inserts a task and, when at is non-zero, backdates its
// created_at. Every statement in one transaction sees the same now().
func (f taskFixture) mustCreateTask(t *testing.T, owner domain.User, title string, at time.Time, tags ...domain.Tag) domain.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), domain.Task{OwnerID: owner.ID, Title: title, Tags: tags})
	require.NoError(t, err, "create task %q", title)
	if !at.IsZero() {
		_, err = f.tx.Exec(context.Background(), `UPDATE tasks SET created_at = $1 WHERE id = $2`, at, task.ID)
		require.NoError(t, err)
		task.CreatedAt = at
	}
	return task
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func listAll(t *testing.T, f taskFixture, filter domain.TaskFilter) []domain.Task {
	t.Helper()
	if filter.Ordering == (domain.TaskOrdering{}) {
		filter.Ordering = domain.DefaultTaskOrdering
	}
	got, _, err := f.tasks.ListPaged(context.Background(), filter, domain.PaginationParams{Page: 1, Limit: 100})
	require.NoError(t, err)
	return got
}

func TestTaskRepo_CreateWithTags(t *testing.T) {
	f := newTaskFixture(t)
	work := mustCreateTag(t, f.tags, "work")
	home := mustCreateTag(t, f.tags, "home")

	created, err := f.tasks.Create(context.Background(), domain.Task{
		OwnerID:     f.alice.ID,
		Title:       "Report",
		Description: "quarterly",
		Tags:        []domain.Tag{work, home},
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, f.alice.ID, created.OwnerID)
	assert.False(t, created.Completed)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, []domain.Tag{home, work}, created.Tags, "tags come back ordered by name")

	got, err := f.tasks.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.tasks.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskRepo_Update_ReplaceTags(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	a := mustCreateTag(t, f.tags, "a")
	b := mustCreateTag(t, f.tags, "b")
	c := mustCreateTag(t, f.tags, "c")
	task := f.mustCreateTask(t, f.alice, "Plan", time.Time{}, a, b)

	task.Completed = true
	task.Tags = []domain.Tag{b, c}
	updated, err := f.tasks.Update(ctx, task, true)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, []domain.Tag{b, c}, updated.Tags)

	// Without replaceTags the links are untouched even if Tags differs.
	updated.Title = "Plan v2"
	updated.Tags = nil
	updated, err = f.tasks.Update(ctx, updated, false)
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", updated.Title)
	assert.Equal(t, []domain.Tag{b, c}, updated.Tags)

	// An empty replacement clears the set.
	updated.Tags = []domain.Tag{}
	updated, err = f.tasks.Update(ctx, updated, true)
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestTaskRepo_Update_NotFound(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.tasks.Update(context.Background(), domain.Task{ID: uuid.New(), Title: "x"}, false)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskRepo_Delete(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	tag := mustCreateTag(t, f.tags, "gone")
	task := f.mustCreateTask(t, f.alice, "Bye", time.Time{}, tag)

	require.NoError(t, f.tasks.Delete(ctx, task.ID))

	_, err := f.tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.tasks.Delete(ctx, task.ID), domain.ErrNotFound)

	// The tag itself survives the task.
	_, err = f.tags.GetByID(ctx, tag.ID)
	assert.NoError(t, err)
}

func TestTaskRepo_TagDeleteUnlinks(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	keep := mustCreateTag(t, f.tags, "keep")
	drop := mustCreateTag(t, f.tags, "drop")
	task := f.mustCreateTask(t, f.alice, "Linked", time.Time{}, keep, drop)

	require.NoError(t, f.tags.Delete(ctx, drop.ID))

	got, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{keep}, got.Tags)

	byTask, err := f.tags.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{keep}, byTask)
}

func TestTaskRepo_TitleExists(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.mustCreateTask(t, f.alice, "Unique", time.Time{})

	exists, err := f.tasks.TitleExists(ctx, f.alice.ID, "Unique", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.tasks.TitleExists(ctx, f.alice.ID, "Unique", task.ID)
	require.NoError(t, err)
	assert.False(t, exists, "the task itself is excluded")

	exists, err = f.tasks.TitleExists(ctx, f.bob.ID, "Unique", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists, "titles are scoped per owner")
}

// ---- ListPaged -------------------------------------------------------------

func TestTaskRepo_ListPaged_OwnerIsolation(t *testing.T) {
	f := newTaskFixture(t)
	f.mustCreateTask(t, f.alice, "Alice 1", time.Time{})
	f.mustCreateTask(t, f.alice, "Alice 2", time.Time{})
	f.mustCreateTask(t, f.bob, "Bob 1", time.Time{})

	assert.ElementsMatch(t, []string{"Alice 1", "Alice 2"}, titles(listAll(t, f, domain.TaskFilter{OwnerID: f.alice.ID})))
	assert.Equal(t, []string{"Bob 1"}, titles(listAll(t, f, domain.TaskFilter{OwnerID: f.bob.ID})))
}

func TestTaskRepo_ListPaged_Filters(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	work := mustCreateTag(t, f.tags, "work")
	urgent := mustCreateTag(t, f.tags, "urgent")
	home := mustCreateTag(t, f.tags, "home")

	f.mustCreateTask(t, f.alice, "Write report", time.Time{}, work)
	pay := f.mustCreateTask(t, f.alice, "Pay bills", time.Time{}, home, urgent)
	f.mustCreateTask(t, f.alice, "Water plants", time.Time{})
	f.mustCreateTask(t, f.bob, "Bob's report", time.Time{}, work)

	pay.Completed = true
	_, err := f.tasks.Update(ctx, pay, false)
	require.NoError(t, err)

	done, notDone := true, false
	tests := []struct {
		name   string
		filter domain.TaskFilter
		want   []string
	}{
		{"completed", domain.TaskFilter{Completed: &done}, []string{"Pay bills"}},
		{"not completed", domain.TaskFilter{Completed: &notDone}, []string{"Write report", "Water plants"}},
		{"one tag", domain.TaskFilter{TagIDs: []uuid.UUID{work.ID}}, []string{"Write report"}},
		{"any of two tags", domain.TaskFilter{TagIDs: []uuid.UUID{work.ID, urgent.ID}}, []string{"Write report", "Pay bills"}},
		{"unknown tag", domain.TaskFilter{TagIDs: []uuid.UUID{uuid.New()}}, []string{}},
		{"search title", domain.TaskFilter{Search: "REPORT"}, []string{"Write report"}},
		{"search tag name", domain.TaskFilter{Search: "urg"}, []string{"Pay bills"}},
		{"search every term", domain.TaskFilter{Search: "pay home"}, []string{"Pay bills"}},
		{"search terms must all match", domain.TaskFilter{Search: "pay work"}, []string{}},
		{"search wildcard literal", domain.TaskFilter{Search: "%"}, []string{}},
		{"combined", domain.TaskFilter{Completed: &notDone, TagIDs: []uuid.UUID{work.ID}, Search: "write"}, []string{"Write report"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.filter.OwnerID = f.alice.ID

			assert.ElementsMatch(t, tc.want, titles(listAll(t, f, tc.filter)))
		})
	}
}

func TestTaskRepo_ListPaged_SearchDescription(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	task := f.mustCreateTask(t, f.alice, "Shopping", time.Time{})
	task.Description = "oat milk and bread"
	_, err := f.tasks.Update(ctx, task, false)
	require.NoError(t, err)

	got := listAll(t, f, domain.TaskFilter{OwnerID: f.alice.ID, Search: "Milk"})

	assert.Equal(t, []string{"Shopping"}, titles(got))
}

func TestTaskRepo_ListPaged_Ordering(t *testing.T) {
	f := newTaskFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	alpha := mustCreateTag(t, f.tags, "alpha")
	zulu := mustCreateTag(t, f.tags, "zulu")

	f.mustCreateTask(t, f.alice, "b-second", base.Add(2*time.Hour), zulu)
	f.mustCreateTask(t, f.alice, "a-first", base.Add(1*time.Hour))
	f.mustCreateTask(t, f.alice, "c-third", base.Add(3*time.Hour), alpha, zulu)

	tests := []struct {
		ordering string
		want     []string
	}{
		{"", []string{"c-third", "b-second", "a-first"}},
		{"created_at", []string{"a-first", "b-second", "c-third"}},
		{"title", []string{"a-first", "b-second", "c-third"}},
		{"-title", []string{"c-third", "b-second", "a-first"}},
		{"tag_name", []string{"c-third", "b-second", "a-first"}},
		{"-tags__name", []string{"b-second", "c-third", "a-first"}},
		{"bogus", []string{"c-third", "b-second", "a-first"}},
	}
	for _, tc := range tests {
		t.Run(tc.ordering, func(t *testing.T) {
			got := listAll(t, f, domain.TaskFilter{OwnerID: f.alice.ID, Ordering: domain.ParseTaskOrdering(tc.ordering)})

			assert.Equal(t, tc.want, titles(got))
		})
	}
}

func TestTaskRepo_ListPaged_Pagination(t *testing.T) {
	f := newTaskFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"t1", "t2", "t3", "t4", "t5"} {
		f.mustCreateTask(t, f.alice, title, base.Add(time.Duration(i)*time.Minute))
	}
	ctx := context.Background()
	filter := domain.TaskFilter{OwnerID: f.alice.ID, Ordering: domain.ParseTaskOrdering("created_at")}

	page, total, err := f.tasks.ListPaged(ctx, filter, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []string{"t3", "t4"}, titles(page))

	page, total, err = f.tasks.ListPaged(ctx, filter, domain.PaginationParams{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestTaskRepo_ListByOwner_NewestFirst(t *testing.T) {
	f := newTaskFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.mustCreateTask(t, f.alice, "old", base)
	f.mustCreateTask(t, f.alice, "new", base.Add(time.Hour))
	f.mustCreateTask(t, f.bob, "other", base)

	got, err := f.tasks.ListByOwner(context.Background(), f.alice.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, titles(got))
}

// TestTaskRepo_Create_UnknownTag runs the violating insert last: a failed
// statement aborts the surrounding transaction.
func TestTaskRepo_Create_UnknownTag(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.tasks.Create(context.Background(), domain.Task{
		OwnerID: f.alice.ID,
		Title:   "Orphan",
		Tags:    []domain.Tag{{ID: uuid.New(), Name: "ghost"}},
	})

	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "tags_id", fe.Field)
}
