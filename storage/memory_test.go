package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Aliladla/hackathon2phase3/domain"
)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func mustCreate(t *testing.T, m *Memory, owner uuid.UUID, title, desc string) domain.Task {
	t.Helper()
	task, err := m.Create(context.Background(), owner, title, desc)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestCreateGetRoundTrip(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()
	created := mustCreate(t, m, owner, "  Buy milk  ", " 2% please ")

	if created.Title != "Buy milk" {
		t.Fatalf("title not trimmed: %q", created.Title)
	}
	if created.Description != "2% please" {
		t.Fatalf("description not trimmed: %q", created.Description)
	}
	if created.Completed {
		t.Fatal("new task must start incomplete")
	}

	got, err := m.Get(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != created.Title || got.Description != created.Description || got.Completed != created.Completed {
		t.Fatalf("round trip mismatch: %#v vs %#v", got, created)
	}
}

func TestCreateValidation(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()

	if _, err := m.Create(context.Background(), owner, "   ", ""); !domain.IsInvalidData(err) {
		t.Fatalf("expected InvalidTaskDataError, got %v", err)
	}
	if _, err := m.Create(context.Background(), owner, strings.Repeat("t", 201), ""); !domain.IsInvalidData(err) {
		t.Fatalf("expected InvalidTaskDataError, got %v", err)
	}
	if _, err := m.Create(context.Background(), owner, "ok", strings.Repeat("d", 1001)); !domain.IsInvalidData(err) {
		t.Fatalf("expected InvalidTaskDataError, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	m := NewMemory()
	ownerA := uuid.New()
	ownerB := uuid.New()
	task := mustCreate(t, m, ownerA, "X", "")

	ctx := context.Background()
	if _, err := m.Get(ctx, ownerB, task.ID); !domain.IsNotFound(err) {
		t.Fatalf("cross-owner get must be not-found, got %v", err)
	}
	if _, err := m.Update(ctx, ownerB, task.ID, TaskPatch{Title: strPtr("stolen")}); !domain.IsNotFound(err) {
		t.Fatalf("cross-owner update must be not-found, got %v", err)
	}
	if _, err := m.Toggle(ctx, ownerB, task.ID); !domain.IsNotFound(err) {
		t.Fatalf("cross-owner toggle must be not-found, got %v", err)
	}
	if err := m.Delete(ctx, ownerB, task.ID); !domain.IsNotFound(err) {
		t.Fatalf("cross-owner delete must be not-found, got %v", err)
	}

	// The task is untouched for its owner.
	got, err := m.Get(ctx, ownerA, task.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if got.Title != "X" {
		t.Fatalf("task mutated across owners: %#v", got)
	}
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()
	task := mustCreate(t, m, owner, "flip me", "")

	ctx := context.Background()
	once, err := m.Toggle(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !once.Completed {
		t.Fatal("first toggle must complete the task")
	}
	twice, err := m.Toggle(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if twice.Completed != task.Completed {
		t.Fatal("toggle twice must restore the original state")
	}
}

func TestNoopUpdateBumpsUpdatedAt(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()
	task := mustCreate(t, m, owner, "same", "same desc")

	time.Sleep(5 * time.Millisecond)
	updated, err := m.Update(context.Background(), owner, task.ID, TaskPatch{
		Title:       strPtr("same"),
		Description: strPtr("same desc"),
		Completed:   boolPtr(false),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != task.Title || updated.Description != task.Description || updated.Completed != task.Completed {
		t.Fatal("no-op update must not change fields")
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Fatal("no-op update must still bump updated_at")
	}
}

func TestListFiltersAndCount(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()
	ctx := context.Background()

	first := mustCreate(t, m, owner, "one", "")
	mustCreate(t, m, owner, "two", "")
	third := mustCreate(t, m, owner, "three", "")
	if _, err := m.Toggle(ctx, owner, third.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	// Another owner's tasks never leak into the list.
	mustCreate(t, m, uuid.New(), "other", "")

	all, err := m.List(ctx, owner, TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	if all[0].ID != first.ID {
		t.Fatal("list must be in creation order")
	}

	done, err := m.List(ctx, owner, TaskFilter{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(done) != 1 || done[0].ID != third.ID {
		t.Fatalf("completed filter mismatch: %#v", done)
	}

	pending, err := m.List(ctx, owner, TaskFilter{Completed: boolPtr(false)})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending filter mismatch: %#v", pending)
	}

	total, err := m.Count(ctx, owner, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != int64(len(all)) {
		t.Fatalf("count %d inconsistent with list %d", total, len(all))
	}
}

func TestListPagination(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()
	for i := 0; i < 5; i++ {
		mustCreate(t, m, owner, "task", "")
	}
	ctx := context.Background()

	page, err := m.List(ctx, owner, TaskFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].ID != 3 || page[1].ID != 4 {
		t.Fatalf("unexpected page contents: %#v", page)
	}

	empty, err := m.List(ctx, owner, TaskFilter{Offset: 99})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("offset past end must return empty, got %d", len(empty))
	}
}

func TestIDsNeverReused(t *testing.T) {
	m := NewMemory()
	owner := uuid.New()
	ctx := context.Background()

	first := mustCreate(t, m, owner, "a", "")
	if err := m.Delete(ctx, owner, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second := mustCreate(t, m, owner, "b", "")
	if second.ID <= first.ID {
		t.Fatalf("id reused: %d after %d", second.ID, first.ID)
	}
	if err := m.Delete(ctx, owner, first.ID); !domain.IsNotFound(err) {
		t.Fatalf("double delete must be not-found, got %v", err)
	}
}

func TestUserStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	user, err := m.CreateUser(ctx, "A@B.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Fatalf("email not lowercased: %q", user.Email)
	}
	if _, err := m.CreateUser(ctx, "a@b.com", "other"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	got, err := m.GetUserByEmail(ctx, "a@b.com")
	if err != nil || got.ID != user.ID {
		t.Fatalf("get by email: %v %#v", err, got)
	}
	if _, err := m.GetUserByEmail(ctx, "missing@b.com"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	byID, err := m.GetUserByID(ctx, user.ID)
	if err != nil || byID.Email != user.Email {
		t.Fatalf("get by id: %v %#v", err, byID)
	}
}
