package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aliladla/hackathon2phase3/domain"
)

// Memory keeps tasks and users in process memory. It backs the console
// tool and doubles as the test implementation of the store contracts. IDs are monotonically increasing and never reused, even
// after deletes.
type Memory struct {
	mu     sync.Mutex
	tasks  map[int64]domain.Task
	users  map[uuid.UUID]domain.User
	nextID int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tasks:  make(map[int64]domain.Task),
		users:  make(map[uuid.UUID]domain.User),
		nextID: 1,
	}
}

func (m *Memory) Create(_ context.Context, userID uuid.UUID, title, description string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := domain.ValidateTitle(title); err != nil {
		return domain.Task{}, err
	}
	if err := domain.ValidateDescription(description); err != nil {
		return domain.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	task := domain.Task{
		ID:          m.nextID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.nextID++
	m.tasks[task.ID] = task
	return task, nil
}

func (m *Memory) Get(_ context.Context, userID uuid.UUID, id int64) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(userID, id)
}

func (m *Memory) getLocked(userID uuid.UUID, id int64) (domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return domain.Task{}, domain.TaskNotFoundError{ID: id}
	}
	return task, nil
}

func (m *Memory) List(_ context.Context, userID uuid.UUID, filter TaskFilter) ([]domain.Task, error) {
	filter = normalizeFilter(filter)

	m.mu.Lock()
	all := make([]domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		all = append(all, task)
	}
	m.mu.Unlock()

	// Creation order: ids are assigned sequentially.
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if filter.Offset >= len(all) {
		return []domain.Task{}, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (m *Memory) Count(_ context.Context, userID uuid.UUID, completed *bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if completed != nil && task.Completed != *completed {
			continue
		}
		n++
	}
	return n, nil
}

func (m *Memory) Update(_ context.Context, userID uuid.UUID, id int64, patch TaskPatch) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, err := m.getLocked(userID, id)
	if err != nil {
		return domain.Task{}, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := domain.ValidateTitle(title); err != nil {
			return domain.Task{}, err
		}
		task.Title = title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if err := domain.ValidateDescription(description); err != nil {
			return domain.Task{}, err
		}
		task.Description = description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	task.UpdatedAt = time.Now().UTC()
	m.tasks[id] = task
	return task, nil
}

func (m *Memory) Toggle(_ context.Context, userID uuid.UUID, id int64) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, err := m.getLocked(userID, id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Completed = !task.Completed
	task.UpdatedAt = time.Now().UTC()
	m.tasks[id] = task
	return task, nil
}

func (m *Memory) Delete(_ context.Context, userID uuid.UUID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.getLocked(userID, id); err != nil {
		return err
	}
	delete(m.tasks, id)
	return nil
}

func (m *Memory) CreateUser(_ context.Context, email, passwordHash string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *Memory) GetUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}
