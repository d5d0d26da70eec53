package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Aliladla/hackathon2phase3/domain"
)

// Postgres persists tasks and users in a relational database through GORM.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects to the database at dsn and migrates the schema.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Task{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing GORM connection. Used by tests that bring
// their own database.
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Create(ctx context.Context, userID uuid.UUID, title, description string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := domain.ValidateTitle(title); err != nil {
		return domain.Task{}, err
	}
	if err := domain.ValidateDescription(description); err != nil {
		return domain.Task{}, err
	}
	task := domain.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
	}
	if err := p.db.WithContext(ctx).Create(&task).Error; err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (p *Postgres) Get(ctx context.Context, userID uuid.UUID, id int64) (domain.Task, error) {
	var task domain.Task
	err := p.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Task{}, domain.TaskNotFoundError{ID: id}
		}
		return domain.Task{}, err
	}
	return task, nil
}

func (p *Postgres) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]domain.Task, error) {
	filter = normalizeFilter(filter)
	q := p.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	tasks := make([]domain.Task, 0, filter.Limit)
	err := q.Order("id").Limit(filter.Limit).Offset(filter.Offset).Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (p *Postgres) Count(ctx context.Context, userID uuid.UUID, completed *bool) (int64, error) {
	q := p.db.WithContext(ctx).Model(&domain.Task{}).Where("user_id = ?", userID)
	if completed != nil {
		q = q.Where("completed = ?", *completed)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Postgres) Update(ctx context.Context, userID uuid.UUID, id int64, patch TaskPatch) (domain.Task, error) {
	task, err := p.Get(ctx, userID, id)
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
	// Save bumps updated_at even when nothing changed; no-op updates are
	// visible in the timestamp.
	if err := p.db.WithContext(ctx).Save(&task).Error; err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (p *Postgres) Toggle(ctx context.Context, userID uuid.UUID, id int64) (domain.Task, error) {
	task, err := p.Get(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Completed = !task.Completed
	if err := p.db.WithContext(ctx).Save(&task).Error; err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (p *Postgres) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	res := p.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.TaskNotFoundError{ID: id}
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}
	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := p.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User
	err := p.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
