package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

// Task is a single todo item owned by one user.
type Task struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"size:1000;not null"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateTitle rejects titles that are empty after trimming or longer
// than 200 characters. Lengths are counted in runes, not bytes.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return InvalidTaskDataError{Message: "Title cannot be empty"}
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLen {
		return InvalidTaskDataError{Message: fmt.Sprintf("Title too long (%d characters, max %d)", n, MaxTitleLen)}
	}
	return nil
}

// ValidateDescription rejects descriptions longer than 1000 characters.
func ValidateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLen {
		return InvalidTaskDataError{Message: fmt.Sprintf("Description too long (%d characters, max %d)", n, MaxDescriptionLen)}
	}
	return nil
}
