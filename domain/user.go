package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns tasks. The password hash never leaves the
// backend; json serialization skips it.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}
