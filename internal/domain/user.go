package domain

import (
	"strings"
	"time"
)

// User represents an authenticated user account in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address for storage and
// comparison. Email uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.IsStaff
}

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets CreatedAt and UpdatedAt for a new record.
func (u *User) InitTimestamps() {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
}
