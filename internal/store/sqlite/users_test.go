package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(id, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$argon2id$fake",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeTestUser("user-1", "alice@example.com")
	u.IsStaff = true

	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}

	if got.ID != u.ID {
		t.Errorf("ID: got %q, want %q", got.ID, u.ID)
	}
	if got.Email != u.Email {
		t.Errorf("Email: got %q, want %q", got.Email, u.Email)
	}
	if got.Name != u.Name {
		t.Errorf("Name: got %q, want %q", got.Name, u.Name)
	}
	if got.PasswordHash != u.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, u.PasswordHash)
	}
	if !got.IsActive {
		t.Error("IsActive: expected true")
	}
	if !got.IsStaff {
		t.Error("IsStaff: expected true")
	}
	if got.IsSuperuser {
		t.Error("IsSuperuser: expected false")
	}
	if got.CreatedAt.Unix() != u.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, u.CreatedAt)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "nonexistent")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeTestUser("user-ci", "Bob@Example.COM")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Lookup with a different casing should find the same user, and the
	// email should come back exactly as originally provided.
	got, err := s.GetUserByEmail(ctx, "bob@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "user-ci" {
		t.Errorf("ID: got %q, want %q", got.ID, "user-ci")
	}
	if got.Email != "Bob@Example.COM" {
		t.Errorf("Email: got %q, want %q", got.Email, "Bob@Example.COM")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u1 := makeTestUser("user-d1", "dup@example.com")
	if err := s.CreateUser(ctx, u1); err != nil {
		t.Fatalf("CreateUser u1: %v", err)
	}

	// Same address with different casing collides on email_lower.
	u2 := makeTestUser("user-d2", "DUP@example.com")
	err := s.CreateUser(ctx, u2)
	if err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeTestUser("user-u1", "before@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u.Email = "after@example.com"
	u.Name = "New Name"
	u.PasswordHash = "$argon2id$other"
	u.Touch()

	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "after@example.com" {
		t.Errorf("Email: got %q, want %q", got.Email, "after@example.com")
	}
	if got.Name != "New Name" {
		t.Errorf("Name: got %q, want %q", got.Name, "New Name")
	}
	if got.PasswordHash != "$argon2id$other" {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, "$argon2id$other")
	}

	// The old address should be free again.
	if _, err := s.GetUserByEmail(ctx, "before@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for old email, got %v", err)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeTestUser("user-missing", "missing@example.com")
	err := s.UpdateUser(ctx, u)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u1 := makeTestUser("user-e1", "one@example.com")
	u2 := makeTestUser("user-e2", "two@example.com")
	if err := s.CreateUser(ctx, u1); err != nil {
		t.Fatalf("CreateUser u1: %v", err)
	}
	if err := s.CreateUser(ctx, u2); err != nil {
		t.Fatalf("CreateUser u2: %v", err)
	}

	u2.Email = "one@example.com"
	err := s.UpdateUser(ctx, u2)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSetUserActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeTestUser("user-a1", "active@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.SetUserActive(ctx, "user-a1", false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}

	got, err := s.GetUser(ctx, "user-a1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.IsActive {
		t.Error("IsActive: expected false after deactivation")
	}
}
