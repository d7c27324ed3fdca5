package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, email, email_lower, name,
	password_hash, is_active, is_staff, is_superuser`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt   string
		updatedAt   string
		emailLower  string
		isActive    int
		isStaff     int
		isSuperuser int
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&emailLower,
		&u.Name,
		&u.PasswordHash,
		&isActive,
		&isStaff,
		&isSuperuser,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	u.IsActive = isActive != 0
	u.IsStaff = isStaff != 0
	u.IsSuperuser = isSuperuser != 0

	return &u, nil
}

// CreateUser inserts a new user into the database.
// Returns store.ErrAlreadyExists if the normalized email is already taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, email, email_lower, name,
			password_hash, is_active, is_staff, is_superuser
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Email,
		domain.NormalizeEmail(user.Email),
		user.Name,
		user.PasswordHash,
		boolToInt(user.IsActive),
		boolToInt(user.IsStaff),
		boolToInt(user.IsSuperuser),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by case-insensitive email match.
// Returns store.ErrNotFound if no such user exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`,
		domain.NormalizeEmail(email))

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser performs a full row update on an existing user.
// Returns store.ErrNotFound if the user does not exist and
// store.ErrAlreadyExists if the new email collides with another account.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			created_at = ?,
			updated_at = ?,
			email = ?,
			email_lower = ?,
			name = ?,
			password_hash = ?,
			is_active = ?,
			is_staff = ?,
			is_superuser = ?
		WHERE id = ?`,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Email,
		domain.NormalizeEmail(user.Email),
		user.Name,
		user.PasswordHash,
		boolToInt(user.IsActive),
		boolToInt(user.IsStaff),
		boolToInt(user.IsSuperuser),
		user.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetUserActive flips the active flag. Accounts are never hard-deleted;
// deactivation is the retirement path.
func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`,
		boolToInt(active), id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
