package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at`

// scanSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.Session.
func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var s domain.Session

	var (
		expiresAt  string
		createdAt  string
		lastSeenAt string
	)

	err := scanner.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&expiresAt,
		&createdAt,
		&lastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	s.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	s.LastSeenAt, err = parseTime(lastSeenAt)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// CreateSession inserts a new session into the database.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
	)
	return err
}

// GetSessionByRefreshToken retrieves a session by the hash of its refresh
// token. Returns store.ErrNotFound if no session matches.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, tokenHash)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// TouchSession updates the last_seen_at timestamp of a session.
func (s *Store) TouchSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen_at = ? WHERE id = ?`,
		formatTime(session.LastSeenAt), session.ID)
	return err
}

// DeleteSession removes a session by ID.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteExpiredSessions removes all sessions whose refresh token is past
// expiry. Returns the number of sessions removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
