package domain

import "time"

// Session tracks an authenticated login and carries the hashed refresh
// token. The raw refresh token is only ever returned to the client at login.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// IsExpired reports whether the session's refresh token is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch updates the LastSeenAt timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now().UTC()
}
