package auth

import "time"

// AccessClaims represents the claims stored in a PASETO access token.
// Claims are encrypted in v4.local tokens, so they're not readable without
// the server key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
