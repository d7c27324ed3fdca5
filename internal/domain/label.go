package domain

import (
	"strings"
	"time"
)

// Label is a per-user named entity attached to recipes.
// Tags and ingredients share this shape; they live in separate tables and
// never mix. (user, name) is unique per label kind, so two users may each
// own a label with the same name as independent rows.
type Label struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// NormalizeLabelName trims surrounding whitespace from a label name.
// Returns "" for names that are empty after trimming.
func NormalizeLabelName(name string) string {
	return strings.TrimSpace(name)
}
