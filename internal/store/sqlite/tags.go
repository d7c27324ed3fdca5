package sqlite

import (
	"context"

	"github.com/cookbookapp/cookbook-server/internal/domain"
)

// FindOrCreateTag finds an existing tag by (owner, name) or creates a new
// one. Returns (tag, created, error) where created is true if a new row was
// made. Safe under concurrent calls for the same key.
func (s *Store) FindOrCreateTag(ctx context.Context, userID, name string) (*domain.Label, bool, error) {
	return s.findOrCreateLabel(ctx, tagTable, userID, name)
}

// ListTagsForUser returns all tags owned by a user, ordered by name.
func (s *Store) ListTagsForUser(ctx context.Context, userID string) ([]*domain.Label, error) {
	return s.listLabelsForUser(ctx, tagTable, userID)
}

// SetRecipeTags replaces all tag links for a recipe with the given set.
func (s *Store) SetRecipeTags(ctx context.Context, recipeID int64, tagIDs []int64) error {
	return s.setRecipeLabels(ctx, tagTable, recipeID, tagIDs)
}

// GetRecipeTags returns the tags linked to a recipe, ordered by name.
func (s *Store) GetRecipeTags(ctx context.Context, recipeID int64) ([]*domain.Label, error) {
	return s.getRecipeLabels(ctx, tagTable, recipeID)
}
