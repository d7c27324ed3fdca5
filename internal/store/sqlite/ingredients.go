package sqlite

import (
	"context"

	"github.com/cookbookapp/cookbook-server/internal/domain"
)

// FindOrCreateIngredient finds an existing ingredient by (owner, name) or
// creates a new one. Returns (ingredient, created, error). Safe under
// concurrent calls for the same key.
func (s *Store) FindOrCreateIngredient(ctx context.Context, userID, name string) (*domain.Label, bool, error) {
	return s.findOrCreateLabel(ctx, ingredientTable, userID, name)
}

// ListIngredientsForUser returns all ingredients owned by a user, ordered by name.
func (s *Store) ListIngredientsForUser(ctx context.Context, userID string) ([]*domain.Label, error) {
	return s.listLabelsForUser(ctx, ingredientTable, userID)
}

// SetRecipeIngredients replaces all ingredient links for a recipe with the given set.
func (s *Store) SetRecipeIngredients(ctx context.Context, recipeID int64, ingredientIDs []int64) error {
	return s.setRecipeLabels(ctx, ingredientTable, recipeID, ingredientIDs)
}

// GetRecipeIngredients returns the ingredients linked to a recipe, ordered by name.
func (s *Store) GetRecipeIngredients(ctx context.Context, recipeID int64) ([]*domain.Label, error) {
	return s.getRecipeLabels(ctx, ingredientTable, recipeID)
}
