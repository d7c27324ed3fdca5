package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// LabelService serves the per-user tag and ingredient listings. Labels are
// only ever created through recipe writes, so this is read-only.
type LabelService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLabelService creates a new label service.
func NewLabelService(store store.Store, logger *slog.Logger) *LabelService {
	return &LabelService{store: store, logger: logger}
}

// ListTags returns the user's tags ordered by name.
func (s *LabelService) ListTags(ctx context.Context, userID string) ([]*domain.Label, error) {
	tags, err := s.store.ListTagsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// ListIngredients returns the user's ingredients ordered by name.
func (s *LabelService) ListIngredients(ctx context.Context, userID string) ([]*domain.Label, error) {
	ingredients, err := s.store.ListIngredientsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}
