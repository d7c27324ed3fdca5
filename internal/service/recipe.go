package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	domainerrors "github.com/cookbookapp/cookbook-server/internal/errors"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// RecipeService handles recipe CRUD and label association.
type RecipeService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(store store.Store, logger *slog.Logger) *RecipeService {
	return &RecipeService{store: store, logger: logger}
}

// CreateRecipeRequest contains the fields for a new recipe. Tag and
// ingredient names are resolved under the creating user.
type CreateRecipeRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	TimeMinutes *int     `json:"time_minutes" validate:"required,gte=0"`
	Price       string   `json:"price" validate:"required"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
}

// UpdateRecipeRequest contains a partial recipe update. Nil fields are left
// untouched. A non-nil Tags or Ingredients slice, even an empty one,
// replaces the full label set.
type UpdateRecipeRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Description *string   `json:"description"`
	TimeMinutes *int      `json:"time_minutes" validate:"omitempty,gte=0"`
	Price       *string   `json:"price"`
	Link        *string   `json:"link"`
	Tags        *[]string `json:"tags"`
	Ingredients *[]string `json:"ingredients"`
}

// Create persists a new recipe owned by userID, resolving tag and
// ingredient names to labels under the same owner.
func (s *RecipeService) Create(ctx context.Context, userID string, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	price, err := domain.ParsePrice(req.Price)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	// Labels are resolved before the recipe row is written so a bad name
	// rejects the request without persisting anything listable.
	tagIDs, err := s.resolveTags(ctx, userID, req.Tags)
	if err != nil {
		return nil, err
	}
	ingredientIDs, err := s.resolveIngredients(ctx, userID, req.Ingredients)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: *req.TimeMinutes,
		Price:       price,
		Link:        req.Link,
	}
	recipe.InitTimestamps()

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	if len(tagIDs) > 0 {
		if err := s.store.SetRecipeTags(ctx, recipe.ID, tagIDs); err != nil {
			return nil, fmt.Errorf("link tags: %w", err)
		}
	}
	if len(ingredientIDs) > 0 {
		if err := s.store.SetRecipeIngredients(ctx, recipe.ID, ingredientIDs); err != nil {
			return nil, fmt.Errorf("link ingredients: %w", err)
		}
	}

	s.logger.Info("recipe created", "recipe_id", recipe.ID, "user_id", userID)

	return s.Get(ctx, recipe.ID)
}

// Get returns a recipe by ID with labels attached. Recipes are globally
// readable; no ownership check.
func (s *RecipeService) Get(ctx context.Context, recipeID int64) (*domain.Recipe, error) {
	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

// List returns recipes newest-first, optionally narrowed to those linked
// to at least one of the given tag IDs.
func (s *RecipeService) List(ctx context.Context, tagIDs []int64) ([]*domain.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx, store.RecipeFilter{TagIDs: tagIDs})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Update applies a partial update to a recipe owned by userID. A recipe
// owned by someone else is reported as not found. When the request carries
// a tag or ingredient list, the existing links are replaced wholesale.
func (s *RecipeService) Update(ctx context.Context, userID string, recipeID int64, req UpdateRecipeRequest) (*domain.Recipe, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	upd := store.RecipeUpdate{
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Link:        req.Link,
	}
	if req.Price != nil {
		price, err := domain.ParsePrice(*req.Price)
		if err != nil {
			return nil, domainerrors.Validation(err.Error())
		}
		normalized := price.StringFixed(2)
		upd.Price = &normalized
	}

	// A bad label name must reject the request before any field is
	// applied, so the replacement sets are resolved up front. Labels
	// created here survive a later not-found outcome; label get-or-create
	// is idempotent and owner-scoped, so that is harmless.
	var tagIDs, ingredientIDs []int64
	if req.Tags != nil {
		ids, err := s.resolveTags(ctx, userID, *req.Tags)
		if err != nil {
			return nil, err
		}
		tagIDs = ids
	}
	if req.Ingredients != nil {
		ids, err := s.resolveIngredients(ctx, userID, *req.Ingredients)
		if err != nil {
			return nil, err
		}
		ingredientIDs = ids
	}

	// Runs even for a field-free request: it atomically verifies the
	// (id, owner) predicate before any label replacement.
	if err := s.store.UpdateRecipe(ctx, recipeID, userID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if req.Tags != nil {
		if err := s.store.SetRecipeTags(ctx, recipeID, tagIDs); err != nil {
			return nil, fmt.Errorf("replace tags: %w", err)
		}
	}
	if req.Ingredients != nil {
		if err := s.store.SetRecipeIngredients(ctx, recipeID, ingredientIDs); err != nil {
			return nil, fmt.Errorf("replace ingredients: %w", err)
		}
	}

	return s.Get(ctx, recipeID)
}

// Delete removes a recipe owned by userID. Label links go with it; the
// labels themselves stay.
func (s *RecipeService) Delete(ctx context.Context, userID string, recipeID int64) error {
	if err := s.store.DeleteRecipe(ctx, recipeID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("recipe not found")
		}
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.logger.Info("recipe deleted", "recipe_id", recipeID, "user_id", userID)
	return nil
}

func (s *RecipeService) resolveTags(ctx context.Context, userID string, names []string) ([]int64, error) {
	return s.resolveLabels(ctx, userID, names, s.store.FindOrCreateTag, "tag")
}

func (s *RecipeService) resolveIngredients(ctx context.Context, userID string, names []string) ([]int64, error) {
	return s.resolveLabels(ctx, userID, names, s.store.FindOrCreateIngredient, "ingredient")
}

// resolveLabels maps label names to IDs via get-or-create under userID.
// Duplicate names collapse to one ID; order is preserved.
func (s *RecipeService) resolveLabels(
	ctx context.Context,
	userID string,
	names []string,
	findOrCreate func(ctx context.Context, userID, name string) (*domain.Label, bool, error),
	kind string,
) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	seen := make(map[int64]bool, len(names))

	for _, name := range names {
		name = domain.NormalizeLabelName(name)
		if name == "" {
			return nil, domainerrors.Validationf("%s name cannot be empty", kind)
		}

		label, _, err := findOrCreate(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", kind, name, err)
		}
		if !seen[label.ID] {
			seen[label.ID] = true
			ids = append(ids, label.ID)
		}
	}

	return ids, nil
}
