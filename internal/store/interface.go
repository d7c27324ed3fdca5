// Package store defines the persistence interface for the cookbook server.
package store

import (
	"context"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SetUserActive(ctx context.Context, id string, active bool) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	TouchSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Tags
	FindOrCreateTag(ctx context.Context, userID, name string) (*domain.Label, bool, error)
	ListTagsForUser(ctx context.Context, userID string) ([]*domain.Label, error)
	SetRecipeTags(ctx context.Context, recipeID int64, tagIDs []int64) error
	GetRecipeTags(ctx context.Context, recipeID int64) ([]*domain.Label, error)

	// Ingredients
	FindOrCreateIngredient(ctx context.Context, userID, name string) (*domain.Label, bool, error)
	ListIngredientsForUser(ctx context.Context, userID string) ([]*domain.Label, error)
	SetRecipeIngredients(ctx context.Context, recipeID int64, ingredientIDs []int64) error
	GetRecipeIngredients(ctx context.Context, recipeID int64) ([]*domain.Label, error)

	// Recipes
	CreateRecipe(ctx context.Context, r *domain.Recipe) error
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, recipeID int64, userID string, upd RecipeUpdate) error
	DeleteRecipe(ctx context.Context, recipeID int64, userID string) error
}
