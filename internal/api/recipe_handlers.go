package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	domainerrors "github.com/cookbookapp/cookbook-server/internal/errors"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/recipes",
		Summary:     "List recipes",
		Description: "Lists all recipes, newest first, optionally filtered by tag IDs.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/recipes",
		Summary:       "Create recipe",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Any authenticated caller may read any recipe.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceRecipe",
		Method:      http.MethodPut,
		Path:        "/recipes/{id}",
		Summary:     "Replace recipe",
		Description: "Full update of a recipe owned by the caller.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Partial update of a recipe owned by the caller; only supplied fields change.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/recipes/{id}",
		Summary:       "Delete recipe",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// RecipeResponse contains a recipe with its resolved labels.
type RecipeResponse struct {
	ID          int64           `json:"id" doc:"Recipe ID"`
	UserID      string          `json:"user" doc:"Owner user ID"`
	Title       string          `json:"title" doc:"Title"`
	Description string          `json:"description" doc:"Free-form description"`
	TimeMinutes int             `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       string          `json:"price" doc:"Price with two decimal places"`
	Link        string          `json:"link" doc:"External reference URL"`
	Tags        []LabelResponse `json:"tags" doc:"Associated tags"`
	Ingredients []LabelResponse `json:"ingredients" doc:"Associated ingredients"`
	CreatedAt   time.Time       `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time       `json:"updated_at" doc:"Last update timestamp"`
}

// RecipeOutput wraps a single recipe for Huma.
type RecipeOutput struct {
	Body RecipeResponse
}

// RecipeListInput carries the optional tag filter for listing.
type RecipeListInput struct {
	Tags string `query:"tags" doc:"Comma-separated tag IDs to filter by" example:"1,3"`
}

// RecipeListOutput wraps a recipe list for Huma.
type RecipeListOutput struct {
	Body []RecipeResponse
}

// LabelNameRequest is the write-side shape for a tag or ingredient. Labels
// are referenced by name on writes; the server resolves identifiers.
type LabelNameRequest struct {
	Name string `json:"name,omitempty" doc:"Label name"`
}

// CreateRecipeRequest is the request body for recipe creation.
type CreateRecipeRequest struct {
	Title       string             `json:"title,omitempty" doc:"Title"`
	Description string             `json:"description,omitempty" doc:"Free-form description"`
	TimeMinutes *int               `json:"time_minutes,omitempty" doc:"Preparation time in minutes"`
	Price       string             `json:"price,omitempty" doc:"Price, up to 5 integer digits and 2 decimals"`
	Link        string             `json:"link,omitempty" doc:"External reference URL"`
	Tags        []LabelNameRequest `json:"tags,omitempty" doc:"Tags, created under the caller if new"`
	Ingredients []LabelNameRequest `json:"ingredients,omitempty" doc:"Ingredients, created under the caller if new"`
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body CreateRecipeRequest
}

// RecipeIDInput carries a recipe ID path parameter.
type RecipeIDInput struct {
	ID int64 `path:"id" doc:"Recipe ID"`
}

// ReplaceRecipeRequest is the request body for PUT /recipes/{id}. All
// writable fields are expected; tags and ingredients follow the usual
// present-means-replace rule.
type ReplaceRecipeRequest struct {
	Title       string              `json:"title,omitempty" doc:"Title"`
	Description string              `json:"description,omitempty" doc:"Free-form description"`
	TimeMinutes *int                `json:"time_minutes,omitempty" doc:"Preparation time in minutes"`
	Price       string              `json:"price,omitempty" doc:"Price, up to 5 integer digits and 2 decimals"`
	Link        string              `json:"link,omitempty" doc:"External reference URL"`
	Tags        *[]LabelNameRequest `json:"tags,omitempty" doc:"Replacement tags; empty list clears"`
	Ingredients *[]LabelNameRequest `json:"ingredients,omitempty" doc:"Replacement ingredients; empty list clears"`
}

// ReplaceRecipeInput wraps the full update for Huma.
type ReplaceRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body ReplaceRecipeRequest
}

// UpdateRecipeRequest is the request body for PATCH /recipes/{id}.
// Absent fields are left untouched.
type UpdateRecipeRequest struct {
	Title       *string             `json:"title,omitempty" doc:"Title"`
	Description *string             `json:"description,omitempty" doc:"Free-form description"`
	TimeMinutes *int                `json:"time_minutes,omitempty" doc:"Preparation time in minutes"`
	Price       *string             `json:"price,omitempty" doc:"Price, up to 5 integer digits and 2 decimals"`
	Link        *string             `json:"link,omitempty" doc:"External reference URL"`
	Tags        *[]LabelNameRequest `json:"tags,omitempty" doc:"Replacement tags; empty list clears"`
	Ingredients *[]LabelNameRequest `json:"ingredients,omitempty" doc:"Replacement ingredients; empty list clears"`
}

// UpdateRecipeInput wraps the partial update for Huma.
type UpdateRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body UpdateRecipeRequest
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *RecipeListInput) (*RecipeListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tagIDs, err := parseTagFilter(input.Tags)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.List(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, mapRecipe(r))
	}
	return &RecipeListOutput{Body: out}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Create(ctx, userID, service.CreateRecipeRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       input.Body.Price,
		Link:        input.Body.Link,
		Tags:        labelNames(input.Body.Tags),
		Ingredients: labelNames(input.Body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipe(recipe)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipe(recipe)}, nil
}

func (s *Server) handleReplaceRecipe(ctx context.Context, input *ReplaceRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// PUT expects the complete writable field set.
	if input.Body.TimeMinutes == nil {
		return nil, domainerrors.Validation("time_minutes is required")
	}
	if input.Body.Price == "" {
		return nil, domainerrors.Validation("price is required")
	}

	recipe, err := s.services.Recipe.Update(ctx, userID, input.ID, service.UpdateRecipeRequest{
		Title:       &input.Body.Title,
		Description: &input.Body.Description,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       &input.Body.Price,
		Link:        &input.Body.Link,
		Tags:        labelNameSet(input.Body.Tags),
		Ingredients: labelNameSet(input.Body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipe(recipe)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Update(ctx, userID, input.ID, service.UpdateRecipeRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       input.Body.Price,
		Link:        input.Body.Link,
		Tags:        labelNameSet(input.Body.Tags),
		Ingredients: labelNameSet(input.Body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipe(recipe)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

// === Helpers ===

// parseTagFilter parses a comma-separated tag ID list. Any malformed
// entry rejects the whole filter.
func parseTagFilter(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, domainerrors.Validationf("invalid tag id %q", strings.TrimSpace(part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// labelNames flattens write-side label objects into the names the service
// layer works with.
func labelNames(labels []LabelNameRequest) []string {
	if labels == nil {
		return nil
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

// labelNameSet preserves the present-vs-absent distinction: a nil slice
// pointer leaves links untouched, a pointer to an empty list clears them.
func labelNameSet(labels *[]LabelNameRequest) *[]string {
	if labels == nil {
		return nil
	}
	names := labelNames(*labels)
	return &names
}

func mapRecipe(r *domain.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        mapLabels(r.Tags),
		Ingredients: mapLabels(r.Ingredients),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
