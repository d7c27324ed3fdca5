package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `id, user_id, title, description, time_minutes, price, link, created_at, updated_at`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Recipe. Labels are left nil; callers attach them separately.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		price     string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Description,
		&r.TimeMinutes,
		&price,
		&r.Link,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse stored price %q: %w", price, err)
	}
	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateRecipe inserts a new recipe row, filling in the generated ID.
// Label links are managed separately via SetRecipeTags/SetRecipeIngredients.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO recipes (user_id, title, description, time_minutes, price, link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID,
		r.Title,
		r.Description,
		r.TimeMinutes,
		r.Price.StringFixed(2),
		r.Link,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		return err
	}

	r.ID, err = result.LastInsertId()
	return err
}

// GetRecipe retrieves a recipe by ID with its tags and ingredients attached.
// No ownership check: recipes are globally readable.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)

	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachLabels(ctx, []*domain.Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns recipes ordered by ID descending (newest first).
// With a tag filter, only recipes linked to at least one of the tag IDs are
// returned; a recipe matching several requested tags appears once.
func (s *Store) ListRecipes(ctx context.Context, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes ORDER BY id DESC`
	var args []any

	if len(filter.TagIDs) > 0 {
		placeholders := strings.Repeat("?,", len(filter.TagIDs))
		placeholders = placeholders[:len(placeholders)-1]
		query = `SELECT DISTINCT r.` + strings.ReplaceAll(recipeColumns, ", ", ", r.") + `
			FROM recipes r
			JOIN recipe_tags rt ON rt.recipe_id = r.id
			WHERE rt.tag_id IN (` + placeholders + `)
			ORDER BY r.id DESC`
		for _, tagID := range filter.TagIDs {
			args = append(args, tagID)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if recipes == nil {
		recipes = []*domain.Recipe{}
	}

	if err := s.attachLabels(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// UpdateRecipe applies a partial update to a recipe owned by userID.
// Ownership is folded into the predicate: a recipe owned by someone else is
// reported as store.ErrNotFound, indistinguishable from an absent one.
// The updated_at column is always touched, so an empty update still
// verifies ownership atomically.
func (s *Store) UpdateRecipe(ctx context.Context, recipeID int64, userID string, upd store.RecipeUpdate) error {
	set := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.TimeMinutes != nil {
		set = append(set, "time_minutes = ?")
		args = append(args, *upd.TimeMinutes)
	}
	if upd.Price != nil {
		set = append(set, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Link != nil {
		set = append(set, "link = ?")
		args = append(args, *upd.Link)
	}

	args = append(args, recipeID, userID)

	result, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`,
		args...)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteRecipe removes a recipe owned by userID. The join rows cascade;
// the labels themselves survive. Same folded-ownership policy as update.
func (s *Store) DeleteRecipe(ctx context.Context, recipeID int64, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`, recipeID, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// attachLabels loads tags and ingredients for a batch of recipes in two
// queries, avoiding per-recipe lookups on list.
func (s *Store) attachLabels(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	byID := make(map[int64]*domain.Recipe, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		byID[r.ID] = r
		r.Tags = []*domain.Label{}
		r.Ingredients = []*domain.Label{}
	}

	tags, err := s.labelsByRecipe(ctx, tagTable, ids)
	if err != nil {
		return err
	}
	for recipeID, labels := range tags {
		byID[recipeID].Tags = labels
	}

	ingredients, err := s.labelsByRecipe(ctx, ingredientTable, ids)
	if err != nil {
		return err
	}
	for recipeID, labels := range ingredients {
		byID[recipeID].Ingredients = labels
	}

	return nil
}

// labelsByRecipe returns labels of one kind grouped by recipe ID.
func (s *Store) labelsByRecipe(ctx context.Context, t labelTable, recipeIDs []int64) (map[int64][]*domain.Label, error) {
	placeholders := strings.Repeat("?,", len(recipeIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(recipeIDs))
	for i, id := range recipeIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT j.recipe_id, l.id, l.user_id, l.name, l.created_at
		FROM `+t.table+` l
		JOIN `+t.joinTable+` j ON j.`+t.joinColumn+` = l.id
		WHERE j.recipe_id IN (`+placeholders+`)
		ORDER BY l.name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.joinTable, err)
	}
	defer rows.Close()

	result := make(map[int64][]*domain.Label)
	for rows.Next() {
		var recipeID int64
		var l domain.Label
		var createdAt string
		if err := rows.Scan(&recipeID, &l.ID, &l.UserID, &l.Name, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		result[recipeID] = append(result[recipeID], &l)
	}
	return result, rows.Err()
}
