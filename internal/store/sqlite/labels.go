package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/domain"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// labelTable describes one of the two label tables. Table and column names
// are compile-time constants, never user input.
type labelTable struct {
	table      string // tags / ingredients
	joinTable  string // recipe_tags / recipe_ingredients
	joinColumn string // tag_id / ingredient_id
}

var (
	tagTable        = labelTable{table: "tags", joinTable: "recipe_tags", joinColumn: "tag_id"}
	ingredientTable = labelTable{table: "ingredients", joinTable: "recipe_ingredients", joinColumn: "ingredient_id"}
)

// labelColumns is the ordered list of columns selected in label queries.
// Must match the scan order in scanLabel.
const labelColumns = `id, user_id, name, created_at`

// scanLabel scans a sql.Row (or sql.Rows via its Scan method) into a domain.Label.
func scanLabel(scanner interface{ Scan(dest ...any) error }) (*domain.Label, error) {
	var l domain.Label
	var createdAt string

	err := scanner.Scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// getLabelByName retrieves a label by (owner, name).
// Returns store.ErrNotFound if no such label exists for this owner.
func (s *Store) getLabelByName(ctx context.Context, t labelTable, userID, name string) (*domain.Label, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+labelColumns+` FROM `+t.table+` WHERE user_id = ? AND name = ?`,
		userID, name)

	l, err := scanLabel(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// createLabel inserts a new label row, filling in the generated ID.
// Returns store.ErrAlreadyExists on a (user_id, name) collision.
func (s *Store) createLabel(ctx context.Context, t labelTable, l *domain.Label) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO `+t.table+` (user_id, name, created_at) VALUES (?, ?, ?)`,
		l.UserID, l.Name, formatTime(l.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	l.ID, err = result.LastInsertId()
	return err
}

// findOrCreateLabel finds an existing label by (owner, name) or creates a
// new one. Race-safe: concurrent callers that both miss the initial lookup
// race on the insert, and the loser re-fetches the winner's row, so at most
// one row ever exists per key. Returns (label, created, error).
func (s *Store) findOrCreateLabel(ctx context.Context, t labelTable, userID, name string) (*domain.Label, bool, error) {
	existing, err := s.getLabelByName(ctx, t, userID, name)
	if err == nil {
		return existing, false, nil
	}
	if !store.ErrNotFound.Is(err) {
		return nil, false, err
	}

	l := &domain.Label{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.createLabel(ctx, t, l); err != nil {
		if store.ErrAlreadyExists.Is(err) {
			// Lost the insert race; the row now exists.
			existing, err := s.getLabelByName(ctx, t, userID, name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return l, true, nil
}

// listLabelsForUser returns all labels owned by a user ordered by name.
func (s *Store) listLabelsForUser(ctx context.Context, t labelTable, userID string) ([]*domain.Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+labelColumns+` FROM `+t.table+` WHERE user_id = ? ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*domain.Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if labels == nil {
		labels = []*domain.Label{}
	}

	return labels, nil
}

// setRecipeLabels replaces all labels of one kind for a recipe in a single
// transaction: deletes the existing join rows and inserts the new set.
func (s *Store) setRecipeLabels(ctx context.Context, t labelTable, recipeID int64, labelIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+t.joinTable+` WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("delete %s: %w", t.joinTable, err)
	}

	for _, labelID := range labelIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+t.joinTable+` (recipe_id, `+t.joinColumn+`) VALUES (?, ?)`,
			recipeID, labelID)
		if err != nil {
			return fmt.Errorf("insert %s: %w", t.joinTable, err)
		}
	}

	return tx.Commit()
}

// getRecipeLabels returns the labels of one kind linked to a recipe,
// ordered by name.
func (s *Store) getRecipeLabels(ctx context.Context, t labelTable, recipeID int64) ([]*domain.Label, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.name, l.created_at
		FROM `+t.table+` l
		JOIN `+t.joinTable+` j ON j.`+t.joinColumn+` = l.id
		WHERE j.recipe_id = ?
		ORDER BY l.name ASC`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.joinTable, err)
	}
	defer rows.Close()

	var labels []*domain.Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if labels == nil {
		labels = []*domain.Label{}
	}

	return labels, nil
}
