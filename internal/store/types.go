package store

// RecipeFilter narrows recipe listings. A nil/empty TagIDs means no filter.
// When present, recipes linked to at least one of the tag IDs are returned,
// deduplicated.
type RecipeFilter struct {
	TagIDs []int64
}

// RecipeUpdate describes a partial update to a recipe's scalar fields.
// Nil pointers leave the column untouched.
type RecipeUpdate struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *string // normalized fixed-point string, e.g. "12.50"
	Link        *string
}

// IsEmpty reports whether the update changes no columns.
func (u RecipeUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.TimeMinutes == nil &&
		u.Price == nil && u.Link == nil
}
