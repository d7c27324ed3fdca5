package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Price constraints: 7 significant digits with 2 decimal places, so the
// integer part never exceeds 5 digits.
var maxPrice = decimal.New(1, 5) // 100000.00, exclusive

// Price parse errors.
var (
	ErrPriceMalformed  = errors.New("price is not a valid decimal")
	ErrPriceScale      = errors.New("price has more than 2 decimal places")
	ErrPriceOutOfRange = errors.New("price exceeds 7 digits")
	ErrPriceNegative   = errors.New("price must not be negative")
)

// Recipe represents a user-authored recipe with its label associations.
// The owner is derived from the authenticated caller at creation and is
// immutable afterwards. Recipes are globally readable; mutation is
// owner-only.
type Recipe struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Tags        []*Label        `json:"tags"`
	Ingredients []*Label        `json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ParsePrice parses and validates a price string against the fixed-point
// constraint (7 significant digits, 2 decimal places, non-negative).
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrPriceMalformed
	}
	if d.Exponent() < -2 {
		return decimal.Decimal{}, ErrPriceScale
	}
	if d.IsNegative() {
		return decimal.Decimal{}, ErrPriceNegative
	}
	if d.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, ErrPriceOutOfRange
	}
	return d, nil
}

// Touch updates the UpdatedAt timestamp.
func (r *Recipe) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets CreatedAt and UpdatedAt for a new record.
func (r *Recipe) InitTimestamps() {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
}
