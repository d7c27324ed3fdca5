package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two decimals", "12.50", "12.50"},
		{"one decimal", "12.5", "12.50"},
		{"integer", "12", "12.00"},
		{"zero", "0", "0.00"},
		{"zero with decimals", "0.00", "0.00"},
		{"max representable", "99999.99", "99999.99"},
		{"leading zero fraction", "0.05", "0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestParsePrice_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrPriceMalformed},
		{"letters", "abc", ErrPriceMalformed},
		{"trailing junk", "12.50x", ErrPriceMalformed},
		{"three decimals", "12.505", ErrPriceScale},
		{"negative", "-1.00", ErrPriceNegative},
		{"at upper bound", "100000.00", ErrPriceOutOfRange},
		{"above upper bound", "123456.78", ErrPriceOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrice(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecipe_InitTimestamps(t *testing.T) {
	r := &Recipe{Title: "Lentil soup"}
	r.InitTimestamps()

	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
}
