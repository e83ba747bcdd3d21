package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommend-service/model"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Money
	}{
		{"$24.95", model.Money{CurrencyCode: "USD", Units: 24, Nanos: 950_000_000}},
		{"$9.00", model.Money{CurrencyCode: "USD", Units: 9, Nanos: 0}},
		{"109", model.Money{CurrencyCode: "USD", Units: 109, Nanos: 0}},
		{"109.99", model.Money{CurrencyCode: "USD", Units: 109, Nanos: 990_000_000}},
		{"$1,299.99", model.Money{CurrencyCode: "USD", Units: 1299, Nanos: 990_000_000}},
		{"€5.50", model.Money{CurrencyCode: "EUR", Units: 5, Nanos: 500_000_000}},
		{"£12", model.Money{CurrencyCode: "GBP", Units: 12, Nanos: 0}},
		{" $ 3.10 ", model.Money{CurrencyCode: "USD", Units: 3, Nanos: 100_000_000}},
	}

	for _, tt := range tests {
		got, err := NormalizePrice(tt.raw)
		require.NoError(t, err, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestNormalizePriceHalfUpRounding(t *testing.T) {
	// Ten fractional digits force a rounding decision at the ninth.
	got, err := NormalizePrice("1.0000000005")
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.Nanos)

	got, err = NormalizePrice("1.0000000004")
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.Nanos)

	// Rounding that overflows the nano range must carry into units.
	got, err = NormalizePrice("1.9999999999")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Units)
	assert.Equal(t, int32(0), got.Nanos)
}

func TestNormalizePriceInvariants(t *testing.T) {
	for _, raw := range []string{"$24.95", "0.001", "99999.123456789"} {
		got, err := NormalizePrice(raw)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Units, int64(0))
		assert.GreaterOrEqual(t, got.Nanos, int32(0))
		assert.Less(t, got.Nanos, int32(1_000_000_000))
	}
}

func TestNormalizePriceRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "$", "free", "-4.20", "$-1"} {
		_, err := NormalizePrice(raw)
		assert.ErrorIs(t, err, ErrMalformedResponse, "raw=%q", raw)
	}
}

func TestAbsoluteURL(t *testing.T) {
	base := "http://frontend"

	assert.Equal(t, "http://frontend/static/img/p.jpg", AbsoluteURL(base, "/static/img/p.jpg"))
	assert.Equal(t, "http://frontend/static/img/p.jpg", AbsoluteURL(base, "static/img/p.jpg"))
	assert.Equal(t, "https://cdn.example.com/p.jpg", AbsoluteURL(base, "https://cdn.example.com/p.jpg"))
	assert.Equal(t, "", AbsoluteURL(base, ""))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Vintage Typewriter", CleanName("  Vintage   Typewriter \n"))
	assert.Equal(t, "Mug", CleanName("Mug"))
	assert.Equal(t, "", CleanName("   "))
}
