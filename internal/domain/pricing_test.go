package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotals(t *testing.T) {
	taxRate := decimal.NewFromFloat(0.10)

	lines := []PricedLine{
		{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("5.005"), Quantity: 3},
	}

	subtotal, tax, total := CalculateTotals(lines, taxRate)

	// 20.00 + 15.015 rounds half up to 35.02 at the subtotal level.
	assert.True(t, subtotal.Equal(decimal.RequireFromString("35.02")), "subtotal = %s", subtotal)
	assert.True(t, tax.Equal(decimal.RequireFromString("3.50")), "tax = %s", tax)
	assert.True(t, total.Equal(decimal.RequireFromString("38.52")), "total = %s", total)
}

func TestCalculateTotals_Deterministic(t *testing.T) {
	taxRate := decimal.NewFromFloat(0.10)
	lines := []PricedLine{
		{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 7},
		{UnitPrice: decimal.RequireFromString("0.01"), Quantity: 3},
		{UnitPrice: decimal.RequireFromString("333.333"), Quantity: 1},
	}

	s1, t1, tot1 := CalculateTotals(lines, taxRate)
	for i := 0; i < 100; i++ {
		s2, t2, tot2 := CalculateTotals(lines, taxRate)
		require.True(t, s1.Equal(s2))
		require.True(t, t1.Equal(t2))
		require.True(t, tot1.Equal(tot2))
	}
}

func TestCalculateTotals_Empty(t *testing.T) {
	subtotal, tax, total := CalculateTotals(nil, decimal.NewFromFloat(0.10))

	assert.True(t, subtotal.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, total.IsZero())
}

func TestCalculateTotals_ZeroTaxRate(t *testing.T) {
	lines := []PricedLine{
		{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 4},
	}

	subtotal, tax, total := CalculateTotals(lines, decimal.Zero)

	assert.True(t, subtotal.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, tax.IsZero())
	assert.True(t, total.Equal(subtotal))
}
