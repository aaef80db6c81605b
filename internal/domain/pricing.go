package domain

import "github.com/shopspring/decimal"

// PricedLine is the pricing calculator input: one line's unit price
// and quantity, in cart order.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int32
}

// CalculateTotals computes (subtotal, tax, total) for an ordered set
// of lines. Rounding is half-up to two decimal places and happens at
// the subtotal level, not per line:
//
//	subtotal = round2(Σ unitPrice_i * quantity_i)
//	tax      = round2(subtotal * taxRate)
//	total    = round2(subtotal + tax)
//
// The function is pure; identical input always yields identical
// output.
func CalculateTotals(lines []PricedLine, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity)))
	}

	subtotal = sum.Round(2)
	tax = subtotal.Mul(taxRate).Round(2)
	total = subtotal.Add(tax).Round(2)

	return subtotal, tax, total
}
