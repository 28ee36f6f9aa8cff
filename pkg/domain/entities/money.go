package entities

import (
	"github.com/shopspring/decimal"
)

// Cents is a fixed-point money amount in integer cents. All threshold
// comparisons and solver coefficients are computed in cents; decimals are
// used only at the parsing and display edges.
type Cents int64

var hundred = decimal.NewFromInt(100)

// CentsFromDecimal converts a decimal money amount to cents, rounding to the
// nearest cent.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Decimal returns the amount as a decimal in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(hundred)
}

// Float64 returns the amount in currency units for display output.
func (c Cents) Float64() float64 {
	f, _ := c.Decimal().Float64()
	return f
}

// MulQty returns the total for qty units priced at c.
func (c Cents) MulQty(qty int64) Cents {
	return c * Cents(qty)
}
