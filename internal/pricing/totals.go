package pricing

import (
	"fmt"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/shopspring/decimal"
)

// ComputeTotals prices a cart. The discount is rounded to cents; a coupon the
// table does not know contributes nothing.
func ComputeTotals(lines []domain.CartLine, coupon string, table CouponTable) domain.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	totals := domain.Totals{Subtotal: subtotal, Discount: decimal.Zero, Total: subtotal}
	if coupon == "" {
		return totals
	}
	code, fraction, ok := table.Lookup(coupon)
	if !ok {
		return totals
	}

	totals.CouponCode = code
	totals.Discount = subtotal.Mul(fraction).Round(2)
	totals.Total = subtotal.Sub(totals.Discount)
	if totals.Total.IsNegative() {
		panic(fmt.Sprintf("pricing: negative total %s for subtotal %s and coupon %s", totals.Total, subtotal, code))
	}
	return totals
}
