// Package pricing turns a cart into totals and holds the single applied coupon.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CouponTable maps normalized coupon codes to discount fractions in (0, 1).
type CouponTable map[string]decimal.Decimal

func NewCouponTable(fractions map[string]decimal.Decimal) (CouponTable, error) {
	one := decimal.NewFromInt(1)
	table := make(CouponTable, len(fractions))
	for code, f := range fractions {
		norm := NormalizeCode(code)
		if norm == "" {
			return nil, fmt.Errorf("coupon code %q is blank", code)
		}
		if !f.IsPositive() || !f.LessThan(one) {
			return nil, fmt.Errorf("coupon %s: fraction %s outside (0, 1)", norm, f)
		}
		table[norm] = f
	}
	return table, nil
}

func DefaultCoupons() CouponTable {
	return CouponTable{
		"SAVE10":    decimal.RequireFromString("0.10"),
		"SAVE20":    decimal.RequireFromString("0.20"),
		"WELCOME15": decimal.RequireFromString("0.15"),
	}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup normalizes code before matching.
func (t CouponTable) Lookup(code string) (string, decimal.Decimal, bool) {
	norm := NormalizeCode(code)
	f, ok := t[norm]
	return norm, f, ok
}
