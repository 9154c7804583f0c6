package domain

import "github.com/shopspring/decimal"

// CartLine is a snapshot of a product taken when it was added to the cart.
type CartLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageRef  string          `json:"img"`
	Qty       int             `json:"qty"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

func NewCartLine(p Product, qty int) CartLine {
	return CartLine{
		ProductID: NormalizeID(p.ID),
		Name:      p.Name,
		Price:     p.Price,
		ImageRef:  p.ImageRef,
		Qty:       qty,
	}
}

// CloneLines copies a cart so callers cannot mutate the store's memory.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return []CartLine{}
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	CouponCode string          `json:"couponCode,omitempty"`
}
