package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/localstore"
	"github.com/shopspring/decimal"
)

const StagingKey = "checkout_data"

type stagedTotals struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	AppliedCoupon *string `json:"appliedCoupon"`
}

// Staging hands the latest totals from the cart view to the checkout view.
type Staging struct {
	store localstore.Store
}

func NewStaging(store localstore.Store) *Staging {
	return &Staging{store: store}
}

func (s *Staging) Write(t domain.Totals) error {
	staged := stagedTotals{
		Subtotal: t.Subtotal.InexactFloat64(),
		Discount: t.Discount.InexactFloat64(),
		Total:    t.Total.InexactFloat64(),
	}
	if t.CouponCode != "" {
		code := t.CouponCode
		staged.AppliedCoupon = &code
	}

	raw, err := json.Marshal(staged)
	if err != nil {
		return fmt.Errorf("marshal staged totals: %w", err)
	}
	if err := s.store.Set(StagingKey, string(raw)); err != nil {
		return fmt.Errorf("failed to stage totals: %w", err)
	}
	return nil
}

// Read returns zero totals when nothing usable is staged.
func (s *Staging) Read() (domain.Totals, error) {
	zero := domain.Totals{Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}

	raw, ok, err := s.store.Get(StagingKey)
	if err != nil {
		return zero, fmt.Errorf("failed to read staged totals: %w", err)
	}
	if !ok {
		return zero, nil
	}

	var staged stagedTotals
	if err := json.Unmarshal([]byte(raw), &staged); err != nil {
		return zero, nil
	}

	t := domain.Totals{
		Subtotal: decimal.NewFromFloat(staged.Subtotal),
		Discount: decimal.NewFromFloat(staged.Discount),
		Total:    decimal.NewFromFloat(staged.Total),
	}
	if staged.AppliedCoupon != nil {
		t.CouponCode = *staged.AppliedCoupon
	}
	return t, nil
}

func (s *Staging) Clear() error {
	if err := s.store.Remove(StagingKey); err != nil {
		return fmt.Errorf("failed to clear staged totals: %w", err)
	}
	return nil
}
