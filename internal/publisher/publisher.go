// Package publisher announces order lifecycle events to downstream consumers.
package publisher

import (
	"context"
	"time"

	"github.com/rosie073/shopfinalcross/internal/domain"
)

const (
	Topic = "order-events"

	EventOrderPlaced   = "order.placed"
	EventStatusChanged = "order.status_changed"
)

type Publisher interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
	StatusChanged(ctx context.Context, path string, status domain.OrderStatus) error
}

type orderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type orderPlacedPayload struct {
	OrderID       string      `json:"order_id"`
	Path          string      `json:"path"`
	UserID        string      `json:"user_id"`
	Email         string      `json:"email"`
	Items         []orderLine `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	Discount      float64     `json:"discount"`
	Total         float64     `json:"total"`
	Coupon        string      `json:"coupon,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

type statusChangedPayload struct {
	Path      string    `json:"path"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

func newOrderPlacedPayload(o domain.Order) orderPlacedPayload {
	items := make([]orderLine, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, orderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.InexactFloat64(),
			Quantity:  l.Qty,
		})
	}
	return orderPlacedPayload{
		OrderID:       o.ID,
		Path:          o.Path,
		UserID:        o.UserID,
		Email:         o.Email,
		Items:         items,
		Subtotal:      o.Subtotal.InexactFloat64(),
		Discount:      o.Discount.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		Coupon:        o.CouponCode,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

// Noop drops every event.
type Noop struct{}

func (Noop) OrderPlaced(context.Context, domain.Order) error { return nil }

func (Noop) StatusChanged(context.Context, string, domain.OrderStatus) error { return nil }
