// Package checkout turns a validated checkout form and the live cart into a
// placed order.
package checkout

import (
	"context"
	"time"

	"github.com/rosie073/shopfinalcross/internal/cart"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/identity"
	"github.com/rosie073/shopfinalcross/internal/pricing"
	"go.uber.org/zap"
)

type CartSource interface {
	Snapshot() cart.Snapshot
	Clear(ctx context.Context, snap cart.Snapshot) error
}

type Pricer interface {
	Price(lines []domain.CartLine) domain.Totals
	Reset()
}

type OrderCreator interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
}

type OrderPublisher interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}

// Confirmation is what the shopper sees after a successful order.
type Confirmation struct {
	OrderID       string               `json:"orderId"`
	Path          string               `json:"path"`
	Billing       domain.Billing       `json:"billing"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	PaymentLabel  string               `json:"paymentLabel"`
	Totals        domain.Totals        `json:"totals"`
}

type Orchestrator struct {
	auth      identity.Authority
	cart      CartSource
	pricer    Pricer
	orders    OrderCreator
	publisher OrderPublisher
	staging   *pricing.Staging
	now       func() time.Time
	log       *zap.Logger
}

func NewOrchestrator(
	auth identity.Authority,
	cartSource CartSource,
	pricer Pricer,
	orders OrderCreator,
	publisher OrderPublisher,
	staging *pricing.Staging,
	log *zap.Logger,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		auth:      auth,
		cart:      cartSource,
		pricer:    pricer,
		orders:    orders,
		publisher: publisher,
		staging:   staging,
		now:       time.Now,
		log:       log,
	}
}

// PlaceOrder runs the checkout gates in order (administrator, signed in,
// form, non-empty cart) and writes nothing unless all pass. Totals are
// recomputed from the live cart, never taken from the staged summary.
func (o *Orchestrator) PlaceOrder(ctx context.Context, actor *domain.User, form Form) (Confirmation, error) {
	if actor != nil {
		isAdmin, err := o.auth.IsAdministrator(ctx, actor)
		if err != nil {
			return Confirmation{}, err
		}
		if isAdmin {
			return Confirmation{}, &domain.ForbiddenError{Reason: "admin"}
		}
	}
	if _, err := identity.RequireUser(actor); err != nil {
		return Confirmation{}, err
	}

	billing, payment, err := form.Validate()
	if err != nil {
		return Confirmation{}, err
	}

	snap := o.cart.Snapshot()
	if snap.Empty() {
		return Confirmation{}, domain.ErrEmptyCart
	}

	totals := o.pricer.Price(snap.Lines)
	order, err := o.orders.Create(ctx, domain.Order{
		UserID:        actor.UID,
		Email:         actor.Email,
		Items:         snap.Lines,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Total:         totals.Total,
		Status:        domain.OrderStatusPending,
		PaymentMethod: payment,
		Billing:       billing,
		CouponCode:    totals.CouponCode,
		Shipping:      domain.FreeShipping,
		CreatedAt:     o.now().UTC(),
	})
	if err != nil {
		o.log.Warn("order create failed, cart kept", zap.String("uid", actor.UID), zap.Error(err))
		return Confirmation{}, err
	}

	if err := o.cart.Clear(ctx, snap); err != nil {
		o.log.Error("order placed but cart clear failed",
			zap.String("order_id", order.ID),
			zap.String("uid", actor.UID),
			zap.Error(err))
	}
	o.pricer.Reset()

	if err := o.publisher.OrderPlaced(ctx, order); err != nil {
		o.log.Warn("failed to publish order placed", zap.String("order_id", order.ID), zap.Error(err))
	}

	o.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("uid", actor.UID),
		zap.String("total", totals.Total.StringFixed(2)))

	return Confirmation{
		OrderID:       order.ID,
		Path:          order.Path,
		Billing:       billing,
		PaymentMethod: payment,
		PaymentLabel:  payment.Label(),
		Totals:        totals,
	}, nil
}

// Summary returns the totals staged by the cart view for the checkout page.
func (o *Orchestrator) Summary() (domain.Totals, error) {
	return o.staging.Read()
}
