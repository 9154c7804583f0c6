package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts any casing; an empty status reads as pending.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return OrderStatusPending, true
	}
	for _, st := range OrderStatuses {
		if string(st) == key {
			return st, true
		}
	}
	return "", false
}

// IsHistory reports whether the order is finished from the shopper's point of view.
func (s OrderStatus) IsHistory() bool {
	return s == OrderStatusDelivered || s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentMobileWallet   PaymentMethod = "gcash"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentCashOnDelivery:
		return PaymentCashOnDelivery, true
	case PaymentMobileWallet:
		return PaymentMobileWallet, true
	}
	return "", false
}

func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCashOnDelivery:
		return "Cash on Delivery"
	case PaymentMobileWallet:
		return "GCash"
	default:
		return "Unknown"
	}
}

type Billing struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Order struct {
	ID            string          `json:"id"`
	Path          string          `json:"path"`
	UserID        string          `json:"userId"`
	Items         []CartLine      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Billing       Billing         `json:"billing"`
	CouponCode    string          `json:"couponCode,omitempty"`
	Email         string          `json:"email"`
	Shipping      string          `json:"shipping"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt,omitempty"`
}

const FreeShipping = "Free"
