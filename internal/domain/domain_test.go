package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{" 7 ", "7"},
		{7, "7"},
		{int64(12), "12"},
		{int32(3), "3"},
		{float64(5), "5"},
		{2.5, "2.5"},
		{"abc-123", "abc-123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeID(tt.in), "%#v", tt.in)
	}

	assert.True(t, SameID(1, "1"))
	assert.True(t, SameID(float64(1), int64(1)))
	assert.False(t, SameID(1, "01"))
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus(" Shipped ")
	require.True(t, ok)
	assert.Equal(t, OrderStatusShipped, st)

	st, ok = ParseOrderStatus("")
	require.True(t, ok)
	assert.Equal(t, OrderStatusPending, st)

	_, ok = ParseOrderStatus("lost")
	assert.False(t, ok)
}

func TestOrderStatus_IsHistory(t *testing.T) {
	history := map[OrderStatus]bool{
		OrderStatusPending:    false,
		OrderStatusProcessing: false,
		OrderStatusShipped:    false,
		OrderStatusDelivered:  true,
		OrderStatusCompleted:  true,
		OrderStatusCancelled:  true,
	}
	for _, st := range OrderStatuses {
		assert.Equal(t, history[st], st.IsHistory(), st.String())
	}
}

func TestPaymentMethod(t *testing.T) {
	p, ok := ParsePaymentMethod("GCash")
	require.True(t, ok)
	assert.Equal(t, "GCash", p.Label())

	p, ok = ParsePaymentMethod("cod")
	require.True(t, ok)
	assert.Equal(t, "Cash on Delivery", p.Label())

	_, ok = ParsePaymentMethod("card")
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError("name", "required")
	verr.Add("phone", "bad")

	var err error = verr
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "bad", verr.Message("phone"))
	assert.Empty(t, verr.Message("address"))
	assert.Equal(t, "validation failed: name: required; phone: bad", err.Error())
}

func TestForbiddenError(t *testing.T) {
	var err error = &ForbiddenError{Reason: "admin"}
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestBackendError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewBackendError("load cart", cause)

	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load cart: connection reset", err.Error())
}

func TestCartLine(t *testing.T) {
	p := Product{ID: "3", Name: "Classic Men Shirt", Price: decimal.NewFromInt(71), ImageRef: "img/arrival6.png"}
	line := NewCartLine(p, 3)

	assert.Equal(t, "3", line.ProductID)
	assert.True(t, decimal.NewFromInt(213).Equal(line.LineTotal()))

	lines := []CartLine{line}
	clone := CloneLines(lines)
	clone[0].Qty = 9
	assert.Equal(t, 3, lines[0].Qty)
	assert.NotNil(t, CloneLines(nil))
}

func TestUser_ClaimTrue(t *testing.T) {
	var anon *User
	assert.False(t, anon.ClaimTrue("admin"))

	u := &User{UID: "u1", Claims: map[string]any{"isAdmin": true, "admin": "yes"}}
	assert.True(t, u.ClaimTrue("admin", "isAdmin"))
	assert.False(t, u.ClaimTrue("admin"))
}
