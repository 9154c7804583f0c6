package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rosie073/shopfinalcross/internal/checkout"
)

type CheckoutHandler struct {
	timeout time.Duration
}

func NewCheckoutHandler(timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout}
}

// Summary returns the totals staged by the cart page.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	totals, err := sessionFromContext(r.Context()).Checkout.Summary()
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := sessionFromContext(ctx)
	conf, err := s.Checkout.PlaceOrder(ctx, s.User(), form)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, conf)
}
