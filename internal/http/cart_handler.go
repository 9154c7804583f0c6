package http

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/storefront"
)

type CartHandler struct {
	timeout time.Duration
}

func NewCartHandler(timeout time.Duration) *CartHandler {
	return &CartHandler{timeout: timeout}
}

// AddItemRequestDTO accepts numeric seed ids and string remote ids alike.
type AddItemRequestDTO struct {
	ProductID any `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// UpdateQuantityRequestDTO takes whatever the quantity input held; see coerceQty.
type UpdateQuantityRequestDTO struct {
	Quantity any `json:"quantity"`
}

// coerceQty turns a raw quantity into a whole number of at least 1. Fractions,
// non-numeric text and missing values all become 1.
func coerceQty(v any) int {
	switch q := v.(type) {
	case float64:
		if q >= 1 && q <= math.MaxInt32 && q == math.Trunc(q) {
			return int(q)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

type CouponRequestDTO struct {
	Code string `json:"code"`
}

type CartResponseDTO struct {
	Owner  string            `json:"owner,omitempty"`
	Items  []domain.CartLine `json:"items"`
	Count  int               `json:"count"`
	Totals domain.Totals     `json:"totals"`
}

func cartResponse(s *storefront.Session) CartResponseDTO {
	return CartResponseDTO{
		Owner:  s.Cart.Owner(),
		Items:  s.Cart.Lines(),
		Count:  s.Cart.Count(),
		Totals: s.Cart.Totals(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(sessionFromContext(r.Context())))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if domain.NormalizeID(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	s := sessionFromContext(ctx)
	if err := s.Cart.AddItem(ctx, req.ProductID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cartResponse(s))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := sessionFromContext(ctx)
	if err := s.Cart.UpdateQty(ctx, chi.URLParam(r, "product_id"), coerceQty(req.Quantity)); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(ctx)
	if err := s.Cart.RemoveItem(ctx, chi.URLParam(r, "product_id")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	totals, err := sessionFromContext(r.Context()).Pricing.ApplyCoupon(req.Code)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sessionFromContext(r.Context()).Pricing.RemoveCoupon())
}
