package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/orders"
)

type OrdersHandler struct {
	timeout time.Duration
}

func NewOrdersHandler(timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{timeout: timeout}
}

type OrdersResponseDTO struct {
	Active  []domain.Order `json:"active"`
	History []domain.Order `json:"history"`
}

type StatusRequestDTO struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

type StatusResponseDTO struct {
	Path   string             `json:"path"`
	Status domain.OrderStatus `json:"status"`
}

// ListOrders returns the caller's orders split into active and history.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(ctx)
	list, err := s.Orders.ListForUser(ctx, s.User())
	if err != nil {
		handleError(w, err)
		return
	}

	active, history := orders.Partition(list)
	respondJSON(w, http.StatusOK, OrdersResponseDTO{Active: nonNil(active), History: nonNil(history)})
}

func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(ctx)
	list, err := s.Orders.ListAll(ctx, s.User())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// SetStatus takes the order path in the body since it contains slashes.
func (h *OrdersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req StatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := sessionFromContext(ctx)
	status, err := s.Orders.SetStatus(ctx, s.User(), req.Path, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, StatusResponseDTO{Path: req.Path, Status: status})
}

func nonNil(list []domain.Order) []domain.Order {
	if list == nil {
		return []domain.Order{}
	}
	return list
}
