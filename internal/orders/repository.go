// Package orders stores placed orders and serves the shopper and back-office
// order views.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"go.uber.org/zap"
)

const (
	ordersCollection = "orders"
	usersCollection  = "users"
)

// legacyCollection is where orders were kept before the top-level collection existed.
func legacyCollection(uid string) string {
	return usersCollection + "/" + uid + "/orders"
}

// Repository reads orders from the top-level collection and from the legacy
// per-user sub-collections.
type Repository struct {
	store docstore.Store
	now   func() time.Time
	log   *zap.Logger
}

func NewRepository(store docstore.Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: store, now: time.Now, log: log}
}

// Create stores a new order in the top-level collection and returns it with
// its generated id and path.
func (r *Repository) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now().UTC()
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if o.Shipping == "" {
		o.Shipping = domain.FreeShipping
	}

	id, err := r.store.AddDocument(ctx, ordersCollection, encodeOrder(o))
	if err != nil {
		return domain.Order{}, domain.NewBackendError("create order", err)
	}
	o.ID = id
	o.Path = docstore.Ref{Collection: ordersCollection, ID: id}.Path()
	return o, nil
}

// ListForUser returns the user's orders from both locations, newest first.
func (r *Repository) ListForUser(ctx context.Context, uid string) ([]domain.Order, error) {
	top, err := r.store.GetCollection(ctx, ordersCollection, docstore.Where("userId", uid))
	if err != nil {
		return nil, domain.NewBackendError("list orders", err)
	}

	orders := decodeAll(ordersCollection, "", top)
	orders = append(orders, r.legacyOrders(ctx, uid)...)
	return mergeOrders(orders), nil
}

// ListAll returns every order of every user, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	top, err := r.store.GetCollection(ctx, ordersCollection)
	if err != nil {
		return nil, domain.NewBackendError("list orders", err)
	}
	orders := decodeAll(ordersCollection, "", top)

	users, err := r.store.GetCollection(ctx, usersCollection)
	if err != nil {
		r.log.Warn("failed to enumerate users, skipping legacy orders", zap.Error(err))
	} else {
		for _, u := range users {
			orders = append(orders, r.legacyOrders(ctx, u.ID)...)
		}
	}
	return mergeOrders(orders), nil
}

func (r *Repository) legacyOrders(ctx context.Context, uid string) []domain.Order {
	collection := legacyCollection(uid)
	docs, err := r.store.GetCollection(ctx, collection)
	if err != nil {
		r.log.Warn("failed to read legacy orders", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	return decodeAll(collection, uid, docs)
}

// SetStatus changes the status of the order stored at path and stamps updatedAt.
// Any status may follow any other.
func (r *Repository) SetStatus(ctx context.Context, path string, status string) (domain.OrderStatus, error) {
	ref, ok := parseOrderRef(path)
	if !ok {
		return "", domain.NewValidationError("path", "Unknown order location.")
	}
	st, ok := domain.ParseOrderStatus(status)
	if !ok || strings.TrimSpace(status) == "" {
		return "", domain.NewValidationError("status", fmt.Sprintf("Unknown order status %q.", status))
	}

	err := r.store.UpdateDocument(ctx, ref, map[string]any{
		"status":    string(st),
		"updatedAt": r.now().UTC(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", domain.NewBackendError("update order status", err)
	}
	return st, nil
}

// parseOrderRef accepts orders/<id> and users/<uid>/orders/<id> only.
func parseOrderRef(path string) (docstore.Ref, bool) {
	ref, ok := docstore.ParseRef(path)
	if !ok {
		return docstore.Ref{}, false
	}
	if ref.Collection == ordersCollection {
		return ref, true
	}
	parts := strings.Split(ref.Collection, "/")
	if len(parts) == 3 && parts[0] == usersCollection && parts[1] != "" && parts[2] == "orders" {
		return ref, true
	}
	return docstore.Ref{}, false
}

// mergeOrders drops legacy copies of orders that also exist at the top level
// and sorts newest first.
func mergeOrders(orders []domain.Order) []domain.Order {
	seen := make(map[string]bool, len(orders))
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !strings.HasPrefix(o.Path, ordersCollection+"/") {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	for _, o := range orders {
		if strings.HasPrefix(o.Path, ordersCollection+"/") || seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
