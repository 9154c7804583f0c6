package orders

import (
	"context"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/identity"
	"go.uber.org/zap"
)

// StatusNotifier is told about every successful status change.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, path string, status domain.OrderStatus) error
}

// Service puts the actor checks in front of Repository.
type Service struct {
	repo     *Repository
	auth     identity.Authority
	notifier StatusNotifier
	log      *zap.Logger
}

func NewService(repo *Repository, auth identity.Authority, notifier StatusNotifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, auth: auth, notifier: notifier, log: log}
}

// ListForUser lists the actor's own orders. A store outage reads as no orders.
func (s *Service) ListForUser(ctx context.Context, actor *domain.User) ([]domain.Order, error) {
	u, err := identity.RequireUser(actor)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListForUser(ctx, u.UID)
	if err != nil {
		s.log.Warn("failed to load orders", zap.String("uid", u.UID), zap.Error(err))
		return []domain.Order{}, nil
	}
	return orders, nil
}

// ListAll is the back-office listing; failures are returned so the operator can retry.
func (s *Service) ListAll(ctx context.Context, actor *domain.User) ([]domain.Order, error) {
	if err := identity.RequireAdmin(ctx, s.auth, actor); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

func (s *Service) SetStatus(ctx context.Context, actor *domain.User, path, status string) (domain.OrderStatus, error) {
	if err := identity.RequireAdmin(ctx, s.auth, actor); err != nil {
		return "", err
	}
	st, err := s.repo.SetStatus(ctx, path, status)
	if err != nil {
		return "", err
	}

	s.log.Info("order status updated",
		zap.String("path", path),
		zap.String("status", st.String()),
		zap.String("uid", actor.UID))

	if s.notifier != nil {
		if err := s.notifier.StatusChanged(ctx, path, st); err != nil {
			s.log.Warn("failed to publish status change", zap.String("path", path), zap.Error(err))
		}
	}
	return st, nil
}

// Partition splits orders into in-progress ones and finished ones, keeping order.
func Partition(orders []domain.Order) (active, history []domain.Order) {
	active = make([]domain.Order, 0, len(orders))
	history = make([]domain.Order, 0)
	for _, o := range orders {
		if o.Status.IsHistory() {
			history = append(history, o)
		} else {
			active = append(active, o)
		}
	}
	return active, history
}
