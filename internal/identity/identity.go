package identity

import (
	"context"

	"github.com/rosie073/shopfinalcross/internal/domain"
)

// Authority answers whether a user may use the back-office.
type Authority interface {
	IsAdministrator(ctx context.Context, u *domain.User) (bool, error)
}

// Provider is what the cart, checkout and order views consume.
type Provider interface {
	Authority
	Current() *domain.User
	Observe(fn func(*domain.User)) func()
}

// Identity is the per-session Provider: a Signal plus an AdminChecker.
type Identity struct {
	*Signal
	*AdminChecker
}

func New(checker *AdminChecker) *Identity {
	return &Identity{Signal: NewSignal(), AdminChecker: checker}
}

func RequireUser(u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// RequireAdmin fails with ErrUnauthenticated for anonymous actors and a
// ForbiddenError for signed-in non-administrators.
func RequireAdmin(ctx context.Context, a Authority, u *domain.User) error {
	if u == nil {
		return domain.ErrUnauthenticated
	}
	ok, err := a.IsAdministrator(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ForbiddenError{Reason: "administrator access required"}
	}
	return nil
}
