package identity

import (
	"context"
	"errors"

	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"go.uber.org/zap"
)

const usersCollection = "users"

// AdminChecker decides whether a user is an administrator: token claims
// first, then the role stored on the user's profile record.
type AdminChecker struct {
	store docstore.Store
	log   *zap.Logger
}

func NewAdminChecker(store docstore.Store, log *zap.Logger) *AdminChecker {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminChecker{store: store, log: log}
}

func (a *AdminChecker) IsAdministrator(ctx context.Context, u *domain.User) (bool, error) {
	if u == nil {
		return false, nil
	}
	if u.ClaimTrue("admin", "isAdmin") {
		return true, nil
	}
	if a.store == nil {
		return false, nil
	}

	doc, err := a.store.GetDocument(ctx, docstore.Ref{Collection: usersCollection, ID: u.UID})
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return false, nil
	case errors.Is(err, docstore.ErrPermissionDenied):
		a.log.Warn("user record not readable, using token claims only", zap.String("uid", u.UID))
		return false, nil
	case err != nil:
		return false, domain.NewBackendError("admin lookup", err)
	}

	return docstore.String(doc.Data, "role") == "admin" || docstore.Bool(doc.Data, "isAdmin"), nil
}
