package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_ObserveCallsImmediately(t *testing.T) {
	s := NewSignal()
	s.Set(&domain.User{UID: "u1"})

	var seen []string
	s.Observe(func(u *domain.User) { seen = append(seen, uidOf(u)) })
	assert.Equal(t, []string{"u1"}, seen)
}

func TestSignal_NotifiesOnlyOnChange(t *testing.T) {
	s := NewSignal()
	var seen []string
	unsubscribe := s.Observe(func(u *domain.User) { seen = append(seen, uidOf(u)) })

	s.Set(&domain.User{UID: "u1"})
	s.Set(&domain.User{UID: "u1", Email: "refreshed@example.com"})
	s.Set(nil)
	unsubscribe()
	s.Set(&domain.User{UID: "u2"})

	assert.Equal(t, []string{"", "u1", ""}, seen)
	assert.Equal(t, "u2", s.Current().UID)
}

func TestAdminChecker_Claims(t *testing.T) {
	mem := docstore.NewMemory()
	checker := NewAdminChecker(mem, nil)

	ok, err := checker.IsAdministrator(context.Background(), &domain.User{UID: "a", Claims: map[string]any{"admin": true}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, mem.Calls("GetDocument"), "claims answer without a lookup")

	ok, err = checker.IsAdministrator(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminChecker_FallbackRecord(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	require.NoError(t, mem.SetDocument(ctx, docstore.Ref{Collection: "users", ID: "boss"}, map[string]any{"role": "admin"}))
	require.NoError(t, mem.SetDocument(ctx, docstore.Ref{Collection: "users", ID: "flag"}, map[string]any{"isAdmin": true}))
	require.NoError(t, mem.SetDocument(ctx, docstore.Ref{Collection: "users", ID: "shopper"}, map[string]any{"role": "customer"}))
	checker := NewAdminChecker(mem, nil)

	for uid, want := range map[string]bool{"boss": true, "flag": true, "shopper": false, "unknown": false} {
		ok, err := checker.IsAdministrator(ctx, &domain.User{UID: uid})
		require.NoError(t, err, uid)
		assert.Equal(t, want, ok, uid)
	}
}

func TestAdminChecker_PermissionDeniedDegrades(t *testing.T) {
	mem := docstore.NewMemory()
	mem.Deny("users")
	checker := NewAdminChecker(mem, nil)

	ok, err := checker.IsAdministrator(context.Background(), &domain.User{UID: "u1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminChecker_BackendFailure(t *testing.T) {
	mem := docstore.NewMemory()
	mem.FailOn("GetDocument", errors.New("unreachable"))
	checker := NewAdminChecker(mem, nil)

	_, err := checker.IsAdministrator(context.Background(), &domain.User{UID: "u1"})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestRequireAdmin(t *testing.T) {
	ctx := context.Background()
	id := New(NewAdminChecker(docstore.NewMemory(), nil))

	assert.ErrorIs(t, RequireAdmin(ctx, id, nil), domain.ErrUnauthenticated)
	assert.ErrorIs(t, RequireAdmin(ctx, id, &domain.User{UID: "u1"}), domain.ErrForbidden)
	assert.NoError(t, RequireAdmin(ctx, id, &domain.User{UID: "u1", Claims: map[string]any{"isAdmin": true}}))

	_, err := RequireUser(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
