package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/rosie073/shopfinalcross/internal/checkout"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/events"
	"github.com/rosie073/shopfinalcross/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func validForm() checkout.Form {
	return checkout.Form{Name: "Juan Dela Cruz", Phone: "09171234567", Address: "123 Mabini St, Manila", Payment: "cod"}
}

func newTestManager(t *testing.T) (*Manager, *docstore.Memory, *localstore.Memory) {
	t.Helper()
	docs := docstore.NewMemory()
	local := localstore.NewMemory()
	m := NewManager(Deps{Docs: docs, Local: local}, time.Minute, time.Hour)
	t.Cleanup(func() { _ = m.Close() })
	return m, docs, local
}

func TestManager_SessionIsCreatedOnceAndReused(t *testing.T) {
	m, _, _ := newTestManager(t)

	a := m.Session("s1")
	b := m.Session("s1")
	c := m.Session("s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
}

func TestSession_AnonymousCartsAreIsolated(t *testing.T) {
	m, _, local := newTestManager(t)
	ctx := context.Background()

	s1 := m.Session("s1")
	s2 := m.Session("s2")
	require.NoError(t, s1.Cart.AddItem(ctx, 1, 2))

	assert.Equal(t, 2, s1.Cart.Count())
	assert.Equal(t, 0, s2.Cart.Count())
	assert.Contains(t, local.Keys(), "s1:chuchu_cart")
}

func TestSession_SignInSwitchesToRemoteCart(t *testing.T) {
	m, docs, local := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, docs.SetDocument(ctx, docstore.Ref{Collection: "carts", ID: "u1"}, map[string]any{
		"items": []any{map[string]any{"id": "5", "name": "Tank Top", "price": 78.0, "img": "img/fea1.png", "qty": 3}},
	}))

	s := m.Session("s1")
	require.NoError(t, s.Cart.AddItem(ctx, 1, 1))
	require.NoError(t, s.Cart.AddItem(ctx, 2, 1))
	localBefore, _, _ := local.Get("s1:chuchu_cart")

	var seen []*domain.User
	s.Bus.Subscribe(events.TopicIdentityChanged, func(payload any) {
		u, _ := payload.(*domain.User)
		seen = append(seen, u)
	})

	s.SetUser(&domain.User{UID: "u1", Email: "u1@gmail.com"})

	lines := s.Cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "5", lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Qty)
	assert.Equal(t, "u1", s.Cart.Owner())

	localAfter, _, _ := local.Get("s1:chuchu_cart")
	assert.Equal(t, localBefore, localAfter)

	require.Len(t, seen, 1)
	assert.Equal(t, "u1", seen[0].UID)

	// Same uid again does not reload.
	s.SetUser(&domain.User{UID: "u1", Email: "u1@gmail.com"})
	assert.Len(t, seen, 1)

	s.SetUser(nil)
	assert.Equal(t, 2, s.Cart.Count())
	assert.Nil(t, s.User())
}

func TestSession_CheckoutEndToEnd(t *testing.T) {
	m, docs, _ := newTestManager(t)
	ctx := context.Background()

	s := m.Session("s1")
	user := &domain.User{UID: "u1", Email: "u1@gmail.com"}
	s.SetUser(user)
	require.NoError(t, s.Cart.AddItem(ctx, 4, 1))

	conf, err := s.Checkout.PlaceOrder(ctx, user, validForm())
	require.NoError(t, err)
	assert.NotEmpty(t, conf.OrderID)
	assert.Equal(t, 0, s.Cart.Count())

	list, err := s.Orders.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, conf.OrderID, list[0].ID)
	assert.Equal(t, 1, docs.Calls("AddDocument"))
}

func TestManager_ZeroDepsFallBackToMemory(t *testing.T) {
	m := NewManager(Deps{}, time.Minute, time.Hour)
	t.Cleanup(func() { _ = m.Close() })
	ctx := context.Background()

	s := m.Session("s1")
	require.NoError(t, s.Cart.AddItem(ctx, 1, 1))
	assert.Equal(t, 1, s.Cart.Count())

	s.SetUser(&domain.User{UID: "u1", Email: "u1@gmail.com"})
	require.NoError(t, s.Cart.AddItem(ctx, 2, 2))
	assert.Equal(t, 2, s.Cart.Count())
}

func TestManager_EvictsIdleSessions(t *testing.T) {
	m, _, _ := newTestManager(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Session("old")
	now = now.Add(50 * time.Second)
	m.Session("fresh")
	now = now.Add(30 * time.Second)

	m.evictIdle()

	assert.Equal(t, 1, m.Len())
	m.mu.Lock()
	_, kept := m.sessions["fresh"]
	m.mu.Unlock()
	assert.True(t, kept)
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	s := m.Session("s1")

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
	assert.NotPanics(t, s.Close)
}
