// Package storefront assembles the per-session object graph: identity, event
// bus, cart, pricing, checkout and order views.
package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/rosie073/shopfinalcross/internal/blobstore"
	"github.com/rosie073/shopfinalcross/internal/cache"
	"github.com/rosie073/shopfinalcross/internal/cart"
	"github.com/rosie073/shopfinalcross/internal/catalog"
	"github.com/rosie073/shopfinalcross/internal/checkout"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/events"
	"github.com/rosie073/shopfinalcross/internal/identity"
	"github.com/rosie073/shopfinalcross/internal/localstore"
	"github.com/rosie073/shopfinalcross/internal/orders"
	"github.com/rosie073/shopfinalcross/internal/pricing"
	"github.com/rosie073/shopfinalcross/internal/publisher"
	"go.uber.org/zap"
)

// switchTimeout bounds the cart reload that follows a sign-in or sign-out.
const switchTimeout = 10 * time.Second

// Deps are the process-wide stores every session is built over.
type Deps struct {
	Docs      docstore.Store
	Local     localstore.Store
	CartCache cache.CartCache
	Blobs     blobstore.Store
	Publisher publisher.Publisher
	Coupons   pricing.CouponTable
	Log       *zap.Logger
}

// withDefaults fills missing stores with in-memory ones, so a zero Deps
// yields a working single-process storefront.
func (d Deps) withDefaults() Deps {
	if d.Docs == nil {
		d.Docs = docstore.NewMemory()
	}
	if d.Local == nil {
		d.Local = localstore.NewMemory()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Publisher == nil {
		d.Publisher = publisher.Noop{}
	}
	if d.Coupons == nil {
		d.Coupons = pricing.DefaultCoupons()
	}
	if d.Blobs == nil {
		d.Blobs = blobstore.NewMemory("")
	}
	return d
}

// Session is one shopper's view of the store. Callers serialize the actions
// of a session with Lock and Unlock.
type Session struct {
	sync.Mutex

	ID       string
	Identity *identity.Identity
	Bus      *events.Bus
	Cart     *cart.Store
	Pricing  *pricing.Engine
	Checkout *checkout.Orchestrator
	Orders   *orders.Service

	unobserve func()
	closeOnce sync.Once
	log       *zap.Logger
}

func newSession(id string, deps Deps, products *catalog.Cache, orderRepo *orders.Repository, checker *identity.AdminChecker) *Session {
	log := deps.Log.With(zap.String("session", id))

	bus := events.NewBus(log)
	local := localstore.NewPrefixed(deps.Local, id)
	staging := pricing.NewStaging(local)
	engine := pricing.NewEngine(deps.Coupons, staging, bus, log)
	store := cart.NewStore(cart.NewBackends(local, deps.Docs, deps.CartCache, log), products, engine, bus, log)
	ident := identity.New(checker)

	s := &Session{
		ID:       id,
		Identity: ident,
		Bus:      bus,
		Cart:     store,
		Pricing:  engine,
		Checkout: checkout.NewOrchestrator(ident, store, engine, orderRepo, deps.Publisher, staging, log),
		Orders:   orders.NewService(orderRepo, ident, deps.Publisher, log),
		log:      log,
	}

	s.unobserve = ident.Observe(func(u *domain.User) {
		ctx, cancel := context.WithTimeout(context.Background(), switchTimeout)
		defer cancel()
		store.SwitchIdentity(ctx, u)
		bus.Publish(events.TopicIdentityChanged, u)
	})
	return s
}

// User is the signed-in shopper, or nil.
func (s *Session) User() *domain.User {
	return s.Identity.Current()
}

// SetUser records the identity for this session. The cart is reloaded only
// when the uid actually changes.
func (s *Session) SetUser(u *domain.User) {
	s.Identity.Set(u)
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.unobserve()
		s.Pricing.Close()
		s.log.Debug("session closed")
	})
}
