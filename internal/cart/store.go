package cart

import (
	"context"
	"sync"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/events"
	"github.com/rosie073/shopfinalcross/internal/pricing"
	"go.uber.org/zap"
)

// ProductLookup resolves a product id against the catalog.
type ProductLookup interface {
	Get(ctx context.Context, id any) (domain.Product, error)
}

// BackendSelector returns the backend that owns the cart of u (nil: anonymous).
type BackendSelector interface {
	For(u *domain.User) Backend
}

type Pricer interface {
	Price(lines []domain.CartLine) domain.Totals
}

// Snapshot is the cart as seen at one instant, tied to the owner it was read for.
type Snapshot struct {
	Owner   string
	Lines   []domain.CartLine
	backend Backend
}

func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Store is the in-memory cart of one session. The mutex is held across the
// backend call, so an identity switch waits for the in-flight operation and
// that operation persists to the owner it started with. AddItem captures its
// owner before the catalog lookup and keeps writing to that owner even when
// the identity changes while the lookup runs.
type Store struct {
	mu      sync.Mutex
	owner   string
	backend Backend
	lines   []domain.CartLine

	backends BackendSelector
	catalog  ProductLookup
	pricer   Pricer
	bus      *events.Bus
	log      *zap.Logger
}

// NewStore starts anonymous with an empty cart; call SwitchIdentity to load.
func NewStore(backends BackendSelector, catalog ProductLookup, pricer Pricer, bus *events.Bus, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend:  backends.For(nil),
		lines:    []domain.CartLine{},
		backends: backends,
		catalog:  catalog,
		pricer:   pricer,
		bus:      bus,
		log:      log,
	}
}

// SwitchIdentity drops the in-memory cart and loads the cart of u. Nothing
// is merged and the previous backend is left as it was. A failed load
// leaves an empty cart.
func (s *Store) SwitchIdentity(ctx context.Context, u *domain.User) {
	s.mu.Lock()
	s.owner = ownerOf(u)
	s.backend = s.backends.For(u)

	lines, err := s.backend.Load(ctx)
	if err != nil {
		s.log.Warn("failed to load cart, starting empty", zap.String("owner", s.owner), zap.Error(err))
		lines = []domain.CartLine{}
	}
	s.lines = domain.CloneLines(lines)
	snapshot := domain.CloneLines(s.lines)
	s.mu.Unlock()

	s.publish(snapshot)
}

// AddItem adds qty of a catalog product, merging into an existing line.
func (s *Store) AddItem(ctx context.Context, productID any, qty int) error {
	if qty < 1 {
		return domain.NewValidationError("qty", "Quantity must be at least 1.")
	}

	s.mu.Lock()
	owner, backend := s.owner, s.backend
	s.mu.Unlock()

	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}
	id := domain.NormalizeID(product.ID)

	s.mu.Lock()
	if s.owner != owner {
		s.mu.Unlock()
		return s.addDetached(ctx, owner, backend, product, qty)
	}
	if i := s.indexOf(id); i >= 0 {
		s.lines[i].Qty += qty
	} else {
		s.lines = append(s.lines, domain.NewCartLine(product, qty))
	}
	return s.persistLocked(ctx)
}

// addDetached applies an add to a cart that is no longer the active one.
// Memory is left alone and nothing is published.
func (s *Store) addDetached(ctx context.Context, owner string, backend Backend, product domain.Product, qty int) error {
	lines, err := backend.Load(ctx)
	if err != nil {
		s.log.Warn("failed to load detached cart", zap.String("owner", owner), zap.Error(err))
		return err
	}
	lines = domain.CloneLines(lines)
	id := domain.NormalizeID(product.ID)
	merged := false
	for i := range lines {
		if domain.NormalizeID(lines[i].ProductID) == id {
			lines[i].Qty += qty
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, domain.NewCartLine(product, qty))
	}
	if err := backend.Save(ctx, lines); err != nil {
		s.log.Warn("failed to persist detached cart", zap.String("owner", owner), zap.Error(err))
		return err
	}
	return nil
}

// RemoveItem deletes a line; an absent line is not an error.
func (s *Store) RemoveItem(ctx context.Context, productID any) error {
	id := domain.NormalizeID(productID)

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	return s.persistLocked(ctx)
}

// UpdateQty sets a line's quantity; anything below 1 becomes 1.
func (s *Store) UpdateQty(ctx context.Context, productID any, qty int) error {
	if qty < 1 {
		qty = 1
	}
	id := domain.NormalizeID(productID)

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.lines[i].Qty = qty
	return s.persistLocked(ctx)
}

// persistLocked saves the current lines to the active backend, then releases
// the lock and announces the change. A failed save keeps memory as is.
func (s *Store) persistLocked(ctx context.Context) error {
	snapshot := domain.CloneLines(s.lines)
	owner := s.owner
	err := s.backend.Save(ctx, snapshot)
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("failed to persist cart", zap.String("owner", owner), zap.Error(err))
	}
	s.publish(snapshot)
	return err
}

func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneLines(s.lines)
}

// Count is the badge number: the sum of quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Qty
	}
	return n
}

func (s *Store) Totals() domain.Totals {
	lines := s.Lines()
	if s.pricer == nil {
		return pricing.ComputeTotals(lines, "", nil)
	}
	return s.pricer.Price(lines)
}

func (s *Store) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Owner: s.owner, Lines: domain.CloneLines(s.lines), backend: s.backend}
}

// Clear empties the cart of the snapshot's owner in its backend. Memory is
// cleared too when that owner is still the active one.
func (s *Store) Clear(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	backend := snap.backend
	if backend == nil {
		backend = s.backend
	}
	err := backend.Save(ctx, []domain.CartLine{})

	active := s.owner == snap.Owner
	if active {
		s.lines = []domain.CartLine{}
	}
	s.mu.Unlock()

	if active {
		s.publish([]domain.CartLine{})
	}
	return err
}

func (s *Store) indexOf(id string) int {
	for i, l := range s.lines {
		if domain.NormalizeID(l.ProductID) == id {
			return i
		}
	}
	return -1
}

func (s *Store) publish(lines []domain.CartLine) {
	if s.bus != nil {
		s.bus.Publish(events.TopicCartChanged, lines)
	}
}

func ownerOf(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.UID
}
