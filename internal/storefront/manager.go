package storefront

import (
	"sync"
	"time"

	"github.com/rosie073/shopfinalcross/internal/catalog"
	"github.com/rosie073/shopfinalcross/internal/identity"
	"github.com/rosie073/shopfinalcross/internal/orders"
	"go.uber.org/zap"
)

const (
	// DefaultIdleTTL is how long an untouched session is kept.
	DefaultIdleTTL = 30 * time.Minute

	// DefaultSweepInterval is how often idle sessions are evicted.
	DefaultSweepInterval = time.Minute
)

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Manager owns the live sessions plus the parts shared between them: the
// catalog cache, the order repository and the product back-office.
type Manager struct {
	deps     Deps
	catalog  *catalog.Cache
	admin    *catalog.Admin
	checker  *identity.AdminChecker
	orders   *orders.Repository
	idleTTL  time.Duration
	now      func() time.Time
	log      *zap.Logger
	mu       sync.Mutex
	sessions map[string]*entry

	stopSweep chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager starts the idle-session sweeper; call Close to stop it.
func NewManager(deps Deps, idleTTL, sweepInterval time.Duration) *Manager {
	deps = deps.withDefaults()
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	repo := catalog.NewRepository(deps.Docs)
	products := catalog.NewCache(repo, deps.Log)
	checker := identity.NewAdminChecker(deps.Docs, deps.Log)

	m := &Manager{
		deps:      deps,
		catalog:   products,
		admin:     catalog.NewAdmin(repo, products, deps.Blobs, checker, deps.Log),
		checker:   checker,
		orders:    orders.NewRepository(deps.Docs, deps.Log),
		idleTTL:   idleTTL,
		now:       time.Now,
		log:       deps.Log,
		sessions:  make(map[string]*entry),
		stopSweep: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop(sweepInterval)

	return m
}

func (m *Manager) Catalog() *catalog.Cache {
	return m.catalog
}

func (m *Manager) Admin() *catalog.Admin {
	return m.admin
}

// Session returns the session for id, creating it on first use.
func (m *Manager) Session(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		e.lastUsed = m.now()
		return e.session
	}

	s := newSession(id, m.deps, m.catalog, m.orders, m.checker)
	m.sessions[id] = &entry{session: s, lastUsed: m.now()}
	m.log.Debug("session created", zap.String("session", id))
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopSweep:
			return
		}
	}
}

// evictIdle closes every session not used within the idle TTL.
func (m *Manager) evictIdle() {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.log.Info("evicted idle sessions", zap.Int("count", len(idle)))
	}
}

// Close stops the sweeper and closes every live session.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopSweep)
		m.wg.Wait()

		m.mu.Lock()
		live := m.sessions
		m.sessions = make(map[string]*entry)
		m.mu.Unlock()

		for _, e := range live {
			e.session.Close()
		}
	})
	return nil
}
