package pricing

import (
	"sync"

	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/events"
	"go.uber.org/zap"
)

// Engine keeps the applied coupon and the last cart it was told about. Every
// recompute stages the totals before returning.
type Engine struct {
	mu          sync.Mutex
	table       CouponTable
	coupon      string
	lines       []domain.CartLine
	staging     *Staging
	bus         *events.Bus
	unsubscribe func()
	log         *zap.Logger
}

// NewEngine subscribes to cart changes on bus, which must carry []domain.CartLine.
func NewEngine(table CouponTable, staging *Staging, bus *events.Bus, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{table: table, staging: staging, bus: bus, log: log}
	e.unsubscribe = bus.Subscribe(events.TopicCartChanged, func(payload any) {
		lines, ok := payload.([]domain.CartLine)
		if !ok {
			e.log.Warn("unexpected cart.changed payload")
			return
		}
		e.mu.Lock()
		e.lines = domain.CloneLines(lines)
		e.mu.Unlock()
		e.Recompute()
	})
	return e
}

// Price computes totals for lines with the currently applied coupon.
func (e *Engine) Price(lines []domain.CartLine) domain.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeTotals(lines, e.coupon, e.table)
}

func (e *Engine) Totals() domain.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeTotals(e.lines, e.coupon, e.table)
}

func (e *Engine) AppliedCoupon() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coupon
}

// ApplyCoupon replaces the applied coupon. An unknown code leaves the state
// as it was and returns ErrInvalidCoupon.
func (e *Engine) ApplyCoupon(code string) (domain.Totals, error) {
	e.mu.Lock()
	norm, _, ok := e.table.Lookup(code)
	if !ok {
		e.mu.Unlock()
		return domain.Totals{}, domain.ErrInvalidCoupon
	}
	e.coupon = norm
	e.mu.Unlock()

	return e.Recompute(), nil
}

func (e *Engine) RemoveCoupon() domain.Totals {
	e.mu.Lock()
	e.coupon = ""
	e.mu.Unlock()
	return e.Recompute()
}

// Recompute prices the last known cart, stages the result and announces it.
func (e *Engine) Recompute() domain.Totals {
	e.mu.Lock()
	totals := ComputeTotals(e.lines, e.coupon, e.table)
	e.mu.Unlock()

	if err := e.staging.Write(totals); err != nil {
		e.log.Warn("failed to stage totals", zap.Error(err))
	}
	e.bus.Publish(events.TopicTotalsChanged, totals)
	return totals
}

// Reset drops the applied coupon and the staged totals after an order is placed.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.coupon = ""
	e.mu.Unlock()

	if err := e.staging.Clear(); err != nil {
		e.log.Warn("failed to clear staged totals", zap.Error(err))
	}
}

func (e *Engine) Close() {
	e.unsubscribe()
}
