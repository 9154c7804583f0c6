package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Breaker wraps a Store in a circuit breaker. Not-found and permission-denied
// answers are successful round trips and never trip it.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
}

type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ConsecutiveFails uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "docstore",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          10 * time.Second,
		ConsecutiveFails: 5,
	}
}

func NewBreaker(next Store, st BreakerSettings, log *zap.Logger) *Breaker {
	if log == nil {
		log = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied) ||
				errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) GetCollection(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.GetCollection(ctx, collection, filters...)
	})
	docs, _ := v.([]Document)
	return docs, err
}

func (b *Breaker) GetDocument(ctx context.Context, ref Ref) (Document, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.GetDocument(ctx, ref)
	})
	doc, _ := v.(Document)
	return doc, err
}

func (b *Breaker) SetDocument(ctx context.Context, ref Ref, data map[string]any) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.SetDocument(ctx, ref, data)
	})
	return err
}

func (b *Breaker) AddDocument(ctx context.Context, collection string, data map[string]any) (string, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.AddDocument(ctx, collection, data)
	})
	id, _ := v.(string)
	return id, err
}

func (b *Breaker) UpdateDocument(ctx context.Context, ref Ref, partial map[string]any) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.UpdateDocument(ctx, ref, partial)
	})
	return err
}

func (b *Breaker) DeleteDocument(ctx context.Context, ref Ref) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.DeleteDocument(ctx, ref)
	})
	return err
}

func (b *Breaker) BatchWrite(ctx context.Context, writes []Write) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.BatchWrite(ctx, writes)
	})
	return err
}

// State exposes the breaker state for health reporting.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
