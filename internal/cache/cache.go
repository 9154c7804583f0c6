// Package cache holds the read-through cache in front of remote cart documents.
package cache

import (
	"context"
	"errors"

	"github.com/rosie073/shopfinalcross/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) ([]domain.CartLine, error)
	Set(ctx context.Context, userID string, lines []domain.CartLine) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never hits; used when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]domain.CartLine, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(context.Context, string, []domain.CartLine) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }
