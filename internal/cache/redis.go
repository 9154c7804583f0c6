package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	defaultKeyPrefix = "cart:"
	defaultBaseTTL   = 15 * time.Minute
	defaultJitter    = 5 * time.Minute
)

// cachedCart is the value stored per user. The uid is kept inside the value
// so an entry written under a recycled key is never served to someone else.
type cachedCart struct {
	UID      string       `json:"uid"`
	Items    []cachedLine `json:"items"`
	CachedAt time.Time    `json:"cachedAt"`
}

// cachedLine keeps prices as decimal strings so they survive exactly.
type cachedLine struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Img   string `json:"img,omitempty"`
	Qty   int    `json:"qty"`
}

type Option func(*RedisCache)

// WithTTL sets the base lifetime and the maximum random extra added to it.
func WithTTL(base, jitter time.Duration) Option {
	return func(r *RedisCache) {
		r.baseTTL = base
		r.jitter = jitter
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(r *RedisCache) { r.prefix = prefix }
}

// RedisCache works against a single node, a sentinel setup or a cluster.
type RedisCache struct {
	client  redis.UniversalClient
	prefix  string
	baseTTL time.Duration
	jitter  time.Duration
	now     func() time.Time
}

func NewRedisCache(client redis.UniversalClient, opts ...Option) *RedisCache {
	r := &RedisCache{
		client:  client,
		prefix:  defaultKeyPrefix,
		baseTTL: defaultBaseTTL,
		jitter:  defaultJitter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the cached lines for userID. An unreadable or foreign entry is
// evicted and reported as a miss so the caller falls back to the store.
func (r *RedisCache) Get(ctx context.Context, userID string) ([]domain.CartLine, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", userID, err)
	}

	var entry cachedCart
	if err := json.Unmarshal(raw, &entry); err != nil || entry.UID != userID {
		r.client.Unlink(ctx, r.key(userID))
		return nil, ErrCacheMiss
	}

	lines := make([]domain.CartLine, 0, len(entry.Items))
	for _, it := range entry.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			r.client.Unlink(ctx, r.key(userID))
			return nil, ErrCacheMiss
		}
		lines = append(lines, domain.CartLine{ProductID: it.ID, Name: it.Name, Price: price, ImageRef: it.Img, Qty: it.Qty})
	}
	return lines, nil
}

func (r *RedisCache) Set(ctx context.Context, userID string, lines []domain.CartLine) error {
	entry := cachedCart{UID: userID, Items: make([]cachedLine, 0, len(lines)), CachedAt: r.now().UTC()}
	for _, l := range lines {
		entry.Items = append(entry.Items, cachedLine{
			ID:    l.ProductID,
			Name:  l.Name,
			Price: l.Price.String(),
			Img:   l.ImageRef,
			Qty:   l.Qty,
		})
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cached cart: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), raw, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", userID, err)
	}
	return nil
}

// Delete drops the entry; deleting an absent key is not an error.
func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Unlink(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis unlink %s: %w", userID, err)
	}
	return nil
}

// ttl spreads expiries so carts cached together do not all expire together.
func (r *RedisCache) ttl() time.Duration {
	if r.jitter <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + rand.N(r.jitter)
}

func (r *RedisCache) key(userID string) string {
	return r.prefix + userID
}
