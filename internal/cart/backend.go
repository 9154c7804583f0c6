// Package cart holds the shopper's cart and persists it to local storage or to
// the signed-in user's remote cart document.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rosie073/shopfinalcross/internal/cache"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/localstore"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	LocalCartKey    = "chuchu_cart"
	cartsCollection = "carts"
)

// Backend is where a cart is loaded from and saved to.
type Backend interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

type LocalBackend struct {
	store localstore.Store
	log   *zap.Logger
}

func NewLocalBackend(store localstore.Store, log *zap.Logger) *LocalBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalBackend{store: store, log: log}
}

// Load reads the stored cart; unreadable JSON counts as an empty cart.
func (b *LocalBackend) Load(_ context.Context) ([]domain.CartLine, error) {
	raw, ok, err := b.store.Get(LocalCartKey)
	if err != nil {
		return nil, domain.NewBackendError("load local cart", err)
	}
	if !ok {
		return []domain.CartLine{}, nil
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		b.log.Warn("discarding unreadable local cart", zap.Error(err))
		return []domain.CartLine{}, nil
	}
	return decodeLines(records), nil
}

func (b *LocalBackend) Save(_ context.Context, lines []domain.CartLine) error {
	raw, err := json.Marshal(encodeLines(lines))
	if err != nil {
		return fmt.Errorf("marshal local cart: %w", err)
	}
	if err := b.store.Set(LocalCartKey, string(raw)); err != nil {
		return domain.NewBackendError("save local cart", err)
	}
	return nil
}

// RemoteBackend keeps the cart in carts/<uid> behind a read-through cache.
type RemoteBackend struct {
	uid   string
	docs  docstore.Store
	cache cache.CartCache
	sfg   *singleflight.Group
	now   func() time.Time
	log   *zap.Logger
}

func (b *RemoteBackend) ref() docstore.Ref {
	return docstore.Ref{Collection: cartsCollection, ID: b.uid}
}

func (b *RemoteBackend) Load(ctx context.Context) ([]domain.CartLine, error) {
	v, err, _ := b.sfg.Do(b.uid, func() (interface{}, error) {
		lines, err := b.cache.Get(ctx, b.uid)
		if err == nil {
			return lines, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			b.log.Warn("cart cache get failed", zap.String("uid", b.uid), zap.Error(err))
		}

		doc, err := b.docs.GetDocument(ctx, b.ref())
		if errors.Is(err, docstore.ErrNotFound) {
			return []domain.CartLine{}, nil
		}
		if err != nil {
			return nil, domain.NewBackendError("load remote cart", err)
		}

		lines = decodeLines(docstore.Maps(doc.Data, "items"))
		if errSet := b.cache.Set(ctx, b.uid, lines); errSet != nil {
			b.log.Warn("cart cache set failed", zap.String("uid", b.uid), zap.Error(errSet))
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.CloneLines(v.([]domain.CartLine)), nil
}

func (b *RemoteBackend) Save(ctx context.Context, lines []domain.CartLine) error {
	err := b.docs.SetDocument(ctx, b.ref(), map[string]any{
		"items":     encodeLines(lines),
		"updatedAt": b.now().UTC(),
	})
	if err != nil {
		return domain.NewBackendError("save remote cart", err)
	}

	b.invalidate()
	return nil
}

func (b *RemoteBackend) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.cache.Delete(ctx, b.uid); err != nil {
		b.log.Warn("cart cache invalidate failed", zap.String("uid", b.uid), zap.Error(err))
	}
}

// Backends picks the backend for an identity: local storage when anonymous,
// the user's remote cart otherwise.
type Backends struct {
	local *LocalBackend
	docs  docstore.Store
	cache cache.CartCache
	sfg   singleflight.Group
	now   func() time.Time
	log   *zap.Logger
}

func NewBackends(local localstore.Store, docs docstore.Store, cartCache cache.CartCache, log *zap.Logger) *Backends {
	if log == nil {
		log = zap.NewNop()
	}
	if cartCache == nil {
		cartCache = cache.Noop{}
	}
	return &Backends{
		local: NewLocalBackend(local, log),
		docs:  docs,
		cache: cartCache,
		now:   time.Now,
		log:   log,
	}
}

func (f *Backends) For(u *domain.User) Backend {
	if u == nil {
		return f.local
	}
	return &RemoteBackend{
		uid:   u.UID,
		docs:  f.docs,
		cache: f.cache,
		sfg:   &f.sfg,
		now:   f.now,
		log:   f.log,
	}
}
