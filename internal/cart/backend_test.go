package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rosie073/shopfinalcross/internal/cache"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/localstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBackend_CorruptJSONLoadsEmpty(t *testing.T) {
	local := localstore.NewMemory()
	require.NoError(t, local.Set(LocalCartKey, "{broken"))

	lines, err := NewLocalBackend(local, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLocalBackend_ReadsLegacyNumericIDs(t *testing.T) {
	local := localstore.NewMemory()
	require.NoError(t, local.Set(LocalCartKey, `[{"id":1,"name":"Summer Loose Shirt","price":78,"img":"img/ariival.png","qty":0}]`))

	lines, err := NewLocalBackend(local, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Qty)
	assert.True(t, decimal.NewFromInt(78).Equal(lines[0].Price))
}

func setupRemote(t *testing.T) (*Backends, *docstore.Memory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	docs := docstore.NewMemory()
	return NewBackends(localstore.NewMemory(), docs, cache.NewRedisCache(client), nil), docs, mr
}

func TestRemoteBackend_ReadThroughCache(t *testing.T) {
	backends, docs, mr := setupRemote(t)
	ctx := context.Background()
	require.NoError(t, docs.SetDocument(ctx, docstore.Ref{Collection: "carts", ID: "u1"}, map[string]any{
		"items": []any{map[string]any{"id": "2", "name": "Casual Polo Shirt", "price": 79.0, "qty": 1}},
	}))
	remote := backends.For(&domain.User{UID: "u1"})

	lines, err := remote.Load(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, mr.Exists("cart:u1"))

	lines, err = remote.Load(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, docs.Calls("GetDocument"), "second load served from cache")
}

func TestRemoteBackend_SaveInvalidatesCache(t *testing.T) {
	backends, docs, mr := setupRemote(t)
	ctx := context.Background()
	remote := backends.For(&domain.User{UID: "u1"})

	_, err := remote.Load(ctx)
	require.NoError(t, err)
	require.False(t, mr.Exists("cart:u1"), "missing cart is not cached")

	line := domain.CartLine{ProductID: "1", Name: "Summer Loose Shirt", Price: decimal.NewFromInt(78), Qty: 2}
	require.NoError(t, remote.Save(ctx, []domain.CartLine{line}))
	_, err = remote.Load(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:u1"))

	require.NoError(t, remote.Save(ctx, []domain.CartLine{}))
	assert.False(t, mr.Exists("cart:u1"))

	lines, err := remote.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 2, docs.Calls("SetDocument"))
}

func TestRemoteBackend_CacheOutageFallsBackToStore(t *testing.T) {
	backends, docs, mr := setupRemote(t)
	ctx := context.Background()
	require.NoError(t, docs.SetDocument(ctx, docstore.Ref{Collection: "carts", ID: "u1"}, map[string]any{
		"items": []any{map[string]any{"id": "3", "qty": 1}},
	}))
	mr.Close()

	lines, err := backends.For(&domain.User{UID: "u1"}).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
