package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetAndGetDocument(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ref := Ref{Collection: "carts", ID: "u1"}

	require.NoError(t, m.SetDocument(ctx, ref, map[string]any{
		"items": []map[string]any{{"id": "1", "qty": 2}},
	}))

	doc, err := m.GetDocument(ctx, ref)
	require.NoError(t, err)
	items := Maps(doc.Data, "items")
	require.Len(t, items, 1)
	assert.Equal(t, 2.0, items[0]["qty"], "ints normalize to float64 like a JSON backend")
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ref := Ref{Collection: "products", ID: "1"}
	data := map[string]any{"name": "shirt"}
	require.NoError(t, m.SetDocument(ctx, ref, data))

	data["name"] = "mutated"
	doc, err := m.GetDocument(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "shirt", doc.Data["name"])

	doc.Data["name"] = "mutated again"
	doc, err = m.GetDocument(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "shirt", doc.Data["name"])
}

func TestMemory_GetCollectionKeepsInsertionOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, m.SetDocument(ctx, Ref{Collection: "products", ID: id}, map[string]any{"id": id}))
	}

	docs, err := m.GetCollection(ctx, "products")
	require.NoError(t, err)
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestMemory_GetCollectionFilters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.AddDocument(ctx, "orders", map[string]any{"userId": "u1", "total": 10})
	require.NoError(t, err)
	_, err = m.AddDocument(ctx, "orders", map[string]any{"userId": "u2", "total": 10})
	require.NoError(t, err)

	docs, err := m.GetCollection(ctx, "orders", Where("userId", "u1"))
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = m.GetCollection(ctx, "orders", Where("total", 10))
	require.NoError(t, err)
	assert.Len(t, docs, 2, "int filter matches stored float64")
}

func TestMemory_UpdateMissingDocument(t *testing.T) {
	m := NewMemory()
	err := m.UpdateDocument(context.Background(), Ref{Collection: "orders", ID: "nope"}, map[string]any{"status": "shipped"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteDocument(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ref := Ref{Collection: "products", ID: "1"}
	require.NoError(t, m.SetDocument(ctx, ref, map[string]any{}))

	require.NoError(t, m.DeleteDocument(ctx, ref))
	require.NoError(t, m.DeleteDocument(ctx, ref))

	_, err := m.GetDocument(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, m.Collections())
}

func TestMemory_FailOnAndDeny(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("network down")

	m.FailOn("GetCollection", boom)
	_, err := m.GetCollection(ctx, "products")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.Calls("GetCollection"))

	m.FailOn("GetCollection", nil)
	_, err = m.GetCollection(ctx, "products")
	assert.NoError(t, err)

	m.Deny("users")
	_, err = m.GetDocument(ctx, Ref{Collection: "users", ID: "u1"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestParseRef(t *testing.T) {
	ref, ok := ParseRef("users/u1/orders/o9")
	require.True(t, ok)
	assert.Equal(t, Ref{Collection: "users/u1/orders", ID: "o9"}, ref)
	assert.Equal(t, "users/u1/orders/o9", ref.Path())

	_, ok = ParseRef("orders")
	assert.False(t, ok)
	_, ok = ParseRef("orders/")
	assert.False(t, ok)
}
