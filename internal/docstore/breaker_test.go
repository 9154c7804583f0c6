package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		ConsecutiveFails: 2,
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	mem := NewMemory()
	b := NewBreaker(mem, testBreakerSettings(), nil)
	ctx := context.Background()
	mem.FailOn("GetCollection", errors.New("timeout"))

	for i := 0; i < 2; i++ {
		_, err := b.GetCollection(ctx, "products")
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.GetCollection(ctx, "products")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, mem.Calls("GetCollection"), "open breaker must not reach the store")
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	mem := NewMemory()
	b := NewBreaker(mem, testBreakerSettings(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.GetDocument(ctx, Ref{Collection: "carts", ID: "none"})
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_PassesResultsThrough(t *testing.T) {
	mem := NewMemory()
	b := NewBreaker(mem, testBreakerSettings(), nil)
	ctx := context.Background()

	id, err := b.AddDocument(ctx, "orders", map[string]any{"total": 5.0})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := b.GetDocument(ctx, Ref{Collection: "orders", ID: id})
	require.NoError(t, err)
	assert.Equal(t, 5.0, doc.Data["total"])

	docs, err := b.GetCollection(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
