package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFor(t *testing.T) {
	assert.Equal(t, "/media/products/1_a.png", URLFor("/media/", "/products/1_a.png"))
	assert.Equal(t, "http://cdn.local/products/x", URLFor("http://cdn.local", "products/x"))
}

func TestMemory_UploadAndOpen(t *testing.T) {
	m := NewMemory("/media")
	ctx := context.Background()
	data := []byte{0x89, 'P', 'N', 'G'}

	url, err := m.Upload(ctx, "products/1700000000000_shirt.png", data)
	require.NoError(t, err)
	assert.Equal(t, "/media/products/1700000000000_shirt.png", url)

	data[0] = 0
	got, err := m.Open(ctx, "products/1700000000000_shirt.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)

	_, err = m.Open(ctx, "products/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
