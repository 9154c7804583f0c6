package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rosie073/shopfinalcross/internal/blobstore"
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminUser   = &domain.User{UID: "admin-1", Claims: map[string]any{"admin": true}}
	shopperUser = &domain.User{UID: "shopper-1"}
)

func setupAdmin(t *testing.T) (*Admin, *Cache, *blobstore.Memory) {
	t.Helper()
	mem := docstore.NewMemory()
	repo := NewRepository(mem)
	cache := NewCache(repo, nil)
	blobs := blobstore.NewMemory("/media")
	admin := NewAdmin(repo, cache, blobs, identity.NewAdminChecker(mem, nil), nil)
	admin.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return admin, cache, blobs
}

func TestAdmin_RequiresAdministrator(t *testing.T) {
	admin, _, _ := setupAdmin(t)
	ctx := context.Background()
	in := ProductInput{Brand: "Chu", Name: "New Shirt", Price: decimal.NewFromInt(50)}

	_, err := admin.AddProduct(ctx, nil, in)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = admin.AddProduct(ctx, shopperUser, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = admin.DeleteProduct(ctx, shopperUser, "1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = admin.UploadImage(ctx, shopperUser, "a.png", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdmin_AddInvalidatesListing(t *testing.T) {
	admin, cache, _ := setupAdmin(t)
	ctx := context.Background()
	assert.Len(t, cache.List(ctx), 14)

	p, err := admin.AddProduct(ctx, adminUser, ProductInput{Brand: "Chu", Name: "New Shirt", Price: decimal.NewFromInt(50)})
	require.NoError(t, err)

	products := cache.List(ctx)
	require.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)
}

func TestAdmin_ValidatesInput(t *testing.T) {
	admin, _, _ := setupAdmin(t)

	_, err := admin.AddProduct(context.Background(), adminUser, ProductInput{Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, domain.ErrValidationFailed)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Message("brand"))
	assert.NotEmpty(t, verr.Message("name"))
	assert.NotEmpty(t, verr.Message("price"))
}

func TestAdmin_UpdateKeepsImageWhenNoneGiven(t *testing.T) {
	admin, _, _ := setupAdmin(t)
	ctx := context.Background()
	p, err := admin.AddProduct(ctx, adminUser, ProductInput{Brand: "Chu", Name: "Shirt", Price: decimal.NewFromInt(10), ImageRef: "/media/products/old.png"})
	require.NoError(t, err)

	updated, err := admin.UpdateProduct(ctx, adminUser, p.ID, ProductInput{Brand: "Chu", Name: "Shirt v2", Price: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.Equal(t, "/media/products/old.png", updated.ImageRef)
	assert.Equal(t, "Shirt v2", updated.Name)

	_, err = admin.UpdateProduct(ctx, adminUser, "missing", ProductInput{Brand: "Chu", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_UploadImage(t *testing.T) {
	admin, _, blobs := setupAdmin(t)
	ctx := context.Background()

	png := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")

	url, err := admin.UploadImage(ctx, adminUser, "shirt front.png", png)
	require.NoError(t, err)
	assert.Equal(t, "/media/products/1700000000000_shirt front.png", url)

	data, err := blobs.Open(ctx, "products/1700000000000_shirt front.png")
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = admin.UploadImage(ctx, adminUser, "", png)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestAdmin_UploadImage_RejectsActiveContent(t *testing.T) {
	admin, _, blobs := setupAdmin(t)
	ctx := context.Background()

	for name, data := range map[string][]byte{
		"page.png":  []byte("<html><script>alert(1)</script></html>"),
		"logo.svg":  []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`),
		"notes.txt": []byte("plain text"),
	} {
		_, err := admin.UploadImage(ctx, adminUser, name, data)
		assert.ErrorIs(t, err, domain.ErrValidationFailed, name)

		_, err = blobs.Open(ctx, "products/1700000000000_"+name)
		assert.Error(t, err, "%s is not stored", name)
	}
}

func TestImageContentType(t *testing.T) {
	ct, ok := ImageContentType([]byte("\xff\xd8\xff\xe0jpeg"))
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	ct, ok = ImageContentType([]byte("<html></html>"))
	assert.False(t, ok)
	assert.Contains(t, ct, "text/html")
}
