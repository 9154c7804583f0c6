package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rosie073/shopfinalcross/internal/blobstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
	"github.com/rosie073/shopfinalcross/internal/identity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput is the editable part of a product as submitted by the back-office form.
type ProductInput struct {
	Brand       string          `json:"brand"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"img"`
	Gallery     []string        `json:"gallery,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (in ProductInput) Validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Brand) == "" {
		verr.Add("brand", "Brand is required.")
	}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "Name is required.")
	}
	if in.Price.IsNegative() {
		verr.Add("price", "Price cannot be negative.")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (in ProductInput) product(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Brand:       strings.TrimSpace(in.Brand),
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		ImageRef:    in.ImageRef,
		Gallery:     in.Gallery,
		Description: in.Description,
	}
}

// Admin is the product back-office. Every call checks that the actor is an
// administrator and invalidates the listing cache after a successful write.
type Admin struct {
	repo  *Repository
	cache *Cache
	blobs blobstore.Store
	auth  identity.Authority
	now   func() time.Time
	log   *zap.Logger
}

func NewAdmin(repo *Repository, cache *Cache, blobs blobstore.Store, auth identity.Authority, log *zap.Logger) *Admin {
	if log == nil {
		log = zap.NewNop()
	}
	return &Admin{repo: repo, cache: cache, blobs: blobs, auth: auth, now: time.Now, log: log}
}

// Products lists what is actually stored, without the seed fallback.
func (a *Admin) Products(ctx context.Context, actor *domain.User) ([]domain.Product, error) {
	if err := identity.RequireAdmin(ctx, a.auth, actor); err != nil {
		return nil, err
	}
	products, err := a.repo.List(ctx)
	if err != nil {
		return nil, domain.NewBackendError("list products", err)
	}
	return products, nil
}

func (a *Admin) AddProduct(ctx context.Context, actor *domain.User, in ProductInput) (domain.Product, error) {
	if err := identity.RequireAdmin(ctx, a.auth, actor); err != nil {
		return domain.Product{}, err
	}
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	p, err := a.repo.Add(ctx, in.product(""))
	if err != nil {
		return domain.Product{}, domain.NewBackendError("add product", err)
	}
	a.cache.Invalidate()
	a.log.Info("product added", zap.String("product_id", p.ID), zap.String("uid", actor.UID))
	return p, nil
}

// UpdateProduct replaces the editable fields of a product. An empty image
// keeps the current one.
func (a *Admin) UpdateProduct(ctx context.Context, actor *domain.User, id string, in ProductInput) (domain.Product, error) {
	if err := identity.RequireAdmin(ctx, a.auth, actor); err != nil {
		return domain.Product{}, err
	}
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	current, err := a.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, err
		}
		return domain.Product{}, domain.NewBackendError("load product", err)
	}

	p := in.product(current.ID)
	if p.ImageRef == "" {
		p.ImageRef = current.ImageRef
	}
	if p.Gallery == nil {
		p.Gallery = current.Gallery
	}
	if p.Description == "" {
		p.Description = current.Description
	}

	if err := a.repo.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, err
		}
		return domain.Product{}, domain.NewBackendError("update product", err)
	}
	a.cache.Invalidate()
	a.log.Info("product updated", zap.String("product_id", p.ID), zap.String("uid", actor.UID))
	return p, nil
}

func (a *Admin) DeleteProduct(ctx context.Context, actor *domain.User, id string) error {
	if err := identity.RequireAdmin(ctx, a.auth, actor); err != nil {
		return err
	}
	if err := a.repo.Delete(ctx, id); err != nil {
		return domain.NewBackendError("delete product", err)
	}
	a.cache.Invalidate()
	a.log.Info("product deleted", zap.String("product_id", id), zap.String("uid", actor.UID))
	return nil
}

// UploadImage stores an image under products/<unix-millis>_<name> and returns its URL.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageContentType sniffs data and reports whether it is a raster image type
// the storefront accepts and serves.
func ImageContentType(data []byte) (string, bool) {
	ct := http.DetectContentType(data)
	return ct, imageTypes[ct]
}

func (a *Admin) UploadImage(ctx context.Context, actor *domain.User, filename string, data []byte) (string, error) {
	if err := identity.RequireAdmin(ctx, a.auth, actor); err != nil {
		return "", err
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "", domain.NewValidationError("image", "Choose an image file.")
	}
	if len(data) == 0 {
		return "", domain.NewValidationError("image", "Image file is empty.")
	}

	if _, ok := ImageContentType(data); !ok {
		return "", domain.NewValidationError("image", "Upload a PNG, JPEG, GIF or WebP image.")
	}

	blobPath := fmt.Sprintf("products/%d_%s", a.now().UnixMilli(), name)
	url, err := a.blobs.Upload(ctx, blobPath, data)
	if err != nil {
		return "", domain.NewBackendError("upload image", err)
	}
	return url, nil
}
