// Package catalog loads the product listing, keeps it memoized, and hosts the
// back-office product management.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
)

const productsCollection = "products"

// Repository maps products to documents in the products collection.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.store.GetCollection(ctx, productsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, decodeProduct(d))
	}
	return products, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Product, error) {
	doc, err := r.store.GetDocument(ctx, productRef(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return decodeProduct(doc), nil
}

func (r *Repository) Add(ctx context.Context, p domain.Product) (domain.Product, error) {
	id, err := r.store.AddDocument(ctx, productsCollection, encodeProduct(p))
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to add product: %w", err)
	}
	p.ID = id
	return p, nil
}

// Update overwrites the editable fields of an existing product.
func (r *Repository) Update(ctx context.Context, p domain.Product) error {
	err := r.store.UpdateDocument(ctx, productRef(p.ID), encodeProduct(p))
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteDocument(ctx, productRef(id)); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// SaveAll upserts products keyed by their own ids in one batch.
func (r *Repository) SaveAll(ctx context.Context, products []domain.Product) error {
	writes := make([]docstore.Write, 0, len(products))
	for _, p := range products {
		data := encodeProduct(p)
		data["id"] = p.ID
		writes = append(writes, docstore.Write{Ref: productRef(p.ID), Data: data})
	}
	if err := r.store.BatchWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

func productRef(id string) docstore.Ref {
	return docstore.Ref{Collection: productsCollection, ID: domain.NormalizeID(id)}
}

func encodeProduct(p domain.Product) map[string]any {
	data := map[string]any{
		"brand": p.Brand,
		"name":  p.Name,
		"price": p.Price.InexactFloat64(),
		"img":   p.ImageRef,
	}
	if len(p.Gallery) > 0 {
		gallery := make([]any, len(p.Gallery))
		for i, g := range p.Gallery {
			gallery[i] = g
		}
		data["gallery"] = gallery
	}
	if p.Description != "" {
		data["description"] = p.Description
	}
	return data
}

func decodeProduct(d docstore.Document) domain.Product {
	return domain.Product{
		ID:          domain.NormalizeID(d.ID),
		Brand:       docstore.String(d.Data, "brand"),
		Name:        docstore.String(d.Data, "name"),
		Price:       docstore.Decimal(d.Data, "price"),
		ImageRef:    docstore.String(d.Data, "img"),
		Gallery:     docstore.Strings(d.Data, "gallery"),
		Description: docstore.String(d.Data, "description"),
	}
}
