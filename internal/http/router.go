// Package http is the storefront's JSON gateway.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rosie073/shopfinalcross/internal/blobstore"
	"github.com/rosie073/shopfinalcross/internal/storefront"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout     = 30 * time.Second
	defaultMaxRequestBodySize = 10 << 20
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(sessions *storefront.Manager, blobs blobstore.Store, cfg RouterConfig, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	products := NewProductHandler(sessions.Catalog(), sessions.Admin(), blobs, cfg.RequestTimeout, cfg.MaxRequestBodySize)
	cartHandler := NewCartHandler(cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/media/*", products.Media)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(sessions))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.ListProducts)
			r.Get("/new-arrivals", products.NewArrivals)
			r.Get("/featured", products.Featured)
			r.Get("/{product_id}", products.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/coupon", cartHandler.ApplyCoupon)
			r.Delete("/coupon", cartHandler.RemoveCoupon)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/summary", checkoutHandler.Summary)
			r.Post("/", checkoutHandler.PlaceOrder)
		})

		r.Get("/orders", ordersHandler.ListOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/products", products.AdminListProducts)
			r.Post("/products", products.AddProduct)
			r.Put("/products/{product_id}", products.UpdateProduct)
			r.Delete("/products/{product_id}", products.DeleteProduct)
			r.Post("/products/images", products.UploadImage)

			r.Get("/orders", ordersHandler.ListAllOrders)
			r.Put("/orders/status", ordersHandler.SetStatus)
		})
	})

	return r
}
