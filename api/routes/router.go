package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront/api/controllers/cart"
	eventcontrollers "github.com/angelmondragon/storefront/api/controllers/events"
	ordercontrollers "github.com/angelmondragon/storefront/api/controllers/orders"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/events"
	"github.com/angelmondragon/storefront/internal/orders"
	products "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storagePinger controllers.Pinger,
	gatherer prometheus.Gatherer,
	productRepo *products.Repository,
	cartRepo *cart.Repository,
	ordersRepo *orders.Repository,
	checkoutService checkout.Service,
	hub *events.Hub,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storagePinger))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(productRepo, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(productRepo, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartRepo, logg))
			r.Delete("/", cartcontrollers.CartClear(cartRepo, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartRepo, productRepo, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartSetQuantity(cartRepo, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartRepo, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.Get("/orders/{orderId}", ordercontrollers.Lookup(ordersRepo, logg))
		r.Get("/events", eventcontrollers.Stream(hub, eventcontrollers.StreamOptions{
			Buffer:    cfg.Events.SSEBuffer,
			Heartbeat: cfg.Events.SSEHeartbeat,
		}, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(productRepo, logg))
		r.Post("/products", controllers.AdminCreateProduct(productRepo, logg))
		r.Put("/products/{productId}", controllers.AdminUpdateProduct(productRepo, logg))
		r.Delete("/products/{productId}", controllers.AdminDeleteProduct(productRepo, logg))
		r.Get("/orders", ordercontrollers.AdminList(ordersRepo, logg))
		r.Patch("/orders/{orderId}/status", ordercontrollers.AdminSetStatus(ordersRepo, logg))
	})

	return r
}
