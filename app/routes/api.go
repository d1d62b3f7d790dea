package routes

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/churchcafe/app/controllers"
	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
	"github.com/shashiranjanraj/churchcafe/pkg/metrics"
	"github.com/shashiranjanraj/churchcafe/pkg/middleware"
	"github.com/shashiranjanraj/churchcafe/pkg/rbac"
	"github.com/shashiranjanraj/churchcafe/pkg/response"
	"github.com/shashiranjanraj/churchcafe/pkg/router"
	"github.com/shashiranjanraj/churchcafe/pkg/ws"
)

// Handlers is everything the route table mounts.
type Handlers struct {
	Signer     *auth.Signer
	Hub        *ws.Hub
	Auth       *controllers.AuthController
	Users      *controllers.UserController
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Orders     *controllers.OrderController
	Events     *controllers.EventsController
	// Files serves the local storage disk; nil when images live elsewhere.
	Files http.Handler
}

// Register mounts the public endpoints, the /api table and the realtime
// transports.
func Register(r *router.Router, h Handlers) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"name": "Church Cafe Backend", "version": "1.0.0"})
	})
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok", "env": config.AppEnv()})
	})
	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Handle("/ws", "ws", h.Hub.Handler(h.Signer, config.CORSOrigins()))
	if h.Files != nil {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage/", h.Files))
	}

	RegisterAPI(r, h)
}

func RegisterAPI(r *router.Router, h Handlers) {
	authed := middleware.Auth(h.Signer)
	limiter := middleware.NewRateLimiter(config.Int("AUTH_RATE_LIMIT", 20), 15*time.Minute)

	api := r.Group("/api")

	authGroup := api.Group("/auth", limiter.Middleware)
	authGroup.Post("/register", "auth.register", ctx.Wrap(h.Auth.Register))
	authGroup.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))

	users := api.Group("/users", authed)
	users.Get("/me", "users.me", ctx.Wrap(h.Users.Me))
	users.Put("/me", "users.me.update", ctx.Wrap(h.Users.UpdateMe))
	users.Get("", "users.index", ctx.Wrap(h.Users.Index), rbac.Staff())
	users.Post("", "users.store", ctx.Wrap(h.Users.Store), rbac.Admin())
	users.Put("/{id}", "users.update", ctx.Wrap(h.Users.Update), rbac.Admin())
	users.Delete("/{id}", "users.destroy", ctx.Wrap(h.Users.Destroy), rbac.Admin())

	categories := api.Group("/categories")
	categories.Get("", "categories.index", ctx.Wrap(h.Categories.Index))
	categories.Get("/{id}", "categories.show", ctx.Wrap(h.Categories.Show))
	adminCategories := categories.Group("", authed, rbac.Admin())
	adminCategories.Post("", "categories.store", ctx.Wrap(h.Categories.Store))
	adminCategories.Put("/{id}", "categories.update", ctx.Wrap(h.Categories.Update))
	adminCategories.Delete("/{id}", "categories.destroy", ctx.Wrap(h.Categories.Destroy))

	products := api.Group("/products")
	products.Get("", "products.index", ctx.Wrap(h.Products.Index))
	products.Get("/items", "products.items", ctx.Wrap(h.Products.Items))
	products.Get("/{id}", "products.show", ctx.Wrap(h.Products.Show))
	adminProducts := products.Group("", authed, rbac.Admin())
	adminProducts.Post("", "products.store", ctx.Wrap(h.Products.Store))
	adminProducts.Put("/{id}", "products.update", ctx.Wrap(h.Products.Update))
	adminProducts.Delete("/{id}", "products.destroy", ctx.Wrap(h.Products.Destroy))
	adminProducts.Post("/{id}/image", "products.image", ctx.Wrap(h.Products.UploadImage))
	adminProducts.Post("/{id}/items", "products.items.store", ctx.Wrap(h.Products.StoreItem))
	adminProducts.Put("/items/{itemId}", "products.items.update", ctx.Wrap(h.Products.UpdateItem))
	adminProducts.Delete("/items/{itemId}", "products.items.destroy", ctx.Wrap(h.Products.DestroyItem))
	adminProducts.Post("/{id}/options", "products.options.store", ctx.Wrap(h.Products.StoreOption))
	adminProducts.Put("/options/{optionId}", "products.options.update", ctx.Wrap(h.Products.UpdateOption))
	adminProducts.Delete("/options/{optionId}", "products.options.destroy", ctx.Wrap(h.Products.DestroyOption))

	orders := api.Group("/orders", authed)
	orders.Post("", "orders.store", ctx.Wrap(h.Orders.Store))
	orders.Get("/me", "orders.mine", ctx.Wrap(h.Orders.Mine))
	orders.Get("/{id}", "orders.show", ctx.Wrap(h.Orders.Show))
	orders.Get("", "orders.index", ctx.Wrap(h.Orders.Index), rbac.Staff())
	orders.Put("/{id}/status", "orders.status", ctx.Wrap(h.Orders.UpdateStatus), rbac.Staff())

	api.Get("/events", "events", ctx.Wrap(h.Events.Stream), authed)
}
