// Package kernel assembles the application: connections, the relay, the
// services and the HTTP handler with its global middleware stack.
package kernel

import (
	"context"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/controllers"
	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/app/routes"
	"github.com/shashiranjanraj/churchcafe/app/services"
	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/pkg/audit"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/cache"
	"github.com/shashiranjanraj/churchcafe/pkg/database"
	"github.com/shashiranjanraj/churchcafe/pkg/event"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/metrics"
	"github.com/shashiranjanraj/churchcafe/pkg/middleware"
	"github.com/shashiranjanraj/churchcafe/pkg/reqid"
	"github.com/shashiranjanraj/churchcafe/pkg/router"
	"github.com/shashiranjanraj/churchcafe/pkg/storage"
	"github.com/shashiranjanraj/churchcafe/pkg/ws"
)

func init() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Options are the already-open dependencies of a Kernel.
type Options struct {
	DB     *gorm.DB
	Cache  cache.Store
	Disks  *storage.Manager
	Signer *auth.Signer
	// Audit is optional.
	Audit *audit.Sink
	// Workers is the number of ordered relay lanes; 0 makes event delivery
	// synchronous.
	Workers int
}

type Kernel struct {
	DB     *gorm.DB
	Cache  cache.Store
	Disks  *storage.Manager
	Signer *auth.Signer
	Audit  *audit.Sink
	Events *event.Dispatcher
	Hub    *ws.Hub
	Orders *services.OrderService

	router *router.Router
}

// Boot opens every configured connection and builds the kernel. Redis,
// S3 and Mongo degrade gracefully; the database is required.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	db, err := database.Connect()
	if err != nil {
		return nil, err
	}

	var sink *audit.Sink
	if uri := config.AuditMongoURI(); uri != "" {
		sink, err = audit.Connect(ctx, uri, config.AuditMongoDB())
		if err != nil {
			logger.Warn("audit: disabled", "error", err)
			sink = nil
		}
	}

	return New(Options{
		DB:      db,
		Cache:   cache.Connect(ctx),
		Disks:   storage.Connect(ctx),
		Signer:  auth.DefaultSigner(),
		Audit:   sink,
		Workers: config.RelayWorkers(),
	}), nil
}

// New wires services, controllers and routes over opts.
func New(opts Options) *Kernel {
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.Disks == nil {
		opts.Disks = storage.NewManager("local")
		opts.Disks.Register("local", storage.NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))
	}

	k := &Kernel{
		DB:     opts.DB,
		Cache:  opts.Cache,
		Disks:  opts.Disks,
		Signer: opts.Signer,
		Audit:  opts.Audit,
		Hub:    ws.NewHub(),
	}
	k.Events = event.NewDispatcher(opts.Workers)

	var rec services.AuditRecorder
	if k.Audit != nil {
		rec = k.Audit
	}
	services.NewOrderRelay(k.Hub, rec).Register(k.Events)

	users := repositories.NewUserRepository(k.DB)
	orderRepo := repositories.NewOrderRepository(k.DB, config.Location())
	catalog := services.NewCatalogService(
		k.DB,
		repositories.NewCategoryRepository(k.DB),
		repositories.NewProductRepository(k.DB),
		k.Cache,
		config.CatalogCacheTTL(),
		k.Disks.Default(),
	)
	k.Orders = services.NewOrderService(k.DB, orderRepo, k.Events)

	h := routes.Handlers{
		Signer:     k.Signer,
		Hub:        k.Hub,
		Auth:       controllers.NewAuthController(services.NewAuthService(users, k.Signer)),
		Users:      controllers.NewUserController(services.NewUserService(users)),
		Categories: controllers.NewCategoryController(catalog),
		Products:   controllers.NewProductController(catalog),
		Orders:     controllers.NewOrderController(k.Orders),
		Events:     controllers.NewEventsController(k.Hub),
	}
	if config.StorageDefault() == "local" {
		h.Files = http.FileServer(http.Dir(config.StorageLocalRoot()))
	}

	r := router.New()
	// outermost first: metrics sees total latency, recovery guards the
	// rest, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	routes.Register(r, h)
	k.router = r

	return k
}

func (k *Kernel) Handler() http.Handler { return k.router.Handler() }

func (k *Kernel) Router() *router.Router { return k.router }

// Shutdown drains queued events, disconnects realtime clients and closes
// every connection.
func (k *Kernel) Shutdown() {
	k.Events.Close()
	k.Hub.Close()
	if k.Audit != nil {
		k.Audit.Close()
	}
	if c, ok := k.Cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("cache: close failed", "error", err)
		}
	}
	if k.DB != nil {
		if err := database.Close(k.DB); err != nil {
			logger.Warn("database: close failed", "error", err)
		}
	}
}
