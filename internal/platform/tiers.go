package platform

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/config"
	"storefront/internal/functionsapi"
	"storefront/internal/httpserver"
	"storefront/internal/notify"
	"storefront/internal/queue"
	cartrepo "storefront/internal/repository/cart"
	custrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	"storefront/internal/tablestore"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FunctionServices is the functions tier minus its HTTP surface.
type FunctionServices struct {
	Products  *productsvc.Service
	Customers *customersvc.Service
	Orders    *ordersvc.Service
}

// NewFunctionServices wires the table-store repositories and the order service.
// Queue sends go through a circuit breaker so a dead broker fails fast.
func NewFunctionServices(cfg config.Config, store tablestore.Store, sender queue.Sender, logger *zap.Logger, obs *Observability) *FunctionServices {
	products := productrepo.NewTable(store, logger)
	customers := custrepo.NewTable(store, logger)
	orders := orderrepo.NewTable(store, logger)

	policy := ordersvc.DefaultRetryPolicy()
	if cfg.StockRetryAttempts > 0 {
		policy.MaxAttempts = cfg.StockRetryAttempts
	}
	notifier := notify.New(queue.NewBreaker(sender, logger), logger, cfg.UpstreamTimeout, obs.Workflow)

	return &FunctionServices{
		Products:  productsvc.New(products),
		Customers: customersvc.New(customers),
		Orders: ordersvc.New(orders, products, customers, notifier,
			ordersvc.WithRetryPolicy(policy),
			ordersvc.WithMetrics(obs.Workflow),
			ordersvc.WithLogger(logger)),
	}
}

func (r *Resources) functionServices(ctx context.Context, obs *Observability) (*FunctionServices, error) {
	store, err := r.TableStore(ctx)
	if err != nil {
		return nil, err
	}
	q, err := r.Queue(ctx)
	if err != nil {
		return nil, err
	}
	return NewFunctionServices(r.cfg, store, q, r.logger, obs), nil
}

// BuildFunctions assembles the functions tier router.
func BuildFunctions(ctx context.Context, res *Resources, obs *Observability) (*gin.Engine, error) {
	svc, err := res.functionServices(ctx, obs)
	if err != nil {
		return nil, err
	}
	files, err := res.Blobs()
	if err != nil {
		return nil, err
	}
	return httpserver.BuildFunctionsRouter(httpserver.FunctionsDeps{
		Logger:      res.logger,
		Registry:    obs.Registry,
		HTTPMetrics: obs.HTTP,
		CORSOrigins: res.cfg.CORSOrigins,
		Ready:       res.Ready,
		Products:    svc.Products,
		Customers:   svc.Customers,
		Orders:      svc.Orders,
		Blobs:       files,
		Files:       files,
	}), nil
}

// upstream is what the storefront needs from the functions tier.
type upstream interface {
	cartsvc.ProductSource
	checkoutsvc.OrderPlacer
}

var (
	_ upstream = (*functionsapi.Client)(nil)
	_ upstream = (*functionsapi.Local)(nil)
)

func (r *Resources) upstream(ctx context.Context, obs *Observability) (upstream, error) {
	if strings.EqualFold(r.cfg.FunctionsBaseURL, InProcess) {
		svc, err := r.functionServices(ctx, obs)
		if err != nil {
			return nil, err
		}
		r.logger.Info("storefront: functions tier running in process")
		return functionsapi.NewLocal(svc.Products, svc.Customers, svc.Orders), nil
	}
	r.logger.Info("storefront: functions tier over http", zap.String("base_url", r.cfg.FunctionsBaseURL))
	return functionsapi.NewClient(r.cfg.FunctionsBaseURL, r.cfg.UpstreamTimeout, r.logger), nil
}

func (r *Resources) carts(ctx context.Context) (cartrepo.Repository, error) {
	switch strings.ToLower(r.cfg.CartBackend) {
	case BackendMemory:
		r.logger.Warn("cart store: using in-memory backend, carts are not persisted")
		return cartrepo.NewMemory(), nil
	case BackendPostgres, "":
		pool, err := r.Postgres(ctx)
		if err != nil {
			return nil, err
		}
		return cartrepo.WithTimeout(cartrepo.NewPostgres(pool, r.logger), r.cfg.UpstreamTimeout), nil
	default:
		return nil, fmt.Errorf("unknown CART_BACKEND %q", r.cfg.CartBackend)
	}
}

// BuildStorefront assembles the cart and checkout router.
func BuildStorefront(ctx context.Context, res *Resources, obs *Observability) (*gin.Engine, error) {
	carts, err := res.carts(ctx)
	if err != nil {
		return nil, err
	}
	up, err := res.upstream(ctx, obs)
	if err != nil {
		return nil, err
	}
	return httpserver.BuildStorefrontRouter(httpserver.StorefrontDeps{
		Logger:      res.logger,
		Registry:    obs.Registry,
		HTTPMetrics: obs.HTTP,
		CORSOrigins: res.cfg.CORSOrigins,
		Ready:       res.Ready,
		Carts:       cartsvc.New(carts, up, res.logger),
		Checkout:    checkoutsvc.New(carts, cartsvc.NewStockValidator(up), up, res.logger, obs.Workflow),
	}), nil
}

// BuildWorker assembles the queue worker.
func BuildWorker(ctx context.Context, res *Resources, obs *Observability) (*worker.Worker, error) {
	q, err := res.Queue(ctx)
	if err != nil {
		return nil, err
	}
	return worker.New(q, res.logger, obs.Workflow), nil
}
