// Package platform assembles the binaries from Config: it opens the selected
// backends, builds the services and hands back routers or workers.
package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/blobstore"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/metrics"
	"storefront/internal/queue"
	"storefront/internal/tablestore"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
	BackendKafka    = "kafka"
	BackendRedis    = "redis"

	// InProcess as FUNCTIONS_BASE_URL runs the functions tier inside the storefront.
	InProcess = "inprocess"
)

// Resources tracks what a binary opened so it can be released on shutdown.
type Resources struct {
	cfg     config.Config
	logger  *zap.Logger
	pool    *pgxpool.Pool
	closers []func()

	Ready []httpserver.ReadyCheck
}

func NewResources(cfg config.Config, logger *zap.Logger) *Resources {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resources{cfg: cfg, logger: logger}
}

func (r *Resources) onClose(f func()) {
	r.closers = append(r.closers, f)
}

// Close releases resources in reverse order of acquisition.
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Postgres returns the shared pool, connecting on first use.
func (r *Resources) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if r.pool != nil {
		return r.pool, nil
	}
	pool, err := db.Connect(ctx, r.cfg.DBConnString, r.logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r.pool = pool
	r.onClose(pool.Close)
	r.Ready = append(r.Ready, httpserver.ReadyCheck{Name: "postgres", Check: func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	}})
	return pool, nil
}

// TableStore opens the backend named by TABLE_BACKEND.
func (r *Resources) TableStore(ctx context.Context) (tablestore.Store, error) {
	switch strings.ToLower(r.cfg.TableBackend) {
	case BackendMemory:
		r.logger.Warn("table store: using in-memory backend, data is not persisted")
		return tablestore.NewMemory(), nil
	case BackendMongo:
		database, err := tablestore.ConnectMongo(ctx, r.cfg.MongoURI, r.cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		client := database.Client()
		r.onClose(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		})
		r.Ready = append(r.Ready, httpserver.ReadyCheck{Name: "mongo", Check: mongoPing(client)})
		return tablestore.WithTimeout(tablestore.NewMongo(database, r.logger), r.cfg.UpstreamTimeout), nil
	case BackendPostgres, "":
		pool, err := r.Postgres(ctx)
		if err != nil {
			return nil, err
		}
		return tablestore.WithTimeout(tablestore.NewPostgres(pool, r.logger), r.cfg.UpstreamTimeout), nil
	default:
		return nil, fmt.Errorf("unknown TABLE_BACKEND %q", r.cfg.TableBackend)
	}
}

func mongoPing(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}

// Queue opens the backend named by QUEUE_BACKEND.
func (r *Resources) Queue(ctx context.Context) (queue.Queue, error) {
	var q queue.Queue
	switch strings.ToLower(r.cfg.QueueBackend) {
	case BackendMemory, "":
		r.logger.Warn("queue: using in-memory backend, messages stay in this process and the oldest are dropped when full")
		q = queue.NewMemory()
	case BackendKafka:
		if len(r.cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is empty")
		}
		q = queue.NewKafka(r.cfg.KafkaBrokers, r.cfg.KafkaGroupID, r.logger)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", r.cfg.RedisAddr, err)
		}
		r.Ready = append(r.Ready, httpserver.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
		q = queue.NewRedis(client, r.logger)
	default:
		return nil, fmt.Errorf("unknown QUEUE_BACKEND %q", r.cfg.QueueBackend)
	}
	r.onClose(func() {
		if err := q.Close(); err != nil {
			r.logger.Warn("queue: close", zap.Error(err))
		}
	})
	r.logger.Info("queue: opened", zap.String("backend", r.cfg.QueueBackend))
	return q, nil
}

// Blobs opens the filesystem blob store under BLOB_ROOT.
func (r *Resources) Blobs() (*blobstore.FileStore, error) {
	return blobstore.NewFileStore(r.cfg.BlobRoot, r.cfg.FileURLHost)
}

// Observability is the registry plus the metric sets every binary exposes.
type Observability struct {
	Registry *prometheus.Registry
	HTTP     *metrics.HTTP
	Workflow *metrics.Workflow
}

func NewObservability(service string) *Observability {
	reg := metrics.NewRegistry()
	return &Observability{
		Registry: reg,
		HTTP:     metrics.NewHTTP(reg, service),
		Workflow: metrics.NewWorkflow(reg),
	}
}
