package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nahpet/shortener/internal/api"
	"github.com/nahpet/shortener/internal/clicks"
	"github.com/nahpet/shortener/internal/config"
	"github.com/nahpet/shortener/internal/middleware"
	"github.com/nahpet/shortener/internal/observability"
	"github.com/nahpet/shortener/internal/repository"
	"github.com/nahpet/shortener/internal/reserved"
	"github.com/nahpet/shortener/internal/service"
)

const serviceName = "shortener"

// redisPinger adapts *redis.Client to api.CacheInterface.
type redisPinger struct{ client *redis.Client }

func (r *redisPinger) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NewRouter wires all dependencies and returns a configured Gin router.
// queueCh may be nil, which disables click publishing to the queue.
func NewRouter(cfg *config.Config, obs *observability.Observability,
	db *pgxpool.Pool, cache *redis.Client, queueCh *amqp.Channel) *gin.Engine {
	logger := obs.Logger

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName, otelgin.WithTracerProvider(obs.TracerProvider)),
		middleware.Logging(logger),
	)

	// The registry closes over the engine: the route tree is read on the
	// first reserved-word query, after all routes below are registered.
	registry := reserved.NewRegistry(routeSegments(engine))

	linkRepo := repository.NewLinkRepository(db, logger)
	cachedLinks := repository.NewCachedLinkRepository(linkRepo, cache, cfg.Cache.TTL)
	domainRepo := repository.NewDomainRepository(db)
	clickRepo := repository.NewClickRepository(db)

	recorders := []clicks.Recorder{clicks.NewStoreRecorder(clickRepo, logger)}
	if queueCh != nil {
		recorders = append(recorders, clicks.NewQueuePublisher(queueCh, cfg.Queue.ClickQueue))
	}
	recorder := clicks.NewFanoutRecorder(obs.Metrics, logger, recorders...)

	slugs := service.NewSlugGenerator(cachedLinks, registry,
		cfg.App.SlugMinLen, cfg.App.SlugMaxLen, cfg.App.SlugBatchSize)
	resolver := service.NewResolver(cachedLinks, domainRepo, registry,
		cfg.App.PrimaryDomain, cfg.Server.Port, logger)
	redirects := service.NewRedirectEngine(recorder, logger)
	verifier := service.NewBcryptVerifier()
	linkService := service.NewLinkService(cachedLinks, domainRepo, clickRepo,
		slugs, verifier, logger)

	handler := api.NewHandler(linkService, resolver, redirects, verifier,
		domainRepo, obs.Metrics, db, &redisPinger{client: cache},
		cfg.App.BaseURL, logger)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		obs.Metrics.Registry, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(engine,
		middleware.Tenant(resolver),
		middleware.PrimaryOnly(),
		middleware.RateLimit(cache, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
	)

	return engine
}

// NewServer returns the configured HTTP server around the wired router.
func NewServer(cfg *config.Config, obs *observability.Observability,
	db *pgxpool.Pool, cache *redis.Client, queueCh *amqp.Channel) *http.Server {
	router := NewRouter(cfg, obs, db, cache, queueCh)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// routeSegments returns a provider that extracts the top-level path
// segments of the engine's registered routes, ignoring parameters and
// wildcards.
func routeSegments(engine *gin.Engine) func() []string {
	return func() []string {
		var segments []string
		for _, route := range engine.Routes() {
			seg, _, _ := strings.Cut(strings.TrimPrefix(route.Path, "/"), "/")
			if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
				continue
			}
			segments = append(segments, seg)
		}
		return segments
	}
}
