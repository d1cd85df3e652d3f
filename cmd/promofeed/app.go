package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"promofeed/internal/api"
	"promofeed/internal/cache"
	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/extraction"
	"promofeed/internal/feed"
	"promofeed/internal/logger"
	"promofeed/internal/source"
	"promofeed/pkg/bootstrap"
	"promofeed/pkg/health"
	"promofeed/pkg/idgen"
	"promofeed/pkg/logging"
	"promofeed/pkg/metrics"
	"promofeed/pkg/ratelimit"
	"promofeed/pkg/tolerantjson"
	"promofeed/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	extractor      *extraction.Extractor
	service        *feed.Service
	rateLimit      *ratelimit.Store
	health         *health.CheckerRegistry
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceName)
	}
	return &App{
		Base:   bootstrap.NewBase(cfg, log),
		health: health.NewCheckerRegistry(),
	}
}

func newDecoder(cfg config.ExtractionConfig) *tolerantjson.Decoder {
	if cfg.Repair {
		return tolerantjson.NewDecoder(tolerantjson.WithRepair())
	}
	return tolerantjson.NewDecoder()
}

// newExtractor wires the extractor used by the server and the one-shot commands.
func newExtractor(cfg config.ExtractionConfig, log logger.Logger) *extraction.Extractor {
	return extraction.New(
		extraction.WithDecoder(newDecoder(cfg)),
		extraction.WithMaxDepth(cfg.MaxDepth),
		extraction.WithIDGenerator(idgen.UUID()),
		extraction.WithLogger(log),
		extraction.WithObserver(metrics.IncExtractionResult),
	)
}

// newFeedService builds the refresh pipeline. It does not start any goroutine.
// registry may be nil.
func newFeedService(ctx context.Context, b *bootstrap.Base, extractor *extraction.Extractor, registry *health.CheckerRegistry) (*feed.Service, error) {
	cfg := b.Config
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("upstream.base_url is required")
	}

	base := source.NewAPIFetcher(cfg.Upstream, newDecoder(cfg.Extraction))
	fetcher := source.NewFetcher(cfg.Upstream, cfg.CircuitBreaker, base, b.Logger)
	if cb, ok := fetcher.(*source.CircuitBreakerFetcher); ok && registry != nil {
		registry.RegisterOptional(health.NewFuncChecker("upstream_circuit", func(context.Context) error {
			if state := cb.State(); state == "open" {
				return fmt.Errorf("circuit breaker is %s", state)
			}
			return nil
		}))
	}

	var client redis.UniversalClient
	if b.Redis != nil {
		client = b.Redis
	}
	repo, err := cache.NewRepository(cfg.Cache, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	opts := []feed.Option{}

	if cfg.Storage.Enabled {
		s3Client, err := source.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		opts = append(opts, feed.WithStorage(source.NewS3Source(s3Client, cfg.Storage.Bucket, cfg.Storage.Key, extractor, b.Logger)))
	}

	collector, err := newCollector(ctx, cfg.Metrics, b.Logger)
	if err != nil {
		return nil, err
	}
	opts = append(opts, feed.WithCollector(collector))

	svc, err := feed.NewService(fetcher, extractor, repo, b.Publisher, cfg.Refresh, b.Logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed service: %w", err)
	}
	return svc, nil
}

func newCollector(ctx context.Context, cfg config.MetricsConfig, log logger.Logger) (metrics.Collector, error) {
	prom := metrics.NewPrometheusCollector()
	if !cfg.CloudWatch.Enabled {
		return prom, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.CloudWatch.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for CloudWatch: %w", err)
	}
	cw := metrics.NewCloudWatchCollector(cloudwatch.NewFromConfig(awsCfg), cfg.CloudWatch.Namespace, cfg.CloudWatch.Dimensions, log)
	return metrics.MultiCollector{prom, cw}, nil
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.Register()

	tp, err := tracing.Init(a.Config.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.InitRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	if a.Redis != nil {
		a.health.Register(health.NewRedisChecker(a.Redis))
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	a.extractor = newExtractor(a.Config.Extraction, a.Logger)
	svc, err := newFeedService(ctx, a.Base, a.extractor, a.health)
	if err != nil {
		return err
	}
	a.service = svc

	a.health.RegisterOptional(health.NewFuncChecker("upstream", func(context.Context) error {
		if st := a.service.Status(); st.LastError != "" {
			return errors.New(st.LastError)
		}
		return nil
	}))

	a.initHTTPServer()
	return nil
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)

	opts := api.RouterOptions{Health: a.health}
	if a.Config.Tracing.Enabled {
		opts.ServiceName = a.Config.Tracing.ServiceName
		if opts.ServiceName == "" {
			opts.ServiceName = constants.ServiceName
		}
	}
	if a.Config.RateLimit.Enabled {
		a.rateLimit = ratelimit.NewStore(ratelimit.RateLimitConfig{
			RPS:             a.Config.RateLimit.RPS,
			Burst:           a.Config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.RateLimit.MaxAge) * time.Second,
		})
		opts.RateLimit = a.rateLimit
		a.Logger.Infow("Rate limiting enabled", "rps", a.Config.RateLimit.RPS, "burst", a.Config.RateLimit.Burst)
	}

	handler := api.NewHandler(a.service, a.extractor, a.Logger)
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      api.NewRouter(handler, a.Logger, opts),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.Config.Refresh.Enabled {
		g.Go(func() error {
			refreshCtx := logging.WithServiceName(gCtx, constants.ServiceName)
			a.Logger.InfowCtx(refreshCtx, "Starting feed refresher",
				"interval", a.Config.Refresh.Interval,
				"timeframe", a.Config.Refresh.DefaultFrame,
			)
			return a.service.StartRefresher(refreshCtx)
		})
	}

	if a.rateLimit != nil {
		g.Go(func() error {
			a.rateLimit.Run(gCtx)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error
		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}
		return errs
	})
}
