package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"promofeed/internal/broker"
	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/logger"
)

// Base holds the collaborators shared by every entry point.
type Base struct {
	Config    *config.Config
	Logger    logger.Logger
	Publisher broker.Publisher
	Redis     *redis.Client
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

func (b *Base) InitBroker() error {
	publisher, err := broker.NewPublisher(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create publisher: %w", err)
	}
	b.Publisher = publisher
	return nil
}

// InitRedis connects only when the redis cache backend is selected.
func (b *Base) InitRedis(ctx context.Context) error {
	if b.Config.Cache.Type != constants.CacheTypeRedis {
		return nil
	}

	rc := b.Config.Cache.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", rc.Host, rc.Port),
		Password: rc.Password,
		DB:       rc.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	b.Logger.InfowCtx(ctx, "Redis connected successfully", "addr", rdb.Options().Addr)
	b.Redis = rdb
	return nil
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.InfowCtx(ctx, "Shutting down application...")

	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher close error: %w", err))
		}
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.InfowCtx(ctx, "Application exited successfully")
	return nil
}
