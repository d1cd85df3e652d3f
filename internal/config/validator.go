package config

import (
	"fmt"
	"net/url"
	"strings"

	"promofeed/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateStatic checks values that can be verified without touching the network.
func ValidateStatic(cfg *Config) error {
	var errors []error

	validators := []func(*Config) error{
		func(c *Config) error { return validateServer(c.Server) },
		func(c *Config) error { return validateUpstream(c.Upstream) },
		func(c *Config) error { return validateStorage(c.Storage) },
		func(c *Config) error { return validateCache(c.Cache) },
		func(c *Config) error { return validateBroker(c.Broker) },
		func(c *Config) error { return validateRefresh(c.Refresh) },
		func(c *Config) error { return validateExtraction(c.Extraction) },
		func(c *Config) error { return validateLogging(c.Logging) },
		func(c *Config) error { return validateCircuitBreaker(c.CircuitBreaker) },
	}

	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateUpstream(cfg UpstreamConfig) error {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ValidationError{
				Field:   "upstream.base_url",
				Message: fmt.Sprintf("invalid URL %q", cfg.BaseURL),
			}
		}
	}

	if cfg.Timeout <= 0 {
		return &ValidationError{
			Field:   "upstream.timeout",
			Message: "timeout must be positive",
		}
	}

	if cfg.Retry.MaxAttempts < 1 {
		return &ValidationError{
			Field:   "upstream.retry.max_attempts",
			Message: "at least one attempt is required",
		}
	}

	if cfg.Retry.Multiplier < 1 {
		return &ValidationError{
			Field:   "upstream.retry.multiplier",
			Message: "multiplier must be >= 1",
		}
	}

	return nil
}

func validateStorage(cfg StorageConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Bucket == "" {
		return &ValidationError{
			Field:   "storage.bucket",
			Message: "bucket is required when storage is enabled",
		}
	}

	if cfg.Key == "" {
		return &ValidationError{
			Field:   "storage.key",
			Message: "key is required when storage is enabled",
		}
	}

	return nil
}

func validateCache(cfg CacheConfig) error {
	switch cfg.Type {
	case constants.CacheTypeMemory:
		return nil
	case constants.CacheTypeRedis:
		if cfg.Redis.Host == "" {
			return &ValidationError{
				Field:   "cache.redis.host",
				Message: "redis host is required",
			}
		}
		if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
			return &ValidationError{
				Field:   "cache.redis.port",
				Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Redis.Port),
			}
		}
		if cfg.Redis.TTLSeconds < 0 {
			return &ValidationError{
				Field:   "cache.redis.ttl_seconds",
				Message: "ttl must not be negative",
			}
		}
		return nil
	default:
		return &ValidationError{
			Field:   "cache.type",
			Message: fmt.Sprintf("unsupported cache type: %s (supported: memory, redis)", cfg.Type),
		}
	}
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case constants.BrokerTypeLog:
		return nil
	case constants.BrokerTypeKafka:
		return validateKafka(cfg.Kafka)
	case "":
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unsupported broker type: %s (supported: kafka, log)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if strings.TrimSpace(broker) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "broker.kafka.topic",
			Message: "topic is required",
		}
	}

	return nil
}

func validateRefresh(cfg RefreshConfig) error {
	if cfg.Enabled && cfg.Interval <= 0 {
		return &ValidationError{
			Field:   "refresh.interval",
			Message: "interval must be positive when refresh is enabled",
		}
	}

	if !constants.IsValidFrame(cfg.DefaultFrame) {
		return &ValidationError{
			Field:   "refresh.default_frame",
			Message: fmt.Sprintf("unknown time frame: %s", cfg.DefaultFrame),
		}
	}

	return nil
}

func validateExtraction(cfg ExtractionConfig) error {
	if cfg.MaxDepth < 1 {
		return &ValidationError{
			Field:   "extraction.max_depth",
			Message: fmt.Sprintf("max depth must be at least 1, got %d", cfg.MaxDepth),
		}
	}
	return nil
}

func validateLogging(cfg LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unsupported log level: %s", cfg.Level),
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "console":
	default:
		return &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unsupported log format: %s", cfg.Format),
		}
	}

	return nil
}

func validateCircuitBreaker(cfg CircuitBreakerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		return &ValidationError{
			Field:   "circuit_breaker.failure_ratio",
			Message: "failure ratio must be in (0, 1]",
		}
	}

	if cfg.Timeout <= 0 {
		return &ValidationError{
			Field:   "circuit_breaker.timeout",
			Message: "timeout must be positive",
		}
	}

	return nil
}
