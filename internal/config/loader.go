package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"promofeed/internal/constants"
)

// LoadConfig reads configFile (YAML) on top of the built-in defaults. An empty
// configFile loads defaults and environment variables only.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("upstream.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("upstream.retry.max_attempts", 3)
	v.SetDefault("upstream.retry.initial_interval", "1s")
	v.SetDefault("upstream.retry.max_interval", "10s")
	v.SetDefault("upstream.retry.multiplier", 2.0)

	v.SetDefault("storage.key", constants.DefaultStorageKey)
	v.SetDefault("storage.region", constants.DefaultStorageRegion)

	v.SetDefault("cache.type", constants.CacheTypeMemory)
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.ttl_seconds", constants.DefaultTTLSeconds)

	v.SetDefault("broker.type", constants.BrokerTypeLog)
	v.SetDefault("broker.kafka.topic", constants.DefaultKafkaTopic)

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval", constants.DefaultRefreshInterval)
	v.SetDefault("refresh.default_frame", constants.FrameAll)

	v.SetDefault("extraction.max_depth", constants.DefaultExtractDepth)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.cloudwatch.namespace", "PromoFeed")

	v.SetDefault("rate_limit.rps", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.cleanup_interval", 300)
	v.SetDefault("rate_limit.max_age", 600)

	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", "60s")
	v.SetDefault("circuit_breaker.timeout", "60s")
	v.SetDefault("circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 3)

	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampler.type", "always_on")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("upstream.base_url", "UPSTREAM_BASE_URL")
	v.BindEnv("upstream.timeout", "UPSTREAM_TIMEOUT")

	v.BindEnv("storage.enabled", "STORAGE_ENABLED")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.key", "STORAGE_KEY")
	v.BindEnv("storage.region", "STORAGE_REGION")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")

	v.BindEnv("cache.type", "CACHE_TYPE")
	v.BindEnv("cache.redis.host", "CACHE_REDIS_HOST")
	v.BindEnv("cache.redis.port", "CACHE_REDIS_PORT")
	v.BindEnv("cache.redis.password", "CACHE_REDIS_PASSWORD")
	v.BindEnv("cache.redis.db", "CACHE_REDIS_DB")

	v.BindEnv("broker.type", "BROKER_TYPE")
	v.BindEnv("broker.kafka.topic", "BROKER_KAFKA_TOPIC")

	v.BindEnv("server.port", "SERVER_PORT")

	v.BindEnv("logging.level", "LOGGING_LEVEL")
	v.BindEnv("logging.format", "LOGGING_FORMAT")

	v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	v.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if brokersEnv := v.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
