package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

// EnvPrefix scopes every environment variable read by Load. Sections are
// separated by a double underscore, e.g. MOCKABIS_SCHEDULER__FAILURE_DELAY.
const EnvPrefix = "MOCKABIS_"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Logger    LoggerConfig    `koanf:"logger"`
	Store     StoreConfig     `koanf:"store"`
	Redis     RedisConfig     `koanf:"redis"`
	Postgres  PostgresConfig  `koanf:"postgres"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Engine    EngineConfig    `koanf:"engine"`
	Biometric BiometricConfig `koanf:"biometric"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type StoreConfig struct {
	Backend string `koanf:"backend" validate:"oneof=memory redis postgres"`
}

// RedisConfig is only consulted when the redis backend is selected.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// PostgresConfig is only consulted when the postgres backend is selected.
type PostgresConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// KafkaConfig drives both the outbound delivery channel and the optional
// inbound listener. With no brokers, deliveries are written to the log.
type KafkaConfig struct {
	Brokers         []string `koanf:"brokers"`
	OutboundTopic   string   `koanf:"outbound_topic" validate:"required"`
	InboundTopic    string   `koanf:"inbound_topic" validate:"required"`
	ConsumerGroup   string   `koanf:"consumer_group" validate:"required"`
	ListenerEnabled bool     `koanf:"listener_enabled"`
	Partitions      int32    `koanf:"partitions" validate:"min=1"`
	Replication     int16    `koanf:"replication" validate:"min=1"`
}

type SchedulerConfig struct {
	FailureDelay   time.Duration `koanf:"failure_delay" validate:"min=0"`
	MaxInFlight    int64         `koanf:"max_in_flight" validate:"min=1"`
	PublishTimeout time.Duration `koanf:"publish_timeout" validate:"required"`
}

type EngineConfig struct {
	IdentifyDelay time.Duration `koanf:"identify_delay" validate:"min=0"`
	FindDuplicate bool          `koanf:"find_duplicate"`
}

type BiometricConfig struct {
	Timeout          time.Duration `koanf:"timeout" validate:"required"`
	Retries          int           `koanf:"retries" validate:"min=0"`
	BreakerMaxFails  uint32        `koanf:"breaker_max_fails" validate:"min=1"`
	BreakerOpenFor   time.Duration `koanf:"breaker_open_for" validate:"required"`
	BreakerHalfOpens uint32        `koanf:"breaker_half_opens" validate:"min=1"`
}

// Defaults are applied before the environment so every variable is optional.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                  "development",
		"server.addr":                  ":8080",
		"server.read_timeout":          "10s",
		"server.write_timeout":         "10s",
		"server.idle_timeout":          "60s",
		"server.shutdown_timeout":      "15s",
		"logger.level":                 "info",
		"logger.format":                "json",
		"store.backend":                BackendMemory,
		"redis.pool_size":              10,
		"redis.min_idle_conns":         2,
		"redis.dial_timeout":           "5s",
		"redis.read_timeout":           "3s",
		"redis.write_timeout":          "3s",
		"postgres.max_open_conns":      10,
		"postgres.max_idle_conns":      5,
		"postgres.conn_max_lifetime":   "30m",
		"kafka.outbound_topic":         "abis-outbound",
		"kafka.inbound_topic":          "abis-inbound",
		"kafka.consumer_group":         "mock-abis",
		"kafka.listener_enabled":       false,
		"kafka.partitions":             1,
		"kafka.replication":            1,
		"scheduler.failure_delay":      "0s",
		"scheduler.max_in_flight":      32,
		"scheduler.publish_timeout":    "10s",
		"engine.identify_delay":        "0s",
		"engine.find_duplicate":        true,
		"biometric.timeout":            "5s",
		"biometric.retries":            2,
		"biometric.breaker_max_fails":  5,
		"biometric.breaker_open_for":   "30s",
		"biometric.breaker_half_opens": 1,
	}
}

// Load reads defaults, then MOCKABIS_* environment variables, then validates.
func Load() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
		if key == "kafka.brokers" {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for the %s backend", BackendRedis)
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the %s backend", BackendPostgres)
		}
	}
	if c.Kafka.ListenerEnabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when the listener is enabled")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
