package relayer

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap/zapcore"
)

// Cache backend names accepted by CacheConfig.Backend.
const (
	CacheBackendMemory = "memory"
	CacheBackendLRU    = "lru"
	CacheBackendRedis  = "redis"
)

type Configuration struct {
	RPCEndpoint      string `toml:"rpc_endpoint"`
	VerifierAddress  string `toml:"verifier_address"`
	RequestTimeout   string `toml:"endpoint_request_timeout"`
	RequestInterval  string `toml:"endpoint_request_interval"`
	CooldownDuration string `toml:"endpoint_cooldown_duration"`
	BuildConcurrency int    `toml:"build_concurrency"`
	PyroscopeURL     string `toml:"pyroscope_url"`
	// LogLevel defaults to info, the zero level.
	LogLevel   zapcore.Level    `toml:"loglevel"`
	Cache      CacheConfig      `toml:"Cache"`
	Monitoring MonitoringConfig `toml:"Monitoring"`
}

func (c *Configuration) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.RPCEndpoint, validation.Required),
		validation.Field(&c.BuildConcurrency, validation.Min(0)),
		validation.Field(&c.Cache),
	)
	if err != nil {
		return err
	}

	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring config validation failed: %w", err)
	}

	return nil
}

// GetRequestTimeout bounds every single offchain endpoint request.
func (c *Configuration) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetRequestInterval spaces outbound endpoint requests (self rate limiting).
func (c *Configuration) GetRequestInterval() time.Duration {
	d, err := time.ParseDuration(c.RequestInterval)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// GetCooldownDuration is the wait applied after an endpoint rate-limits us
// and its 429 response carries no Retry-After header.
func (c *Configuration) GetCooldownDuration() time.Duration {
	d, err := time.ParseDuration(c.CooldownDuration)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// GetBuildConcurrency caps how many proof builds run at once in a batch.
func (c *Configuration) GetBuildConcurrency() int {
	if c.BuildConcurrency <= 0 {
		return 8
	}
	return c.BuildConcurrency
}

// CacheConfig selects and tunes the lookup cache backend.
type CacheConfig struct {
	// Backend is one of memory, lru, redis.
	Backend string `toml:"backend"`
	// MaxEntries bounds the lru backend.
	MaxEntries int `toml:"max_entries"`
	// Expiry is the entry TTL for the lru and redis backends.
	Expiry string `toml:"expiry"`
	// RedisURL is the connection URL for the redis backend.
	RedisURL string `toml:"redis_url"`
}

func (cc CacheConfig) Validate() error {
	return validation.ValidateStruct(&cc,
		validation.Field(&cc.Backend, validation.Required, validation.In(CacheBackendMemory, CacheBackendLRU, CacheBackendRedis)),
		validation.Field(&cc.MaxEntries, validation.Min(0)),
		validation.Field(&cc.RedisURL, validation.When(cc.Backend == CacheBackendRedis, validation.Required)),
	)
}

func (cc CacheConfig) GetMaxEntries() int {
	if cc.MaxEntries <= 0 {
		return 1000
	}
	return cc.MaxEntries
}

func (cc CacheConfig) GetExpiry() time.Duration {
	d, err := time.ParseDuration(cc.Expiry)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// MonitoringConfig provides monitoring configuration for the relayer.
type MonitoringConfig struct {
	// Enabled enables the monitoring system.
	Enabled bool `toml:"Enabled"`
	// Type is the type of monitoring system to use (beholder, noop).
	Type string `toml:"Type"`
	// Beholder is the configuration for the beholder client (Not required if type is noop).
	Beholder BeholderConfig `toml:"Beholder"`
}

// BeholderConfig wraps OpenTelemetry configuration for the beholder client.
type BeholderConfig struct {
	// InsecureConnection disables TLS for the beholder client.
	InsecureConnection bool `toml:"InsecureConnection"`
	// CACertFile is the path to the CA certificate file for the beholder client.
	CACertFile string `toml:"CACertFile"`
	// OtelExporterGRPCEndpoint is the endpoint for the beholder client to export to the collector.
	OtelExporterGRPCEndpoint string `toml:"OtelExporterGRPCEndpoint"`
	// OtelExporterHTTPEndpoint is the endpoint for the beholder client to export to the collector.
	OtelExporterHTTPEndpoint string `toml:"OtelExporterHTTPEndpoint"`
	// LogStreamingEnabled enables log streaming to the collector.
	LogStreamingEnabled bool `toml:"LogStreamingEnabled"`
	// MetricReaderInterval is the interval to scrape metrics (in seconds).
	MetricReaderInterval int64 `toml:"MetricReaderInterval"`
	// TraceSampleRatio is the ratio of traces to sample.
	TraceSampleRatio float64 `toml:"TraceSampleRatio"`
	// TraceBatchTimeout is the timeout for a batch of traces.
	TraceBatchTimeout int64 `toml:"TraceBatchTimeout"`
}

// Validate performs validation on the monitoring configuration.
func (m *MonitoringConfig) Validate() error {
	if m.Enabled && m.Type == "" {
		return fmt.Errorf("monitoring type is required when monitoring is enabled")
	}

	if m.Enabled && m.Type == "beholder" {
		if err := m.Beholder.Validate(); err != nil {
			return fmt.Errorf("beholder config validation failed: %w", err)
		}
	}

	return nil
}

// Validate performs validation on the beholder configuration.
func (b *BeholderConfig) Validate() error {
	if b.MetricReaderInterval <= 0 {
		return fmt.Errorf("metric_reader_interval must be positive, got %d", b.MetricReaderInterval)
	}

	if b.TraceSampleRatio < 0 || b.TraceSampleRatio > 1 {
		return fmt.Errorf("trace_sample_ratio must be between 0 and 1, got %f", b.TraceSampleRatio)
	}

	if b.TraceBatchTimeout <= 0 {
		return fmt.Errorf("trace_batch_timeout must be positive, got %d", b.TraceBatchTimeout)
	}

	return nil
}
