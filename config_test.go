package relayer

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfiguration_Validate(t *testing.T) {
	cases := []struct {
		name            string
		config          Configuration
		wantErr         bool
		wantErrContains string
	}{
		{
			name: "valid_minimal",
			config: Configuration{
				RPCEndpoint: "http://localhost:8545",
				Cache:       CacheConfig{Backend: CacheBackendMemory},
			},
			wantErr: false,
		},
		{
			name: "valid_redis_backend",
			config: Configuration{
				RPCEndpoint: "http://localhost:8545",
				Cache: CacheConfig{
					Backend:  CacheBackendRedis,
					RedisURL: "redis://localhost:6379/0",
				},
			},
			wantErr: false,
		},
		{
			name: "missing_rpc_endpoint_fails",
			config: Configuration{
				Cache: CacheConfig{Backend: CacheBackendMemory},
			},
			wantErr:         true,
			wantErrContains: "RPCEndpoint: cannot be blank",
		},
		{
			name: "unknown_cache_backend_fails",
			config: Configuration{
				RPCEndpoint: "http://localhost:8545",
				Cache:       CacheConfig{Backend: "disk"},
			},
			wantErr:         true,
			wantErrContains: "Backend: must be a valid value",
		},
		{
			name: "redis_backend_without_url_fails",
			config: Configuration{
				RPCEndpoint: "http://localhost:8545",
				Cache:       CacheConfig{Backend: CacheBackendRedis},
			},
			wantErr:         true,
			wantErrContains: "RedisURL: cannot be blank",
		},
		{
			name: "negative_build_concurrency_fails",
			config: Configuration{
				RPCEndpoint:      "http://localhost:8545",
				BuildConcurrency: -1,
				Cache:            CacheConfig{Backend: CacheBackendMemory},
			},
			wantErr:         true,
			wantErrContains: "BuildConcurrency: must be no less than 0",
		},
		{
			name: "monitoring_enabled_without_type_fails",
			config: Configuration{
				RPCEndpoint: "http://localhost:8545",
				Cache:       CacheConfig{Backend: CacheBackendMemory},
				Monitoring:  MonitoringConfig{Enabled: true},
			},
			wantErr:         true,
			wantErrContains: "monitoring type is required",
		},
		{
			name: "beholder_without_reader_interval_fails",
			config: Configuration{
				RPCEndpoint: "http://localhost:8545",
				Cache:       CacheConfig{Backend: CacheBackendMemory},
				Monitoring: MonitoringConfig{
					Enabled: true,
					Type:    "beholder",
					Beholder: BeholderConfig{
						TraceSampleRatio:  0.5,
						TraceBatchTimeout: 1,
					},
				},
			},
			wantErr:         true,
			wantErrContains: "metric_reader_interval must be positive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErrContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfiguration_Getters(t *testing.T) {
	cases := []struct {
		name                 string
		config               Configuration
		wantRequestTimeout   time.Duration
		wantRequestInterval  time.Duration
		wantCooldownDuration time.Duration
		wantBuildConcurrency int
		wantMaxEntries       int
		wantExpiry           time.Duration
	}{
		{
			name:                 "defaults_applied_when_empty",
			config:               Configuration{},
			wantRequestTimeout:   10 * time.Second,
			wantRequestInterval:  100 * time.Millisecond,
			wantCooldownDuration: 5 * time.Minute,
			wantBuildConcurrency: 8,
			wantMaxEntries:       1000,
			wantExpiry:           5 * time.Minute,
		},
		{
			name: "custom_values_preserved",
			config: Configuration{
				RequestTimeout:   "3s",
				RequestInterval:  "250ms",
				CooldownDuration: "1m",
				BuildConcurrency: 32,
				Cache: CacheConfig{
					MaxEntries: 50,
					Expiry:     "30s",
				},
			},
			wantRequestTimeout:   3 * time.Second,
			wantRequestInterval:  250 * time.Millisecond,
			wantCooldownDuration: time.Minute,
			wantBuildConcurrency: 32,
			wantMaxEntries:       50,
			wantExpiry:           30 * time.Second,
		},
		{
			name: "defaults_applied_when_unparseable",
			config: Configuration{
				RequestTimeout:   "soon",
				RequestInterval:  "often",
				CooldownDuration: "later",
				Cache: CacheConfig{
					Expiry: "eventually",
				},
			},
			wantRequestTimeout:   10 * time.Second,
			wantRequestInterval:  100 * time.Millisecond,
			wantCooldownDuration: 5 * time.Minute,
			wantBuildConcurrency: 8,
			wantMaxEntries:       1000,
			wantExpiry:           5 * time.Minute,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.wantRequestTimeout, tc.config.GetRequestTimeout())
			require.Equal(t, tc.wantRequestInterval, tc.config.GetRequestInterval())
			require.Equal(t, tc.wantCooldownDuration, tc.config.GetCooldownDuration())
			require.Equal(t, tc.wantBuildConcurrency, tc.config.GetBuildConcurrency())
			require.Equal(t, tc.wantMaxEntries, tc.config.Cache.GetMaxEntries())
			require.Equal(t, tc.wantExpiry, tc.config.Cache.GetExpiry())
		})
	}
}

func TestConfiguration_DecodeTOML(t *testing.T) {
	raw := `
rpc_endpoint = "http://localhost:8545"
verifier_address = "0x1de29ae2da9d9e0e4a43e20e840e7421e29c7a79"
endpoint_request_timeout = "5s"
endpoint_request_interval = "200ms"
endpoint_cooldown_duration = "2m"
build_concurrency = 16
pyroscope_url = "http://pyroscope:4040"
loglevel = "debug"

[Cache]
backend = "lru"
max_entries = 128
expiry = "90s"

[Monitoring]
Enabled = true
Type = "beholder"

[Monitoring.Beholder]
InsecureConnection = true
OtelExporterGRPCEndpoint = "localhost:4317"
MetricReaderInterval = 10
TraceSampleRatio = 1.0
TraceBatchTimeout = 5
`

	var config Configuration
	_, err := toml.Decode(raw, &config)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	require.Equal(t, "http://localhost:8545", config.RPCEndpoint)
	require.Equal(t, "0x1de29ae2da9d9e0e4a43e20e840e7421e29c7a79", config.VerifierAddress)
	require.Equal(t, 5*time.Second, config.GetRequestTimeout())
	require.Equal(t, 200*time.Millisecond, config.GetRequestInterval())
	require.Equal(t, 2*time.Minute, config.GetCooldownDuration())
	require.Equal(t, 16, config.GetBuildConcurrency())
	require.Equal(t, "http://pyroscope:4040", config.PyroscopeURL)
	require.Equal(t, zapcore.DebugLevel, config.LogLevel)

	require.Equal(t, CacheBackendLRU, config.Cache.Backend)
	require.Equal(t, 128, config.Cache.GetMaxEntries())
	require.Equal(t, 90*time.Second, config.Cache.GetExpiry())

	require.True(t, config.Monitoring.Enabled)
	require.Equal(t, "beholder", config.Monitoring.Type)
	require.Equal(t, int64(10), config.Monitoring.Beholder.MetricReaderInterval)
}
