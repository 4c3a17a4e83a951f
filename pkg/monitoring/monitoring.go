package monitoring

import (
	"fmt"

	"github.com/grafana/pyroscope-go"

	"github.com/smartcontractkit/chainlink-common/pkg/beholder"
	"github.com/smartcontractkit/chainlink-common/pkg/metrics"

	"github.com/crosslane/relayer"
)

const defaultPyroscopeURL = "http://pyroscope:4040"

var _ relayer.Monitoring = (*RelayerBeholderMonitoring)(nil)

// RelayerBeholderMonitoring provides beholder-based monitoring for the relayer.
type RelayerBeholderMonitoring struct {
	metrics relayer.MetricLabeler
}

// InitMonitoring initializes the beholder monitoring system for the relayer.
func InitMonitoring(config beholder.Config, pyroscopeURL string) (relayer.Monitoring, error) {
	// Note: due to OTEL spec, all histogram buckets must be defined when the beholder client is created.
	config.MetricViews = MetricViews()

	// Create the beholder client
	client, err := beholder.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create beholder client: %w", err)
	}

	// Set the beholder client and global otel providers
	beholder.SetClient(client)
	beholder.SetGlobalOtelProviders()

	// Initialize the relayer metrics
	relayerMetrics, err := InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize relayer metrics: %w", err)
	}

	if pyroscopeURL == "" {
		pyroscopeURL = defaultPyroscopeURL
	}

	// Initialize pyroscope for continuous profiling
	if _, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "relayer",
		ServerAddress:   pyroscopeURL,
		Logger:          pyroscope.StandardLogger,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileBlockDuration,
			pyroscope.ProfileMutexDuration,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize pyroscope client: %w", err)
	}

	return &RelayerBeholderMonitoring{
		metrics: NewRelayerMetricLabeler(metrics.NewLabeler(), relayerMetrics),
	}, nil
}

func (m *RelayerBeholderMonitoring) Metrics() relayer.MetricLabeler {
	return m.metrics
}
