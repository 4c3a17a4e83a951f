package monitoring

import (
	"context"
	"time"

	"github.com/crosslane/relayer"
)

var _ relayer.Monitoring = (*NoopRelayerMonitoring)(nil)

// NoopRelayerMonitoring provides a no-op implementation of Monitoring.
type NoopRelayerMonitoring struct {
	noop relayer.MetricLabeler
}

// NewNoopRelayerMonitoring creates a new noop monitoring instance.
func NewNoopRelayerMonitoring() relayer.Monitoring {
	return &NoopRelayerMonitoring{
		noop: NewNoopRelayerMetricLabeler(),
	}
}

func (n *NoopRelayerMonitoring) Metrics() relayer.MetricLabeler {
	return n.noop
}

var _ relayer.MetricLabeler = (*NoopRelayerMetricLabeler)(nil)

// NoopRelayerMetricLabeler provides a no-op implementation of MetricLabeler
// that doesn't actually record any metrics. Useful for testing or when
// monitoring is disabled.
type NoopRelayerMetricLabeler struct{}

// NewNoopRelayerMetricLabeler creates a new noop metric labeler.
func NewNoopRelayerMetricLabeler() relayer.MetricLabeler {
	return &NoopRelayerMetricLabeler{}
}

// With returns a new noop labeler with the given key-value pairs (no-op).
func (n *NoopRelayerMetricLabeler) With(keyValues ...string) relayer.MetricLabeler {
	return n
}

// All metric recording methods are no-ops.
func (n *NoopRelayerMetricLabeler) IncrementLookupCacheHits(ctx context.Context)   {}
func (n *NoopRelayerMetricLabeler) IncrementLookupCacheMisses(ctx context.Context) {}
func (n *NoopRelayerMetricLabeler) IncrementLookupsResolved(ctx context.Context)   {}
func (n *NoopRelayerMetricLabeler) IncrementEndpointRequests(ctx context.Context)  {}
func (n *NoopRelayerMetricLabeler) IncrementEndpointFailures(ctx context.Context)  {}
func (n *NoopRelayerMetricLabeler) IncrementProofsFetched(ctx context.Context)     {}
func (n *NoopRelayerMetricLabeler) RecordProofFetchDuration(ctx context.Context, duration time.Duration) {
}
