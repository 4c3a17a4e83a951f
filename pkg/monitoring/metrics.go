package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/smartcontractkit/chainlink-common/pkg/beholder"
	"github.com/smartcontractkit/chainlink-common/pkg/metrics"

	"github.com/crosslane/relayer"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// RelayerMetrics provides all metrics emitted by the relayer.
type RelayerMetrics struct {
	// Lookup resolution metrics
	lookupCacheHitsCounter   metric.Int64Counter
	lookupCacheMissesCounter metric.Int64Counter
	lookupsResolvedCounter   metric.Int64Counter

	// Offchain endpoint metrics
	endpointRequestsCounter   metric.Int64Counter
	endpointFailuresCounter   metric.Int64Counter
	proofsFetchedCounter      metric.Int64Counter
	proofFetchDurationSeconds metric.Float64Histogram
}

func InitMetrics() (rm *RelayerMetrics, err error) {
	rm = &RelayerMetrics{}

	rm.lookupCacheHitsCounter, err = beholder.GetMeter().Int64Counter(
		"relayer_lookup_cache_hits_total",
		metric.WithDescription("Total number of lookups served from the call cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register lookup cache hits counter: %w", err)
	}

	rm.lookupCacheMissesCounter, err = beholder.GetMeter().Int64Counter(
		"relayer_lookup_cache_misses_total",
		metric.WithDescription("Total number of lookups requiring a verifier contract call"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register lookup cache misses counter: %w", err)
	}

	rm.lookupsResolvedCounter, err = beholder.GetMeter().Int64Counter(
		"relayer_lookups_resolved_total",
		metric.WithDescription("Total number of offchain lookup descriptors resolved"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register lookups resolved counter: %w", err)
	}

	rm.endpointRequestsCounter, err = beholder.GetMeter().Int64Counter(
		"relayer_endpoint_requests_total",
		metric.WithDescription("Total number of offchain endpoint requests issued"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register endpoint requests counter: %w", err)
	}

	rm.endpointFailuresCounter, err = beholder.GetMeter().Int64Counter(
		"relayer_endpoint_failures_total",
		metric.WithDescription("Total number of offchain endpoint requests that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register endpoint failures counter: %w", err)
	}

	rm.proofsFetchedCounter, err = beholder.GetMeter().Int64Counter(
		"relayer_proofs_fetched_total",
		metric.WithDescription("Total number of offchain proofs fetched successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register proofs fetched counter: %w", err)
	}

	rm.proofFetchDurationSeconds, err = beholder.GetMeter().Float64Histogram(
		"relayer_proof_fetch_duration_seconds",
		metric.WithDescription("Total duration of fetching one proof, endpoint fallbacks included"),
		metric.WithUnit("seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register proof fetch duration histogram: %w", err)
	}

	return rm, nil
}

// Note: due to the OTEL specification, all histogram buckets must be defined
// when the beholder client is created.
func MetricViews() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "relayer_proof_fetch_duration_seconds"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			}},
		),
	}
}

var _ relayer.MetricLabeler = (*RelayerMetricLabeler)(nil)

type RelayerMetricLabeler struct {
	metrics.Labeler
	rm *RelayerMetrics
}

func NewRelayerMetricLabeler(labeler metrics.Labeler, rm *RelayerMetrics) relayer.MetricLabeler {
	return &RelayerMetricLabeler{
		Labeler: labeler,
		rm:      rm,
	}
}

func (c *RelayerMetricLabeler) With(keyValues ...string) relayer.MetricLabeler {
	return &RelayerMetricLabeler{c.Labeler.With(keyValues...), c.rm}
}

func (c *RelayerMetricLabeler) IncrementLookupCacheHits(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.lookupCacheHitsCounter.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *RelayerMetricLabeler) IncrementLookupCacheMisses(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.lookupCacheMissesCounter.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *RelayerMetricLabeler) IncrementLookupsResolved(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.lookupsResolvedCounter.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *RelayerMetricLabeler) IncrementEndpointRequests(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.endpointRequestsCounter.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *RelayerMetricLabeler) IncrementEndpointFailures(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.endpointFailuresCounter.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *RelayerMetricLabeler) IncrementProofsFetched(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.proofsFetchedCounter.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *RelayerMetricLabeler) RecordProofFetchDuration(ctx context.Context, duration time.Duration) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.rm.proofFetchDurationSeconds.Record(ctx, duration.Seconds(), metric.WithAttributes(otelLabels...))
}
