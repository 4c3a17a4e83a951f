package relayer

import (
	"context"
	"errors"
	"time"

	"github.com/crosslane/relayer/protocol"
)

// ErrVerifierUnreachable tags verification-info call failures where the node
// never produced a revert: timeouts, connectivity failures, malformed
// requests. Resolution must abort on these instead of treating them as
// "no offchain data required".
var ErrVerifierUnreachable = errors.New("verifier contract could not be called")

// OffchainVerifier is a proxy to an onchain verification module that follows
// the offchain-lookup convention: its verification-info entry point reverts
// with a payload describing where the proof for a message can be fetched.
// It should be implemented by chain-specific callers.
type OffchainVerifier interface {
	// Address returns the onchain address of the verification module.
	Address() protocol.UnknownAddress
	// GetOffchainVerifyInfo simulates the verification-info call with the
	// canonical message bytes. A nil return means the call succeeded, which
	// for a correctly configured module never happens. The returned error's
	// text carries the revert payload when the module reverted; transport
	// failures are wrapped in ErrVerifierUnreachable.
	GetOffchainVerifyInfo(ctx context.Context, messageBytes []byte) error
}

// VerifierProvider resolves a verification module address to a typed proxy.
type VerifierProvider interface {
	// GetVerifier returns the proxy for the module deployed at address.
	GetVerifier(ctx context.Context, address protocol.UnknownAddress) (OffchainVerifier, error)
}

// ProofBuilder produces the offchain verification proof for a message, or
// nil when no proof could be obtained and other strategies should be tried.
type ProofBuilder interface {
	// Build resolves the lookup descriptor for (verifierAddress, message) and
	// fetches proof bytes from the described endpoints.
	Build(ctx context.Context, verifierAddress protocol.UnknownAddress, message protocol.Message) (protocol.ByteSlice, error)
}

// Monitoring provides all core monitoring functionality for the relayer. Also can be implemented as a no-op.
type Monitoring interface {
	// Metrics returns the metrics labeler for the relayer.
	Metrics() MetricLabeler
}

// MetricLabeler provides all metric recording functionality for the relayer.
type MetricLabeler interface {
	// With returns a new metrics labeler with the given key-value pairs.
	With(keyValues ...string) MetricLabeler
	// IncrementLookupCacheHits increments the counter for lookups served from cache.
	IncrementLookupCacheHits(ctx context.Context)
	// IncrementLookupCacheMisses increments the counter for lookups requiring a contract call.
	IncrementLookupCacheMisses(ctx context.Context)
	// IncrementLookupsResolved increments the counter for successfully resolved lookup descriptors.
	IncrementLookupsResolved(ctx context.Context)
	// IncrementEndpointRequests increments the counter for offchain endpoint requests issued.
	IncrementEndpointRequests(ctx context.Context)
	// IncrementEndpointFailures increments the counter for offchain endpoint requests that failed.
	IncrementEndpointFailures(ctx context.Context)
	// IncrementProofsFetched increments the counter for proofs successfully fetched.
	IncrementProofsFetched(ctx context.Context)
	// RecordProofFetchDuration records the duration of a full endpoint fetch, fallbacks included.
	RecordProofFetchDuration(ctx context.Context, duration time.Duration)
}
