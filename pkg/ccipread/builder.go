package ccipread

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"golang.org/x/sync/errgroup"

	"github.com/crosslane/relayer"
	"github.com/crosslane/relayer/pkg/callcache"
	"github.com/crosslane/relayer/protocol"
)

// verifyInfoFunction names the verifier call whose revert carries the lookup
// payload. It is also the function component of every cache key.
const verifyInfoFunction = "getOffchainVerifyInfo"

// MetadataBuilder resolves offchain lookups end to end: decide whether a
// verifier wants offchain data for a message, fetch that data, and hand back
// the raw proof bytes the relayer submits alongside the message.
type MetadataBuilder struct {
	lggr        logger.Logger
	verifiers   relayer.VerifierProvider
	cache       callcache.Cache
	fetcher     *Fetcher
	metrics     relayer.MetricLabeler
	concurrency int
}

var _ relayer.ProofBuilder = (*MetadataBuilder)(nil)

// NewMetadataBuilder creates a builder. concurrency bounds BuildBatch; values
// below one leave the batch unbounded.
func NewMetadataBuilder(
	lggr logger.Logger,
	verifiers relayer.VerifierProvider,
	cache callcache.Cache,
	fetcher *Fetcher,
	metrics relayer.MetricLabeler,
	concurrency int,
) (*MetadataBuilder, error) {
	mb := &MetadataBuilder{
		lggr:        lggr,
		verifiers:   verifiers,
		cache:       cache,
		fetcher:     fetcher,
		metrics:     metrics,
		concurrency: concurrency,
	}

	if err := mb.validate(); err != nil {
		return nil, fmt.Errorf("failed to create metadata builder: %w", err)
	}

	return mb, nil
}

func (b *MetadataBuilder) validate() error {
	var errs []error
	appendIfNil := func(field any, fieldName string) {
		if field == nil {
			errs = append(errs, fmt.Errorf("%s is not set", fieldName))
		}
	}
	appendIfNil(b.lggr, "lggr")
	appendIfNil(b.verifiers, "verifiers")
	appendIfNil(b.cache, "cache")
	appendIfNil(b.metrics, "metrics")
	if b.fetcher == nil {
		errs = append(errs, errors.New("fetcher is not set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("metadata builder is not fully initialized: %w", errors.Join(errs...))
	}

	return nil
}

// Resolve determines whether the verifier requires offchain data for message
// and returns the lookup descriptor when it does. nil means no offchain data
// is needed: the verifier call succeeded, or its revert carried no payload.
//
// The resolved value is looked up in the cache first; on a miss the verifier
// is called and its revert decoded. Either way the result is written back
// under the same key, so the cache always holds the most recently validated
// value (refresh-on-read).
func (b *MetadataBuilder) Resolve(
	ctx context.Context,
	verifier relayer.OffchainVerifier,
	message protocol.Message,
) (*OffchainLookup, error) {
	messageBytes, err := message.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	verifierAddress := verifier.Address()
	key := callcache.NewKey(verifierAddress, verifyInfoFunction, messageBytes)
	lggr := logger.With(b.lggr,
		"verifierAddress", verifierAddress.String(),
		"function", verifyInfoFunction,
	)

	lookup, found, err := callcache.Lookup[OffchainLookup](ctx, b.cache, key)
	if err != nil {
		return nil, err
	}

	if found {
		b.metrics.IncrementLookupCacheHits(ctx)
	} else {
		b.metrics.IncrementLookupCacheMisses(ctx)

		callErr := verifier.GetOffchainVerifyInfo(ctx, messageBytes)
		if callErr == nil {
			lggr.Infow("Verifier call succeeded, no offchain lookup required")
			return nil, nil
		}
		if errors.Is(callErr, relayer.ErrVerifierUnreachable) {
			return nil, callErr
		}

		decoded, decodeErr := DecodeFromRevert(callErr.Error())
		if decodeErr != nil {
			lggr.Errorw("Failed to decode verifier revert", "err", decodeErr)
			return nil, decodeErr
		}
		if decoded == nil {
			lggr.Infow("Verifier revert carried no offchain lookup payload")
			return nil, nil
		}
		lookup = *decoded
	}

	if err := callcache.Store(ctx, b.cache, key, lookup); err != nil {
		return nil, err
	}

	b.metrics.IncrementLookupsResolved(ctx)
	return &lookup, nil
}

// Build resolves the verifier at verifierAddress and fetches proof bytes for
// message. (nil, nil) means no offchain proof applies or none could be
// obtained from any endpoint; the relayer is expected to try its other
// verification strategies in that case.
func (b *MetadataBuilder) Build(
	ctx context.Context,
	verifierAddress protocol.UnknownAddress,
	message protocol.Message,
) (protocol.ByteSlice, error) {
	verifier, err := b.verifiers.GetVerifier(ctx, verifierAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve verifier %s: %w", verifierAddress, err)
	}

	lookup, err := b.Resolve(ctx, verifier, message)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offchain metadata: %w", err)
	}
	if lookup == nil {
		return nil, nil
	}

	fetchStart := time.Now()
	proof, err := b.fetcher.Fetch(ctx, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offchain metadata: %w", err)
	}
	if proof == nil {
		b.lggr.Infow("All offchain endpoints exhausted without proof data",
			"verifierAddress", verifierAddress.String(),
		)
		return nil, nil
	}

	b.metrics.IncrementProofsFetched(ctx)
	b.metrics.RecordProofFetchDuration(ctx, time.Since(fetchStart))
	return proof, nil
}

// BuildBatch runs Build for every message concurrently, bounded by the
// builder's concurrency. Results are index-aligned with messages; a nil entry
// means no proof was obtained for that message. The first hard error cancels
// the remaining builds. Endpoint fallback inside each build stays sequential.
func (b *MetadataBuilder) BuildBatch(
	ctx context.Context,
	verifierAddress protocol.UnknownAddress,
	messages []protocol.Message,
) ([]protocol.ByteSlice, error) {
	results := make([]protocol.ByteSlice, len(messages))

	g, errGroupCtx := errgroup.WithContext(ctx)
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}
	for i, message := range messages {
		g.Go(func() error {
			proof, err := b.Build(errGroupCtx, verifierAddress, message)
			if err != nil {
				return fmt.Errorf("failed to build proof for message %d: %w", i, err)
			}
			results[i] = proof
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
