package ccipread

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/crosslane/relayer"
	"github.com/crosslane/relayer/pkg/httpclient"
	"github.com/crosslane/relayer/protocol"
)

const (
	senderPlaceholder = "{sender}"
	dataPlaceholder   = "{data}"
)

// offchainRequest is the POST body for templates that expect the call data
// in the request body rather than the URL.
type offchainRequest struct {
	Sender string `json:"sender"`
	Data   string `json:"data"`
}

// offchainResponse is the only recognized response shape; other fields are
// ignored.
type offchainResponse struct {
	Data string `json:"data"`
}

// Fetcher queries the endpoints named by an OffchainLookup, in order, until
// one returns usable proof bytes. Endpoints are externally operated and of
// unknown reliability, so every per-endpoint problem is survivable.
type Fetcher struct {
	lggr    logger.Logger
	client  httpclient.Client
	metrics relayer.MetricLabeler
}

// NewFetcher creates a fetcher issuing requests through client.
func NewFetcher(lggr logger.Logger, client httpclient.Client, metrics relayer.MetricLabeler) *Fetcher {
	return &Fetcher{
		lggr:    lggr,
		client:  client,
		metrics: metrics,
	}
}

// Fetch tries each URL template in order and returns the proof bytes from the
// first endpoint that answers with well-formed data. The sender address is
// substituted as its full fixed-width hex string. Network errors, bad
// statuses, malformed bodies and invalid hex all mean "this endpoint failed":
// they are logged and the next URL is tried. (nil, nil) means every endpoint
// failed or the lookup carried no URLs.
func (f *Fetcher) Fetch(ctx context.Context, lookup *OffchainLookup) (protocol.ByteSlice, error) {
	senderHex := lookup.Sender.String()
	dataHex := "0x" + hex.EncodeToString(lookup.CallData)

	for _, template := range lookup.URLs {
		requestURL := strings.ReplaceAll(template, senderPlaceholder, senderHex)
		requestURL = strings.ReplaceAll(requestURL, dataPlaceholder, dataHex)

		f.metrics.IncrementEndpointRequests(ctx)

		var payload protocol.ByteSlice
		var status httpclient.Status
		var err error
		if strings.Contains(template, dataPlaceholder) {
			payload, status, err = f.client.Get(ctx, requestURL)
		} else {
			body, marshalErr := json.Marshal(offchainRequest{Sender: senderHex, Data: dataHex})
			if marshalErr != nil {
				return nil, fmt.Errorf("failed to encode endpoint request body: %w", marshalErr)
			}
			payload, status, err = f.client.Post(ctx, requestURL, body)
		}
		if err != nil {
			f.metrics.IncrementEndpointFailures(ctx)
			f.lggr.Warnw("Offchain endpoint request failed, trying next URL",
				"url", requestURL,
				"status", status,
				"err", err,
			)
			continue
		}

		proof, err := decodeEndpointResponse(payload)
		if err != nil {
			f.metrics.IncrementEndpointFailures(ctx)
			f.lggr.Warnw("Offchain endpoint returned an unusable response, trying next URL",
				"url", requestURL,
				"err", err,
			)
			continue
		}

		f.lggr.Debugw("Offchain endpoint answered",
			"url", requestURL,
			"proofLen", len(proof),
		)
		return proof, nil
	}

	f.lggr.Infow("No offchain endpoint produced proof data", "urlCount", len(lookup.URLs))
	return nil, nil
}

// decodeEndpointResponse parses {"data":"0x…"} and hex-decodes the data field.
func decodeEndpointResponse(payload protocol.ByteSlice) (protocol.ByteSlice, error) {
	var response offchainResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint response: %w", err)
	}

	if !strings.HasPrefix(response.Data, "0x") {
		return nil, fmt.Errorf("endpoint response data %q is not 0x-prefixed hex", response.Data)
	}

	proof, err := hex.DecodeString(strings.TrimPrefix(response.Data, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to hex-decode endpoint response data: %w", err)
	}

	return proof, nil
}
