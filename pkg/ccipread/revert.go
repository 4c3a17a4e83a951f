package ccipread

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// hexPayloadPattern matches a 0x-prefixed hex run inside free-form text.
// Matching on the text rather than on a concrete error type keeps the decoder
// working across chain clients that stringify reverts differently.
var hexPayloadPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)

// scrapeHexPayload returns the first 0x-prefixed hex run in text.
func scrapeHexPayload(text string) (string, bool) {
	match := hexPayloadPattern.FindString(text)
	return match, match != ""
}

// DecodeFromRevert recovers an OffchainLookup from the textual representation
// of a failed verification-info call. Returns (nil, nil) when the text
// carries no hex payload at all: plain reverts are the expected way for a
// verifier to signal that no offchain lookup applies. A hex run that fails to
// decode as the OffchainLookup error is a hard error, since the verifier did
// not honor its append-on-revert encoding contract.
func DecodeFromRevert(revertText string) (*OffchainLookup, error) {
	match, found := scrapeHexPayload(revertText)
	if !found {
		return nil, nil
	}

	payload, err := hex.DecodeString(strings.TrimPrefix(match, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to hex-decode revert payload: %w", err)
	}

	lookup, err := DecodeOffchainLookup(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode revert payload: %w", err)
	}

	return lookup, nil
}
