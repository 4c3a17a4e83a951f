package ccipread

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// revertTextFor wraps a lookup's encoded payload in node-flavored revert text.
func revertTextFor(t *testing.T, lookup *OffchainLookup) string {
	t.Helper()

	payload, err := lookup.Encode()
	require.NoError(t, err)

	return fmt.Sprintf("execution reverted: 0x%s", hex.EncodeToString(payload))
}

func TestDecodeFromRevert_RecoversLookup(t *testing.T) {
	want := testLookup(t)

	decoded, err := DecodeFromRevert(revertTextFor(t, want))
	require.NoError(t, err)
	require.Equal(t, want, decoded)
}

func TestDecodeFromRevert_FirstHexRunWins(t *testing.T) {
	// Trailing hex after the payload must not confuse the scraper.
	text := revertTextFor(t, testLookup(t)) + " (tx 0xdeadbeef, gas 21000)"

	decoded, err := DecodeFromRevert(text)
	require.NoError(t, err)
	require.Equal(t, testLookup(t), decoded)
}

func TestDecodeFromRevert_NoPayload(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "plain revert", text: "execution reverted: MessageNotFound"},
		{name: "empty text", text: ""},
		{name: "bare prefix", text: "execution reverted: 0x"},
		{name: "non-hex after prefix", text: "execution reverted: 0xzz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodeFromRevert(tc.text)
			require.NoError(t, err)
			require.Nil(t, decoded)
		})
	}
}

func TestDecodeFromRevert_OddLengthHex(t *testing.T) {
	_, err := DecodeFromRevert("execution reverted: 0xabc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to hex-decode revert payload")
}

func TestDecodeFromRevert_HexButNotALookup(t *testing.T) {
	_, err := DecodeFromRevert("execution reverted: 0xdeadbeef")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode revert payload")
}
