package ccipread

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crosslane/relayer/protocol"
)

// testLookup uses a sender with a leading zero byte so full-width rendering
// is exercised everywhere the fixture is used.
func testLookup(t *testing.T) *OffchainLookup {
	t.Helper()

	sender, err := protocol.NewUnknownAddressFromHex("0x00c66a9cb2e53f3bfb7b2f24bbedfde6195e7b6f")
	require.NoError(t, err)
	callback, err := protocol.NewBytes4FromString("0x12345678")
	require.NoError(t, err)

	return &OffchainLookup{
		Sender: sender,
		URLs: []string{
			"https://proofs-a.example/api/{sender}/{data}.json",
			"https://proofs-b.example/gateway",
		},
		CallData:         protocol.ByteSlice{0xde, 0xad, 0xbe, 0xef},
		CallbackFunction: callback,
		ExtraData:        protocol.ByteSlice{0x01, 0x02},
	}
}

func TestOffchainLookup_EncodeDecodeRoundTrip(t *testing.T) {
	lookup := testLookup(t)

	payload, err := lookup.Encode()
	require.NoError(t, err)
	require.Equal(t, protocol.ByteSlice{0x55, 0x6f, 0x18, 0x30}, payload[:4])

	decoded, err := DecodeOffchainLookup(payload)
	require.NoError(t, err)
	require.Equal(t, lookup, decoded)

	reencoded, err := decoded.Encode()
	require.NoError(t, err)
	require.Equal(t, payload, reencoded)
}

func TestOffchainLookup_EncodeDecodeEmptyFields(t *testing.T) {
	sender, err := protocol.NewUnknownAddressFromHex("0x1de29ae2da9d9e0e4a43e20e840e7421e29c7a79")
	require.NoError(t, err)

	lookup := &OffchainLookup{
		Sender:           sender,
		URLs:             []string{},
		CallData:         protocol.ByteSlice{},
		CallbackFunction: protocol.Bytes4{},
		ExtraData:        protocol.ByteSlice{},
	}

	payload, err := lookup.Encode()
	require.NoError(t, err)

	decoded, err := DecodeOffchainLookup(payload)
	require.NoError(t, err)
	require.Equal(t, sender.String(), decoded.Sender.String())
	require.Empty(t, decoded.URLs)
	require.Empty(t, decoded.CallData)
	require.True(t, decoded.CallbackFunction.IsEmpty())
	require.Empty(t, decoded.ExtraData)
}

func TestDecodeOffchainLookup_Errors(t *testing.T) {
	valid, err := testLookup(t).Encode()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "wrong selector",
			payload: append([]byte{0xde, 0xad, 0xbe, 0xef}, valid[4:]...),
		},
		{
			name:    "truncated payload",
			payload: valid[:20],
		},
		{
			name:    "shorter than a selector",
			payload: []byte{0x55, 0x6f},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeOffchainLookup(tc.payload)
			require.Error(t, err)
			require.Contains(t, err.Error(), "failed to unpack OffchainLookup error")
		})
	}
}

func TestOffchainLookup_JSONRoundTrip(t *testing.T) {
	lookup := testLookup(t)

	raw, err := json.Marshal(lookup)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"sender":"0x00c66a9cb2e53f3bfb7b2f24bbedfde6195e7b6f"`)
	require.Contains(t, string(raw), `"callData":"0xdeadbeef"`)
	require.Contains(t, string(raw), `"callbackFunction":"0x12345678"`)

	var rehydrated OffchainLookup
	require.NoError(t, json.Unmarshal(raw, &rehydrated))
	require.Equal(t, lookup, &rehydrated)
}
