package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilUnknownAddress(t *testing.T) {
	var ua UnknownAddress
	require.Equal(t, []byte(nil), ua.Bytes())
	require.True(t, ua.IsEmpty())
}

func TestUnknownAddress_FullWidthString(t *testing.T) {
	// Leading and trailing zero bytes must survive rendering.
	addr, err := NewUnknownAddressFromHex("0x00c66a9cb2e53f3bfb7b2f24bbedfde6195e7b6f")
	require.NoError(t, err)
	require.Len(t, addr.Bytes(), 20)
	require.Equal(t, "0x00c66a9cb2e53f3bfb7b2f24bbedfde6195e7b6f", addr.String())
}

func TestUnknownAddress_JSON(t *testing.T) {
	addr, err := NewUnknownAddressFromHex("0x1de29ae2da9d9e0e4a43e20e840e7421e29c7a79")
	require.NoError(t, err)

	jsonBytes, err := json.Marshal(addr)
	require.NoError(t, err)

	var unmarshaled UnknownAddress
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	require.Equal(t, addr, unmarshaled)
}

func TestByteSlice_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   ByteSlice
		want string
	}{
		{name: "nil", in: nil, want: "null"},
		{name: "empty", in: ByteSlice{}, want: `"0x"`},
		{name: "bytes", in: ByteSlice{0x12, 0x34}, want: `"0x1234"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonBytes, err := json.Marshal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(jsonBytes))

			var back ByteSlice
			require.NoError(t, json.Unmarshal(jsonBytes, &back))
			require.Equal(t, len(tt.in), len(back))
			if len(tt.in) > 0 {
				require.Equal(t, tt.in, back)
			}
		})
	}
}

func TestBytes4_RoundTrip(t *testing.T) {
	original, err := NewBytes4FromString("0x556f1830")
	require.NoError(t, err)

	// String -> NewBytes4FromString
	str := original.String()
	parsed, err := NewBytes4FromString(str)
	require.NoError(t, err)
	require.Equal(t, original, parsed)

	// Marshal -> Unmarshal
	jsonBytes, err := json.Marshal(original)
	require.NoError(t, err)
	var unmarshaled Bytes4
	err = json.Unmarshal(jsonBytes, &unmarshaled)
	require.NoError(t, err)
	require.Equal(t, original, unmarshaled)
}

func TestBytes4_Errors(t *testing.T) {
	_, err := NewBytes4FromString("556f1830")
	require.ErrorContains(t, err, "0x")

	_, err = NewBytes4FromString("0x556f18301c")
	require.ErrorContains(t, err, "at most 4 bytes")
}
