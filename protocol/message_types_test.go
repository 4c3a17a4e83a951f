package protocol

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageEncodeDecode(t *testing.T) {
	sender, err := RandomAddress()
	require.NoError(t, err)
	receiver, err := RandomAddress()
	require.NoError(t, err)

	// Create a test message w/ body data
	msg1, err := NewMessage(
		ChainSelector(1337),
		ChainSelector(2337),
		Nonce(123),
		sender,
		receiver,
		[]byte("test data"),
	)
	require.NoError(t, err)

	// Create a test message w/o body data
	msg2, err := NewMessage(
		ChainSelector(1337),
		ChainSelector(2337),
		Nonce(124),
		sender,
		receiver,
		nil,
	)
	require.NoError(t, err)

	for _, msg := range []*Message{msg1, msg2} {
		// Encode
		encoded, err := msg.Encode()
		require.NoError(t, err)
		require.NotEmpty(t, encoded)

		// Decode
		decoded, err := DecodeMessage(encoded)
		require.NoError(t, err)

		// Verify all fields match
		require.Equal(t, msg.Version, decoded.Version)
		require.Equal(t, msg.Nonce, decoded.Nonce)
		require.Equal(t, msg.SourceChainSelector, decoded.SourceChainSelector)
		require.Equal(t, msg.DestChainSelector, decoded.DestChainSelector)
		require.Equal(t, msg.SenderLength, decoded.SenderLength)
		require.Equal(t, msg.Sender, decoded.Sender)
		require.Equal(t, msg.ReceiverLength, decoded.ReceiverLength)
		require.Equal(t, msg.Receiver, decoded.Receiver)
		require.Equal(t, msg.DataLength, decoded.DataLength)
		require.Equal(t, len(msg.Data), len(decoded.Data))
		if len(msg.Data) > 0 {
			require.Equal(t, msg.Data, decoded.Data)
		}
	}
}

func TestMessageID(t *testing.T) {
	sender, err := RandomAddress()
	require.NoError(t, err)
	receiver, err := RandomAddress()
	require.NoError(t, err)

	msg1, err := NewMessage(ChainSelector(1337), ChainSelector(2337), 123, sender, receiver, []byte("test data"))
	require.NoError(t, err)

	msg2, err := NewMessage(ChainSelector(1337), ChainSelector(2337), 123, sender, receiver, []byte("test data"))
	require.NoError(t, err)

	// Same messages should have same message ID
	id1, err := msg1.MessageID()
	require.NoError(t, err)
	id2, err := msg2.MessageID()
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	// Different nonce should give different message ID
	msg3, err := NewMessage(ChainSelector(1337), ChainSelector(2337), 124, sender, receiver, []byte("test data"))
	require.NoError(t, err)

	id3, err := msg3.MessageID()
	require.NoError(t, err)
	require.NotEqual(t, id1, id3)
}

func TestNewMessageBounds(t *testing.T) {
	sender, err := RandomAddress()
	require.NoError(t, err)
	receiver, err := RandomAddress()
	require.NoError(t, err)

	_, err = NewMessage(1, 2, 3, make(UnknownAddress, 256), receiver, nil)
	require.ErrorContains(t, err, "sender length")

	_, err = NewMessage(1, 2, 3, sender, make(UnknownAddress, 256), nil)
	require.ErrorContains(t, err, "receiver length")

	_, err = NewMessage(1, 2, 3, sender, receiver, make([]byte, 65536))
	require.ErrorContains(t, err, "data length")
}

// TestMessageDecodingErrors tests message decoding error conditions.
func TestMessageDecodingErrors(t *testing.T) {
	tests := []struct {
		name      string
		expectErr string
		data      []byte
	}{
		{
			name:      "empty_data",
			data:      []byte{},
			expectErr: "data too short",
		},
		{
			name:      "too_short",
			data:      make([]byte, 10),
			expectErr: "data too short",
		},
		{
			name: "truncated_sender",
			data: func() []byte {
				// Minimal valid header claiming 20 sender bytes that are absent.
				data := make([]byte, MinSizeRequiredMsgFields)
				data[0] = 1 // version
				binary.BigEndian.PutUint64(data[1:9], 3)    // nonce
				binary.BigEndian.PutUint64(data[9:17], 1)   // source chain
				binary.BigEndian.PutUint64(data[17:25], 2)  // dest chain
				data[25] = 20                               // claim 20 bytes for sender
				return data
			}(),
			expectErr: "failed to read sender",
		},
		{
			name: "trailing_bytes",
			data: func() []byte {
				msg, err := NewMessage(1, 2, 3, nil, nil, nil)
				if err != nil {
					panic(err)
				}
				encoded, err := msg.Encode()
				if err != nil {
					panic(err)
				}
				return append(encoded, 0xff)
			}(),
			expectErr: "trailing bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage(tt.data)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.expectErr)
		})
	}
}
