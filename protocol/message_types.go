package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// MessageVersion is the current wire format version.
	MessageVersion = 1
	// MinSizeRequiredMsgFields is the minimum size of an encoded Message:
	// version(1) + nonce(8) + selectors(16) + length prefixes(4).
	MinSizeRequiredMsgFields = 29
)

// Message is the chain-agnostic cross-chain message. Its canonical encoding
// (Encode) is the identity of the message everywhere downstream: message IDs,
// verification-info calls and cache keys are all derived from the exact wire
// bytes, never from a re-serialization.
type Message struct {
	Sender              UnknownAddress `json:"sender"`
	Receiver            UnknownAddress `json:"receiver"`
	Data                ByteSlice      `json:"data"`
	SourceChainSelector ChainSelector  `json:"source_chain_selector"`
	DestChainSelector   ChainSelector  `json:"dest_chain_selector"`
	Nonce               Nonce          `json:"nonce"`
	DataLength          uint16         `json:"data_length"`
	SenderLength        uint8          `json:"sender_length"`
	ReceiverLength      uint8          `json:"receiver_length"`
	Version             uint8          `json:"version"`
}

// NewMessage creates a new message with the given parameters.
func NewMessage(
	sourceChain, destChain ChainSelector,
	nonce Nonce,
	sender, receiver UnknownAddress,
	data []byte,
) (*Message, error) {
	if len(sender) > math.MaxUint8 {
		return nil, fmt.Errorf("sender length exceeds maximum value")
	}
	if len(receiver) > math.MaxUint8 {
		return nil, fmt.Errorf("receiver length exceeds maximum value")
	}
	if len(data) > math.MaxUint16 {
		return nil, fmt.Errorf("data length exceeds maximum value")
	}

	//nolint:gosec // all verified
	return &Message{
		Version:             MessageVersion,
		SourceChainSelector: sourceChain,
		DestChainSelector:   destChain,
		Nonce:               nonce,
		SenderLength:        uint8(len(sender)),
		Sender:              sender.Bytes(),
		ReceiverLength:      uint8(len(receiver)),
		Receiver:            receiver.Bytes(),
		DataLength:          uint16(len(data)),
		Data:                data,
	}, nil
}

// Encode returns the canonical encoding of this message.
func (m *Message) Encode() ([]byte, error) {
	var buf bytes.Buffer

	// Version (1 byte)
	_ = buf.WriteByte(m.Version)

	// Nonce and chain selectors (8 bytes each, big-endian)
	if err := binary.Write(&buf, binary.BigEndian, uint64(m.Nonce)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint64(m.SourceChainSelector)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint64(m.DestChainSelector)); err != nil {
		return nil, err
	}

	// Variable length fields with length prefixes
	// Sender
	_ = buf.WriteByte(m.SenderLength)
	_, _ = buf.Write(m.Sender)

	// Receiver
	_ = buf.WriteByte(m.ReceiverLength)
	_, _ = buf.Write(m.Receiver)

	// Data (2 bytes length)
	if err := binary.Write(&buf, binary.BigEndian, m.DataLength); err != nil {
		return nil, err
	}
	_, _ = buf.Write(m.Data)

	return buf.Bytes(), nil
}

// DecodeMessage decodes a Message from bytes.
func DecodeMessage(data []byte) (*Message, error) {
	if len(data) < MinSizeRequiredMsgFields {
		return nil, fmt.Errorf("data too short for message")
	}

	reader := bytes.NewReader(data)
	msg := &Message{}

	// Read version
	version, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	msg.Version = version

	// Read nonce and chain selectors
	var nonce, sourceChain, destChain uint64
	if err := binary.Read(reader, binary.BigEndian, &nonce); err != nil {
		return nil, fmt.Errorf("failed to read nonce: %w", err)
	}
	if err := binary.Read(reader, binary.BigEndian, &sourceChain); err != nil {
		return nil, fmt.Errorf("failed to read source chain selector: %w", err)
	}
	if err := binary.Read(reader, binary.BigEndian, &destChain); err != nil {
		return nil, fmt.Errorf("failed to read dest chain selector: %w", err)
	}

	msg.Nonce = Nonce(nonce)
	msg.SourceChainSelector = ChainSelector(sourceChain)
	msg.DestChainSelector = ChainSelector(destChain)

	// Read sender
	senderLen, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read sender length: %w", err)
	}
	msg.SenderLength = senderLen
	if senderLen == 0 {
		msg.Sender = nil
	} else {
		msg.Sender = make([]byte, senderLen)
		if _, err := io.ReadFull(reader, msg.Sender); err != nil {
			return nil, fmt.Errorf("failed to read sender: %w", err)
		}
	}

	// Read receiver
	receiverLen, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read receiver length: %w", err)
	}
	msg.ReceiverLength = receiverLen
	if receiverLen == 0 {
		msg.Receiver = nil
	} else {
		msg.Receiver = make([]byte, receiverLen)
		if _, err := io.ReadFull(reader, msg.Receiver); err != nil {
			return nil, fmt.Errorf("failed to read receiver: %w", err)
		}
	}

	// Read data (2 bytes length)
	var dataLen uint16
	if err := binary.Read(reader, binary.BigEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("failed to read data length: %w", err)
	}
	msg.DataLength = dataLen
	if dataLen == 0 {
		msg.Data = nil
	} else {
		msg.Data = make([]byte, dataLen)
		if _, err := io.ReadFull(reader, msg.Data); err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
	}

	// Ensure all data was consumed
	if reader.Len() != 0 {
		return nil, fmt.Errorf("trailing bytes after decoding")
	}

	return msg, nil
}

// MessageID returns the message ID of this message (keccak256 of the
// canonical encoding).
func (m *Message) MessageID() (Bytes32, error) {
	encoded, err := m.Encode()
	if err != nil {
		return Bytes32{}, err
	}
	return Keccak256(encoded), nil
}

// MustMessageID returns the message ID of this message, returning empty
// Bytes32 on encoding errors. Use this when you want a simple getter that
// ignores errors (i.e. for logging).
func (m *Message) MustMessageID() Bytes32 {
	id, err := m.MessageID()
	if err != nil {
		return Bytes32{}
	}
	return id
}
