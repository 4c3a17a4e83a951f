package protocol

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ChainSelector identifies a chain in the cross-chain message routing table.
type ChainSelector uint64

func (c ChainSelector) String() string {
	return fmt.Sprintf("ChainSelector(%d)", c)
}

// Nonce is a monotonic counter scoped to a (source, destination) lane. It
// makes otherwise identical messages distinct on the wire.
type Nonce uint64

func (n Nonce) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// UnknownAddress represents an address on an unknown chain.
type UnknownAddress []byte

// NewUnknownAddressFromHex creates an UnknownAddress from a hex string.
func NewUnknownAddressFromHex(s string) (UnknownAddress, error) {
	if s == "" {
		return UnknownAddress{}, nil
	}

	s = strings.TrimPrefix(s, "0x")

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}

	return UnknownAddress(b), nil
}

// String returns the full-width hex representation of the address. Every
// byte is rendered; callers substituting addresses into URLs rely on no
// characters being dropped.
func (a UnknownAddress) String() string {
	if len(a) == 0 {
		return ""
	}
	return "0x" + hex.EncodeToString(a)
}

// Bytes returns the raw bytes of the address.
func (a UnknownAddress) Bytes() []byte {
	return []byte(a)
}

// IsEmpty reports whether the address holds no bytes.
func (a UnknownAddress) IsEmpty() bool {
	return len(a) == 0
}

// MarshalJSON returns the hex representation of the address.
func (a UnknownAddress) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, a.String())), nil
}

// UnmarshalJSON decodes a hex string into an UnknownAddress.
func (a *UnknownAddress) UnmarshalJSON(data []byte) error {
	v := string(data)
	if len(v) < 2 {
		return fmt.Errorf("invalid UnknownAddress: %s", v)
	}

	if v == `""` {
		*a = UnknownAddress{}
		return nil
	}

	// trim quotes
	v = v[1 : len(v)-1]

	v = strings.TrimPrefix(v, "0x")

	b, err := hex.DecodeString(v)
	if err != nil {
		return fmt.Errorf("failed to decode hex: %w", err)
	}

	*a = UnknownAddress(b)
	return nil
}

// ByteSlice is a wrapper around []byte that marshals/unmarshals to/from hex
// instead of base64.
type ByteSlice []byte

// MarshalJSON returns the hex representation of the bytes.
func (h ByteSlice) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	if len(h) == 0 {
		return []byte(`"0x"`), nil
	}
	return []byte(fmt.Sprintf(`"0x%s"`, hex.EncodeToString(h))), nil
}

// UnmarshalJSON decodes a hex string into a ByteSlice.
func (h *ByteSlice) UnmarshalJSON(data []byte) error {
	v := string(data)

	if v == "null" {
		*h = nil
		return nil
	}

	if len(v) < 2 {
		return fmt.Errorf("invalid ByteSlice: %s", v)
	}

	// trim quotes
	v = v[1 : len(v)-1]

	if v == "" || v == "0x" {
		*h = ByteSlice{}
		return nil
	}

	v = strings.TrimPrefix(v, "0x")

	b, err := hex.DecodeString(v)
	if err != nil {
		return fmt.Errorf("failed to decode hex: %w", err)
	}

	*h = ByteSlice(b)
	return nil
}

// String returns the hex representation with 0x prefix.
func (h ByteSlice) String() string {
	if len(h) == 0 {
		return "0x"
	}
	return "0x" + hex.EncodeToString(h)
}

// Bytes4 holds a 4-byte value such as a function or callback selector.
type Bytes4 [4]byte

// NewBytes4FromString creates a 4-sized bytes array from a hex-encoded string
// or returns an error.
func NewBytes4FromString(s string) (Bytes4, error) {
	if len(s) > 10 { // "0x" + 8 hex chars
		return Bytes4{}, fmt.Errorf("Bytes4 must be at most 4 bytes (8 hex chars) long: %s", s)
	}

	if !strings.HasPrefix(s, "0x") {
		return Bytes4{}, fmt.Errorf("Bytes4 must start with '0x' prefix: %s", s)
	}

	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return Bytes4{}, fmt.Errorf("failed to decode hex: %w", err)
	}

	var res Bytes4
	copy(res[:], b)
	return res, nil
}

func (b Bytes4) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

func (b Bytes4) IsEmpty() bool {
	return b == Bytes4{}
}

func (b Bytes4) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, b.String())), nil
}

func (b *Bytes4) UnmarshalJSON(data []byte) error {
	v := string(data)
	if len(v) < 4 {
		return fmt.Errorf("invalid Bytes4: %s", v)
	}
	v = v[1 : len(v)-1] // trim quotes

	if !strings.HasPrefix(v, "0x") {
		return fmt.Errorf("bytes must start with '0x' prefix: %s", v)
	}
	v = v[2:]

	bCp, err := hex.DecodeString(v)
	if err != nil {
		return err
	}

	copy(b[:], bCp)
	return nil
}

// Bytes32 holds a 32-byte value such as a message ID or hash.
type Bytes32 [32]byte

// NewBytes32FromString creates a 32-sized bytes array from a hex-encoded
// string or returns an error.
func NewBytes32FromString(s string) (Bytes32, error) {
	if len(s) > 66 { // "0x" + 64 hex chars
		return Bytes32{}, fmt.Errorf("Bytes32 must be at most 32 bytes (64 hex chars) long: %s", s)
	}

	if !strings.HasPrefix(s, "0x") {
		return Bytes32{}, fmt.Errorf("Bytes32 must start with '0x' prefix: %s", s)
	}

	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return Bytes32{}, fmt.Errorf("failed to decode hex: %w", err)
	}

	var res Bytes32
	copy(res[:], b)
	return res, nil
}

func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

func (b Bytes32) IsEmpty() bool {
	return b == Bytes32{}
}

func (b Bytes32) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, b.String())), nil
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	v := string(data)
	if len(v) < 4 {
		return fmt.Errorf("invalid Bytes32: %s", v)
	}
	v = v[1 : len(v)-1] // trim quotes

	if !strings.HasPrefix(v, "0x") {
		return fmt.Errorf("bytes must start with '0x' prefix: %s", v)
	}
	v = v[2:]

	bCp, err := hex.DecodeString(v)
	if err != nil {
		return err
	}

	copy(b[:], bCp)
	return nil
}
