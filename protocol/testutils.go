package protocol

import (
	"crypto/rand"
)

// RandomAddress generates a random 20-byte address for testing.
func RandomAddress() (UnknownAddress, error) {
	addr := make([]byte, 20)
	if _, err := rand.Read(addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// RandomBytes generates n random bytes for testing.
func RandomBytes(n int) (ByteSlice, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
