package beacon

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address represents the 20 byte address of a protocol participant. It is
// derived from the participant's public key by hashing and keeping the
// low-order bytes, Ethereum style.
type Address [AddressLength]byte

const (
	// AddressLength is the size of a participant address.
	AddressLength = 20
)

// ZeroAddress represents the "zero address" (owned by no participant).
var ZeroAddress = Address{}

// HexToAddress converts a hex string to an Address.
func HexToAddress(h string) Address {
	b, _ := hex.DecodeString(strings.TrimPrefix(h, "0x"))
	return BytesToAddress(b)
}

// BytesToAddress returns Address with value b.
//
// If b is larger than 20 bytes, b will be cropped from the left.
// If b is smaller than 20 bytes, b will be appended by zeroes at the front.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string {
	return hex.EncodeToString(a.Bytes())
}

// String returns the string representation of the address.
func (a Address) String() string {
	return a.Hex()
}

// Short returns the first 8 hex characters of the address, for log output.
func (a Address) Short() string {
	return a.Hex()[:8]
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(string(text), "0x"))
	if err != nil {
		return fmt.Errorf("could not decode address hex: %w", err)
	}
	*a = BytesToAddress(b)
	return nil
}
