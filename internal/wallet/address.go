// Package wallet models the connected-wallet capability used by dailyagi:
// address helpers, a persisted session store with change notification and
// an ordered chain of providers that decides which address is connected.
// It performs no cryptographic operations.
package wallet

import (
	"errors"
	"fmt"
	"regexp"
)

// DemoAddress is the wallet used when demo mode is enabled and nothing else
// is connected.
const DemoAddress = "0x1234567890123456789012345678901234567890"

// ErrInvalidAddress is returned for strings that are not 0x-prefixed
// 40-hex-character addresses.
var ErrInvalidAddress = errors.New("invalid wallet address")

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidAddress reports whether address is a 0x-prefixed 40-hex-character
// address. Checksums are not verified.
func IsValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// ValidateAddress returns ErrInvalidAddress, wrapped with the offending
// value, when address is malformed.
func ValidateAddress(address string) error {
	if !IsValidAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// FormatAddress shortens address for display, keeping the 0x prefix plus
// chars leading and chars trailing characters: 0x1234...7890.
func FormatAddress(address string, chars int) string {
	if address == "" {
		return ""
	}
	if chars <= 0 {
		chars = 4
	}

	head := chars + 2
	if head > len(address) {
		head = len(address)
	}
	tail := len(address) - chars
	if tail < 0 {
		tail = 0
	}
	return address[:head] + "..." + address[tail:]
}

var chainNames = map[int]string{
	1:    "Ethereum",
	5:    "Goerli",
	137:  "Polygon",
	8453: "Base",
}

// ChainName returns a display name for an EVM chain id.
func ChainName(chainID int) string {
	if name, ok := chainNames[chainID]; ok {
		return name
	}
	return fmt.Sprintf("Chain %d", chainID)
}
