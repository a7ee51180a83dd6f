// Package solana holds small Solana addressing helpers.
package solana

import "github.com/mr-tron/base58"

// ValidMint reports whether s decodes as a 32-byte base58 Solana address.
// Feeds occasionally emit truncated or garbage identifiers; the router drops
// them before any external call is spent on gating.
func ValidMint(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == 32
}
