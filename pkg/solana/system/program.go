package system

import (
	"bytes"
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

// ProgramKey is the address of the native system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramKey = solana.MustPublicKeyFromString("11111111111111111111111111111111")

// IsProgram reports whether the key is the system program. Accounts that don't
// exist yet are reported as owned by it.
func IsProgram(key ed25519.PublicKey) bool {
	return bytes.Equal(key, ProgramKey)
}
