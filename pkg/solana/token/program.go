package token

import (
	"github.com/stride-labs/stride-emission/pkg/solana"
)

// ProgramKey is the address of the SPL token program.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = solana.MustPublicKeyFromString("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// Decimals used by the emission mint. One whole token is 10^Decimals base units.
const Decimals = 6

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/error.rs
const (
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	ErrorFixedSupply
	ErrorAlreadyInUse
)

var errorDescriptions = map[solana.CustomError]string{
	ErrorNotRentExempt:     "lamport balance below rent-exempt threshold",
	ErrorInsufficientFunds: "insufficient funds",
	ErrorInvalidMint:       "invalid mint",
	ErrorMintMismatch:      "account not associated with this mint",
	ErrorOwnerMismatch:     "owner does not match",
	ErrorFixedSupply:       "fixed supply",
	ErrorAlreadyInUse:      "already in use",
}

// DescribeError returns a readable description of a token program error code.
func DescribeError(code solana.CustomError) (string, bool) {
	desc, ok := errorDescriptions[code]
	return desc, ok
}
