// Package emission addresses and encodes instructions for the stride emission
// program: a capped, decaying token emission with per-user device staking and
// epoch gated reward claims.
package emission

import (
	_ "embed"
	"fmt"

	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
)

// DefaultProgramAddress is the localnet deployment of the program.
const DefaultProgramAddress = "2TadYr2dGaUV7Wi2uFZn1J6eF1Kdju9zpUzoWdTedrhw"

var DefaultProgramID = solana.MustPublicKeyFromString(DefaultProgramAddress)

var (
	ErrUnmappedAccountRole = errors.New("unmapped account role")
	ErrAddressMismatch     = errors.New("account address does not match schema")
)

const (
	InstructionInitializeEmissionState = "initialize_emission_state"
	InstructionConfigureEmissionState  = "configure_emission_state"
	InstructionStakeDeviceInit         = "stake_device_init"
	InstructionStakeDevice             = "stake_device"
	InstructionUnstakeDevice           = "unstake_device"
	InstructionClaimRewards            = "claim_rewards"
	InstructionUpdateEpoch             = "update_epoch"
)

const (
	AccountTypeEmissionState = "EmissionState"
	AccountTypeUserAccount   = "UserAccount"
)

// Anchor numbers custom program errors from 6000.
const (
	ErrorInvalidAmount solana.CustomError = 6000 + iota
	ErrorOwnerMismatch
	ErrorMintMismatch
	ErrorAlreadyClaimedToday
	ErrorEmissionExhausted
)

var errorDescriptions = map[solana.CustomError]string{
	ErrorInvalidAmount:       "InvalidAmount: Invalid amount",
	ErrorOwnerMismatch:       "OwnerMismatch: Owner mismatch",
	ErrorMintMismatch:        "MintMismatch: Mint mismatch",
	ErrorAlreadyClaimedToday: "AlreadyClaimedToday: Already claimed in this epoch",
	ErrorEmissionExhausted:   "EmissionExhausted: Emission exhausted",
}

// DescribeCustomError renders a program error code as "Name: message".
func DescribeCustomError(code solana.CustomError) (string, bool) {
	desc, ok := errorDescriptions[code]
	return desc, ok
}

//go:embed stride_emission.json
var embeddedIDL []byte

var defaultIDL *anchor.IDL

func init() {
	idl, err := anchor.ParseIDL(embeddedIDL)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded idl: %v", err))
	}
	defaultIDL = idl
}

// DefaultIDL returns the schema the package was built against. The returned
// document is shared and must not be modified.
func DefaultIDL() *anchor.IDL {
	return defaultIDL
}

// LoadIDL returns the schema at path, or the embedded one when path is empty.
func LoadIDL(path string) (*anchor.IDL, error) {
	if path == "" {
		return defaultIDL, nil
	}
	return anchor.LoadIDLFile(path)
}
