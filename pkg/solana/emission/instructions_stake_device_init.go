package emission

import (
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

type StakeDeviceInitInstructionAccounts struct {
	User  ed25519.PublicKey
	State ed25519.PublicKey
	Mint  ed25519.PublicKey
	Payer ed25519.PublicKey
}

// NewStakeDeviceInitInstruction creates the payer's user account.
func (p *Program) NewStakeDeviceInitInstruction(
	accounts *StakeDeviceInitInstructionAccounts,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionStakeDeviceInit,
		withPrograms(AccountSet{
			RoleUser:  accounts.User,
			RoleState: accounts.State,
			RoleMint:  accounts.Mint,
			RolePayer: accounts.Payer,
		}),
		nil,
	)
}
