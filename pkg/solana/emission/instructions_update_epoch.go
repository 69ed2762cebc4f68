package emission

import (
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

type UpdateEpochInstructionAccounts struct {
	State ed25519.PublicKey
}

// NewUpdateEpochInstruction advances the state's epoch counter by one.
func (p *Program) NewUpdateEpochInstruction(
	accounts *UpdateEpochInstructionAccounts,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionUpdateEpoch,
		AccountSet{RoleState: accounts.State},
		nil,
	)
}
