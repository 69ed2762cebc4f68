package emission

import (
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

type InitializeEmissionStateInstructionAccounts struct {
	State ed25519.PublicKey
	Mint  ed25519.PublicKey
	Payer ed25519.PublicKey
}

func (p *Program) NewInitializeEmissionStateInstruction(
	accounts *InitializeEmissionStateInstructionAccounts,
	args *EmissionParams,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionInitializeEmissionState,
		withPrograms(AccountSet{
			RoleState: accounts.State,
			RoleMint:  accounts.Mint,
			RolePayer: accounts.Payer,
		}),
		args.toArgs(),
	)
}
