package emission

import (
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

type ConfigureEmissionStateInstructionAccounts struct {
	State ed25519.PublicKey
	Payer ed25519.PublicKey
}

// NewConfigureEmissionStateInstruction overwrites every tunable. The payer
// only signs; it is not charged.
func (p *Program) NewConfigureEmissionStateInstruction(
	accounts *ConfigureEmissionStateInstructionAccounts,
	args *EmissionParams,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionConfigureEmissionState,
		AccountSet{
			RoleState: accounts.State,
			RolePayer: accounts.Payer,
		},
		args.toArgs(),
	)
}
