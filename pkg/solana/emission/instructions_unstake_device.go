package emission

import (
	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
)

type UnstakeDeviceInstructionArgs struct {
	// Amount is in base units.
	Amount uint64
}

// NewUnstakeDeviceInstruction returns Amount from the vault to the user.
func (p *Program) NewUnstakeDeviceInstruction(
	accounts *StakeDeviceInstructionAccounts,
	args *UnstakeDeviceInstructionArgs,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionUnstakeDevice,
		accounts.toAccountSet(),
		anchor.Args{"amount": args.Amount},
	)
}
