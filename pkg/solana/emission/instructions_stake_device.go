package emission

import (
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
)

// StakeDeviceInstructionAccounts are shared by stake_device and unstake_device.
type StakeDeviceInstructionAccounts struct {
	User           ed25519.PublicKey
	State          ed25519.PublicKey
	Mint           ed25519.PublicKey
	VaultAuthority ed25519.PublicKey
	VaultATA       ed25519.PublicKey
	UserATA        ed25519.PublicKey
	Payer          ed25519.PublicKey
}

func (a *StakeDeviceInstructionAccounts) toAccountSet() AccountSet {
	return withPrograms(AccountSet{
		RoleUser:           a.User,
		RoleState:          a.State,
		RoleMint:           a.Mint,
		RoleVaultAuthority: a.VaultAuthority,
		RoleVaultATA:       a.VaultATA,
		RoleUserATA:        a.UserATA,
		RolePayer:          a.Payer,
	})
}

// StakeDeviceAccountsFor fills the stake and unstake accounts from a derived
// address set. The owner pays and signs.
func StakeDeviceAccountsFor(addresses *OwnerAddresses) *StakeDeviceInstructionAccounts {
	return &StakeDeviceInstructionAccounts{
		User:           addresses.User,
		State:          addresses.State,
		Mint:           addresses.Mint,
		VaultAuthority: addresses.VaultAuthority,
		VaultATA:       addresses.VaultATA,
		UserATA:        addresses.UserATA,
		Payer:          addresses.Owner,
	}
}

type StakeDeviceInstructionArgs struct {
	// Amount is in base units.
	Amount uint64
}

// NewStakeDeviceInstruction moves Amount from the user's token account into
// the vault. Both token accounts must exist.
func (p *Program) NewStakeDeviceInstruction(
	accounts *StakeDeviceInstructionAccounts,
	args *StakeDeviceInstructionArgs,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionStakeDevice,
		accounts.toAccountSet(),
		anchor.Args{"amount": args.Amount},
	)
}
