package emission

import (
	"crypto/ed25519"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

type ClaimRewardsInstructionAccounts struct {
	User    ed25519.PublicKey
	State   ed25519.PublicKey
	Mint    ed25519.PublicKey
	UserATA ed25519.PublicKey
	Payer   ed25519.PublicKey
}

// NewClaimRewardsInstruction mints the epoch's reward to the user's token
// account. The mint is writable since its supply changes.
func (p *Program) NewClaimRewardsInstruction(
	accounts *ClaimRewardsInstructionAccounts,
) (solana.Instruction, error) {
	return p.newInstruction(
		InstructionClaimRewards,
		withPrograms(AccountSet{
			RoleUser:    accounts.User,
			RoleState:   accounts.State,
			RoleMint:    accounts.Mint,
			RoleUserATA: accounts.UserATA,
			RolePayer:   accounts.Payer,
		}),
		nil,
	)
}
