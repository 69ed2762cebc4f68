package emission

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/token"
)

var (
	StatePrefix = []byte("emission_state")
	UserPrefix  = []byte("user")
	VaultPrefix = []byte("vault")
)

// Addresses derives the program's accounts for one deployment.
type Addresses struct {
	program ed25519.PublicKey
}

func NewAddresses(program ed25519.PublicKey) (*Addresses, error) {
	if err := solana.ValidatePublicKey(program); err != nil {
		return nil, errors.Wrap(err, "invalid program")
	}
	return &Addresses{program: program}, nil
}

func (a *Addresses) Program() ed25519.PublicKey {
	return a.program
}

func (a *Addresses) State() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(a.program, StatePrefix)
}

func (a *Addresses) User(owner ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	if err := solana.ValidatePublicKey(owner); err != nil {
		return nil, 0, errors.Wrap(err, "invalid owner")
	}
	return solana.FindProgramAddressAndBump(a.program, UserPrefix, owner)
}

// VaultAuthority is the custodian of a user's staked tokens.
func (a *Addresses) VaultAuthority(user ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	if err := solana.ValidatePublicKey(user); err != nil {
		return nil, 0, errors.Wrap(err, "invalid user")
	}
	return solana.FindProgramAddressAndBump(a.program, VaultPrefix, user)
}

func (a *Addresses) AssociatedTokenAccount(owner, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return token.GetAssociatedAccountAndBump(owner, mint)
}

// OwnerAddresses is every account an owner's operations touch.
type OwnerAddresses struct {
	Owner          ed25519.PublicKey
	Mint           ed25519.PublicKey
	State          ed25519.PublicKey
	User           ed25519.PublicKey
	VaultAuthority ed25519.PublicKey
	UserATA        ed25519.PublicKey
	VaultATA       ed25519.PublicKey
}

func (a *Addresses) ForOwner(owner, mint ed25519.PublicKey) (*OwnerAddresses, error) {
	state, _, err := a.State()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive state address")
	}

	user, _, err := a.User(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive user address")
	}

	vaultAuthority, _, err := a.VaultAuthority(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive vault authority")
	}

	userATA, _, err := a.AssociatedTokenAccount(owner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive user token account")
	}

	vaultATA, _, err := a.AssociatedTokenAccount(vaultAuthority, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive vault token account")
	}

	return &OwnerAddresses{
		Owner:          owner,
		Mint:           mint,
		State:          state,
		User:           user,
		VaultAuthority: vaultAuthority,
		UserATA:        userATA,
		VaultATA:       vaultATA,
	}, nil
}
