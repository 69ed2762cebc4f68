package emission

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
)

// Role names an account slot as it appears in the schema.
type Role string

const (
	RoleState                  Role = "state"
	RoleUser                   Role = "user"
	RoleMint                   Role = "mint"
	RolePayer                  Role = "payer"
	RoleVaultAuthority         Role = "vault_authority"
	RoleVaultATA               Role = "vault_ata"
	RoleUserATA                Role = "user_ata"
	RoleTokenProgram           Role = "token_program"
	RoleAssociatedTokenProgram Role = "associated_token_program"
	RoleSystemProgram          Role = "system_program"
)

var knownRoles = map[Role]struct{}{
	RoleState:                  {},
	RoleUser:                   {},
	RoleMint:                   {},
	RolePayer:                  {},
	RoleVaultAuthority:         {},
	RoleVaultATA:               {},
	RoleUserATA:                {},
	RoleTokenProgram:           {},
	RoleAssociatedTokenProgram: {},
	RoleSystemProgram:          {},
}

func IsKnownRole(role Role) bool {
	_, ok := knownRoles[role]
	return ok
}

// AccountSet maps the roles an operation provides to their addresses.
type AccountSet map[Role]ed25519.PublicKey

// ResolveAccounts lays out accounts in schema order with the schema's signer
// and writable flags. Every schema role must be known and provided, and any
// address pinned by the schema must match.
func ResolveAccounts(desc *anchor.InstructionDescriptor, accounts AccountSet) ([]solana.AccountMeta, error) {
	metas := make([]solana.AccountMeta, 0, len(desc.Accounts))
	for _, item := range desc.Accounts {
		role := Role(item.Name)
		if !IsKnownRole(role) {
			return nil, errors.Wrapf(ErrUnmappedAccountRole, "%s: schema role %q is not recognized", desc.Name, item.Name)
		}

		key, ok := accounts[role]
		if !ok {
			return nil, errors.Wrapf(ErrUnmappedAccountRole, "%s: role %q was not provided", desc.Name, item.Name)
		}
		if err := solana.ValidatePublicKey(key); err != nil {
			return nil, errors.Wrapf(err, "%s: role %q", desc.Name, item.Name)
		}

		if item.Address != "" {
			pinned, err := base58.Decode(item.Address)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: role %q has an invalid pinned address", desc.Name, item.Name)
			}
			if !bytes.Equal(pinned, key) {
				return nil, errors.Wrapf(ErrAddressMismatch, "%s: role %q expects %s, got %s", desc.Name, item.Name, item.Address, base58.Encode(key))
			}
		}

		metas = append(metas, solana.NewAccountMetaWithFlags(key, item.Signer, item.Writable))
	}
	return metas, nil
}
