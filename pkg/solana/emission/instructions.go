package emission

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
	"github.com/stride-labs/stride-emission/pkg/solana/system"
	"github.com/stride-labs/stride-emission/pkg/solana/token"
)

// Program builds and decompiles instructions for one deployment of the
// emission program against a schema.
type Program struct {
	ID  ed25519.PublicKey
	IDL *anchor.IDL
}

// NewProgram uses the embedded schema when idl is nil.
func NewProgram(id ed25519.PublicKey, idl *anchor.IDL) (*Program, error) {
	if err := solana.ValidatePublicKey(id); err != nil {
		return nil, errors.Wrap(err, "invalid program id")
	}
	if idl == nil {
		idl = defaultIDL
	}
	return &Program{ID: id, IDL: idl}, nil
}

func (p *Program) newInstruction(name string, accounts AccountSet, args anchor.Args) (solana.Instruction, error) {
	desc, err := p.IDL.Instruction(name)
	if err != nil {
		return solana.Instruction{}, err
	}

	metas, err := ResolveAccounts(desc, accounts)
	if err != nil {
		return solana.Instruction{}, err
	}

	data, err := p.IDL.EncodeInstruction(name, args)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(p.ID, data, metas...), nil
}

// withPrograms adds the well known program accounts to a role set.
func withPrograms(accounts AccountSet) AccountSet {
	accounts[RoleTokenProgram] = token.ProgramKey
	accounts[RoleAssociatedTokenProgram] = token.AssociatedTokenAccountProgramKey
	accounts[RoleSystemProgram] = system.ProgramKey
	return accounts
}

// EmissionParams are the tunables written by initialize and configure.
type EmissionParams struct {
	Cap                         uint64
	BaseRatePerDay              uint64
	AnnualDecayBps              uint16
	ThrottleTargetPerUserMicros uint64
	ClampMinBps                 uint16
	ClampMaxBps                 uint16
}

// DefaultEmissionParams is the localnet bootstrap configuration: a 121.5B token
// cap emitting roughly 832k tokens per day, decaying 15% per year.
func DefaultEmissionParams() EmissionParams {
	return EmissionParams{
		Cap:                         121_500_000_000_000_000,
		BaseRatePerDay:              832_191_780_821,
		AnnualDecayBps:              1500,
		ThrottleTargetPerUserMicros: 2_000_000_000_000,
		ClampMinBps:                 3000,
		ClampMaxBps:                 10000,
	}
}

func (p EmissionParams) toArgs() anchor.Args {
	return anchor.Args{
		"cap":                             p.Cap,
		"base_rate_per_day":               p.BaseRatePerDay,
		"annual_decay_bps":                p.AnnualDecayBps,
		"throttle_target_per_user_micros": p.ThrottleTargetPerUserMicros,
		"clamp_min_bps":                   p.ClampMinBps,
		"clamp_max_bps":                   p.ClampMaxBps,
	}
}

func emissionParamsFromValues(values anchor.Values) (EmissionParams, error) {
	var p EmissionParams
	var err error

	if p.Cap, err = values.Uint64("cap"); err != nil {
		return p, err
	}
	if p.BaseRatePerDay, err = values.Uint64("base_rate_per_day"); err != nil {
		return p, err
	}
	if p.AnnualDecayBps, err = values.Uint16("annual_decay_bps"); err != nil {
		return p, err
	}
	if p.ThrottleTargetPerUserMicros, err = values.Uint64("throttle_target_per_user_micros"); err != nil {
		return p, err
	}
	if p.ClampMinBps, err = values.Uint16("clamp_min_bps"); err != nil {
		return p, err
	}
	if p.ClampMaxBps, err = values.Uint16("clamp_max_bps"); err != nil {
		return p, err
	}
	return p, nil
}

// DecompiledInstruction is a program instruction mapped back onto the schema.
type DecompiledInstruction struct {
	Name     string
	Args     anchor.Values
	Accounts AccountSet
	Metas    []solana.AccountMeta
}

// Amount returns the amount argument of stake_device and unstake_device.
func (d *DecompiledInstruction) Amount() (uint64, error) {
	return d.Args.Uint64("amount")
}

// EmissionParams returns the arguments of initialize and configure.
func (d *DecompiledInstruction) EmissionParams() (EmissionParams, error) {
	return emissionParamsFromValues(d.Args)
}

// DecompileInstruction identifies and decodes an instruction addressed to the
// program, pairing each account with its schema role.
func (p *Program) DecompileInstruction(ix solana.Instruction) (*DecompiledInstruction, error) {
	if !bytes.Equal(ix.Program, p.ID) {
		return nil, errors.Wrap(solana.ErrIncorrectProgram, "not an emission program instruction")
	}

	name, values, err := p.IDL.DecodeInstruction(ix.Data)
	if err != nil {
		return nil, err
	}

	desc, err := p.IDL.Instruction(name)
	if err != nil {
		return nil, err
	}
	if len(ix.Accounts) != len(desc.Accounts) {
		return nil, errors.Wrapf(solana.ErrIncorrectInstruction, "%s: expected %d accounts, got %d", name, len(desc.Accounts), len(ix.Accounts))
	}

	accounts := make(AccountSet, len(desc.Accounts))
	for i, item := range desc.Accounts {
		accounts[Role(item.Name)] = ix.Accounts[i].PublicKey
	}

	return &DecompiledInstruction{
		Name:     name,
		Args:     values,
		Accounts: accounts,
		Metas:    ix.Accounts,
	}, nil
}
