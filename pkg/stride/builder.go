package stride

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/emission"
	"github.com/stride-labs/stride-emission/pkg/solana/token"
)

// Batch is one operation's instructions. Pre holds the account creations
// Main depends on; all of them are submitted together.
type Batch struct {
	Pre  []solana.Instruction
	Main solana.Instruction
}

// Instructions returns Pre followed by Main.
func (b *Batch) Instructions() []solana.Instruction {
	instructions := make([]solana.Instruction, 0, len(b.Pre)+1)
	instructions = append(instructions, b.Pre...)
	return append(instructions, b.Main)
}

// BuildInitialize creates the emission state for mint. A nil mint uses the
// configured one; nil params use emission.DefaultEmissionParams.
func (c *Client) BuildInitialize(ctx context.Context, payer, mint ed25519.PublicKey, params *emission.EmissionParams) (*Batch, error) {
	if mint == nil {
		mint = c.mint
	}
	if mint == nil {
		return nil, errors.Wrap(ErrInvalidMint, "no mint provided or configured")
	}
	if params == nil {
		defaults := emission.DefaultEmissionParams()
		params = &defaults
	}

	if err := c.reader.CheckMint(ctx, mint); err != nil {
		return nil, err
	}

	state, _, err := c.addresses.State()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive state address")
	}

	ix, err := c.program.NewInitializeEmissionStateInstruction(
		&emission.InitializeEmissionStateInstructionAccounts{
			State: state,
			Mint:  mint,
			Payer: payer,
		},
		params,
	)
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionInitializeEmissionState, payer, nil)
	return &Batch{Main: ix}, nil
}

// BuildConfigure overwrites the emission parameters of an existing state.
func (c *Client) BuildConfigure(ctx context.Context, payer ed25519.PublicKey, params *emission.EmissionParams) (*Batch, error) {
	if params == nil {
		return nil, errors.New("emission params are required")
	}

	if _, err := c.reader.GetEmissionState(ctx); err != nil {
		return nil, err
	}

	state, _, err := c.addresses.State()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive state address")
	}

	ix, err := c.program.NewConfigureEmissionStateInstruction(
		&emission.ConfigureEmissionStateInstructionAccounts{
			State: state,
			Payer: payer,
		},
		params,
	)
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionConfigureEmissionState, payer, nil)
	return &Batch{Main: ix}, nil
}

// BuildStakeInit creates owner's user account.
func (c *Client) BuildStakeInit(ctx context.Context, owner ed25519.PublicKey) (*Batch, error) {
	addresses, err := c.ownerAddresses(ctx, owner)
	if err != nil {
		return nil, err
	}

	ix, err := c.program.NewStakeDeviceInitInstruction(&emission.StakeDeviceInitInstructionAccounts{
		User:  addresses.User,
		State: addresses.State,
		Mint:  addresses.Mint,
		Payer: owner,
	})
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionStakeDeviceInit, owner, nil)
	return &Batch{Main: ix}, nil
}

// BuildStake moves amount from owner's token account into their vault. Both
// token accounts are created idempotently first.
func (c *Client) BuildStake(ctx context.Context, owner ed25519.PublicKey, amount Amount) (*Batch, error) {
	baseUnits, err := amount.BaseUnits()
	if err != nil {
		return nil, err
	}

	addresses, err := c.ownerAddresses(ctx, owner)
	if err != nil {
		return nil, err
	}

	createUserATA, _, err := token.CreateAssociatedTokenAccountIdempotent(owner, owner, addresses.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build user token account creation")
	}
	createVaultATA, _, err := token.CreateAssociatedTokenAccountIdempotent(owner, addresses.VaultAuthority, addresses.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build vault token account creation")
	}

	ix, err := c.program.NewStakeDeviceInstruction(
		emission.StakeDeviceAccountsFor(addresses),
		&emission.StakeDeviceInstructionArgs{Amount: baseUnits},
	)
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionStakeDevice, owner, logrus.Fields{"amount": baseUnits})
	return &Batch{
		Pre:  []solana.Instruction{createUserATA, createVaultATA},
		Main: ix,
	}, nil
}

// BuildUnstake returns amount from owner's vault. The amount is bounded by
// the vault balance observed now; AllStaked withdraws all of it.
func (c *Client) BuildUnstake(ctx context.Context, owner ed25519.PublicKey, amount Amount) (*Batch, error) {
	// Shape errors don't need a round trip.
	if !amount.IsAllStaked() {
		if _, err := amount.BaseUnits(); err != nil {
			return nil, err
		}
	}

	addresses, err := c.ownerAddresses(ctx, owner)
	if err != nil {
		return nil, err
	}

	balance, err := c.reader.balanceOrZero(ctx, addresses.VaultATA)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vault balance")
	}

	baseUnits, err := amount.Resolve(balance)
	if err != nil {
		return nil, err
	}

	ix, err := c.program.NewUnstakeDeviceInstruction(
		emission.StakeDeviceAccountsFor(addresses),
		&emission.UnstakeDeviceInstructionArgs{Amount: baseUnits},
	)
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionUnstakeDevice, owner, logrus.Fields{
		"amount":  baseUnits,
		"staked":  balance,
		"request": amount.String(),
	})
	return &Batch{Main: ix}, nil
}

// BuildClaim mints the current epoch's reward to owner. The user token
// account is created first if it does not exist yet. The check is not atomic
// with submission, so claims for one owner should be serialized.
func (c *Client) BuildClaim(ctx context.Context, owner ed25519.PublicKey) (*Batch, error) {
	addresses, err := c.ownerAddresses(ctx, owner)
	if err != nil {
		return nil, err
	}

	exists, err := c.reader.AccountExists(ctx, addresses.UserATA)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check user token account")
	}

	var pre []solana.Instruction
	if !exists {
		create, _, err := token.CreateAssociatedTokenAccount(owner, owner, addresses.Mint)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build user token account creation")
		}
		pre = append(pre, create)
	}

	ix, err := c.program.NewClaimRewardsInstruction(&emission.ClaimRewardsInstructionAccounts{
		User:    addresses.User,
		State:   addresses.State,
		Mint:    addresses.Mint,
		UserATA: addresses.UserATA,
		Payer:   owner,
	})
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionClaimRewards, owner, logrus.Fields{"create_user_ata": !exists})
	return &Batch{Pre: pre, Main: ix}, nil
}

// BuildTick advances the emission epoch.
func (c *Client) BuildTick(ctx context.Context) (*Batch, error) {
	state, _, err := c.addresses.State()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive state address")
	}

	ix, err := c.program.NewUpdateEpochInstruction(&emission.UpdateEpochInstructionAccounts{State: state})
	if err != nil {
		return nil, err
	}

	c.logBuild(emission.InstructionUpdateEpoch, nil, nil)
	return &Batch{Main: ix}, nil
}

func (c *Client) ownerAddresses(ctx context.Context, owner ed25519.PublicKey) (*emission.OwnerAddresses, error) {
	if err := solana.ValidatePublicKey(owner); err != nil {
		return nil, errors.Wrap(err, "invalid owner")
	}

	mint, err := c.reader.GetMint(ctx)
	if err != nil {
		return nil, err
	}

	return c.addresses.ForOwner(owner, mint)
}

func (c *Client) logBuild(operation string, signer ed25519.PublicKey, fields logrus.Fields) {
	log := c.log.WithField("operation", operation)
	if signer != nil {
		log = log.WithField("signer", base58.Encode(signer))
	}
	log.WithFields(fields).Debug("built instruction")
}
