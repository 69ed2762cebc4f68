package stride

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stride-labs/stride-emission/pkg/solana/emission"
	"github.com/stride-labs/stride-emission/pkg/solana/token"
)

// Reader decodes the emission program's accounts and the balances of the
// token accounts around them.
type Reader struct {
	log       *logrus.Entry
	ledger    Ledger
	program   *emission.Program
	addresses *emission.Addresses
	mint      ed25519.PublicKey
}

// NewReader reads the deployment described by program. mint is optional and
// takes precedence over the mint recorded in the emission state.
func NewReader(ledger Ledger, program *emission.Program, mint ed25519.PublicKey) (*Reader, error) {
	addresses, err := emission.NewAddresses(program.ID)
	if err != nil {
		return nil, err
	}

	return &Reader{
		log:       logrus.StandardLogger().WithField("type", "stride/reader"),
		ledger:    ledger,
		program:   program,
		addresses: addresses,
		mint:      mint,
	}, nil
}

func (r *Reader) GetEmissionState(ctx context.Context) (*emission.StateView, error) {
	address, _, err := r.addresses.State()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive state address")
	}

	data, err := r.ledger.GetAccountData(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, errors.Wrap(ErrStateNotFound, base58.Encode(address))
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get emission state")
	}

	state, err := emission.DecodeEmissionState(r.program.IDL, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode emission state %s", base58.Encode(address))
	}
	return state, nil
}

func (r *Reader) GetUserAccount(ctx context.Context, owner ed25519.PublicKey) (*emission.UserView, error) {
	address, _, err := r.addresses.User(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive user address")
	}

	data, err := r.ledger.GetAccountData(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, errors.Wrap(ErrUserNotFound, base58.Encode(address))
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get user account")
	}

	user, err := emission.DecodeUserAccount(r.program.IDL, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode user account %s", base58.Encode(address))
	}
	return user, nil
}

// GetMint returns the configured mint, or the emission state's mint when none
// is configured.
func (r *Reader) GetMint(ctx context.Context) (ed25519.PublicKey, error) {
	if r.mint != nil {
		return r.mint, nil
	}

	state, err := r.GetEmissionState(ctx)
	if err != nil {
		return nil, err
	}
	return state.Mint, nil
}

// Balances are the raw token balances of an owner's token account and of the
// vault holding their stake.
type Balances struct {
	Addresses *emission.OwnerAddresses
	User      uint64
	Vault     uint64
}

func (b *Balances) String() string {
	return "user=" + FormatAmount(b.User) + " vault=" + FormatAmount(b.Vault)
}

// GetBalances reads both balances concurrently. A token account that does not
// exist yet has a zero balance.
func (r *Reader) GetBalances(ctx context.Context, owner, mint ed25519.PublicKey) (*Balances, error) {
	addresses, err := r.addresses.ForOwner(owner, mint)
	if err != nil {
		return nil, err
	}

	balances := &Balances{Addresses: addresses}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balance, err := r.balanceOrZero(ctx, addresses.UserATA)
		if err != nil {
			return errors.Wrap(err, "failed to get user token balance")
		}
		balances.User = balance
		return nil
	})
	g.Go(func() error {
		balance, err := r.balanceOrZero(ctx, addresses.VaultATA)
		if err != nil {
			return errors.Wrap(err, "failed to get vault token balance")
		}
		balances.Vault = balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"owner": base58.Encode(owner),
		"user":  balances.User,
		"vault": balances.Vault,
	}).Debug("read balances")

	return balances, nil
}

func (r *Reader) balanceOrZero(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	balance, err := r.ledger.GetTokenAccountBalance(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	return balance, err
}

func (r *Reader) AccountExists(ctx context.Context, address ed25519.PublicKey) (bool, error) {
	_, err := r.ledger.GetAccountData(ctx, address)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// CheckMint verifies mint is an initialized SPL token mint. It is a no-op when
// the ledger cannot report account owners.
func (r *Reader) CheckMint(ctx context.Context, mint ed25519.PublicKey) error {
	ownerLedger, ok := r.ledger.(AccountOwnerLedger)
	if !ok {
		return nil
	}

	owner, err := ownerLedger.GetAccountOwner(ctx, mint)
	if errors.Is(err, ErrAccountNotFound) {
		return errors.Wrapf(ErrInvalidMint, "%s does not exist", base58.Encode(mint))
	} else if err != nil {
		return errors.Wrap(err, "failed to get mint owner")
	}
	if !bytes.Equal(owner, token.ProgramKey) {
		return errors.Wrapf(ErrInvalidMint, "%s is owned by %s", base58.Encode(mint), base58.Encode(owner))
	}

	data, err := r.ledger.GetAccountData(ctx, mint)
	if err != nil {
		return errors.Wrap(err, "failed to get mint")
	}

	var m token.Mint
	if !m.Unmarshal(data) || !m.IsInitialized {
		return errors.Wrapf(ErrInvalidMint, "%s is not an initialized mint", base58.Encode(mint))
	}
	if m.Decimals != Decimals {
		r.log.WithFields(logrus.Fields{
			"mint":     base58.Encode(mint),
			"decimals": m.Decimals,
		}).Warn("mint decimals differ from the amounts this client formats")
	}

	return nil
}
