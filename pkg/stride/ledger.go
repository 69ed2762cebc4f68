package stride

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana"
)

// Ledger reads raw chain state.
type Ledger interface {
	// GetAccountData returns ErrAccountNotFound when the address holds no
	// account.
	GetAccountData(ctx context.Context, address ed25519.PublicKey) ([]byte, error)

	// GetTokenAccountBalance returns the balance in base units, or
	// ErrAccountNotFound when the token account does not exist.
	GetTokenAccountBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error)
}

// AccountOwnerLedger is a Ledger that can also report which program owns an
// account.
type AccountOwnerLedger interface {
	Ledger

	GetAccountOwner(ctx context.Context, address ed25519.PublicKey) (ed25519.PublicKey, error)
}

type rpcLedger struct {
	client     solana.Client
	commitment solana.Commitment
}

// NewRPCLedger reads state through a Solana JSON-RPC client.
func NewRPCLedger(client solana.Client, commitment solana.Commitment) AccountOwnerLedger {
	return &rpcLedger{
		client:     client,
		commitment: commitment,
	}
}

func (l *rpcLedger) getAccountInfo(ctx context.Context, address ed25519.PublicKey) (solana.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return solana.AccountInfo{}, err
	}

	info, err := l.client.GetAccountInfo(address, l.commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return info, errors.Wrap(ErrAccountNotFound, base58.Encode(address))
	} else if err != nil {
		return info, err
	}
	return info, nil
}

func (l *rpcLedger) GetAccountData(ctx context.Context, address ed25519.PublicKey) ([]byte, error) {
	info, err := l.getAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	return info.Data, nil
}

func (l *rpcLedger) GetAccountOwner(ctx context.Context, address ed25519.PublicKey) (ed25519.PublicKey, error) {
	info, err := l.getAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	return info.Owner, nil
}

func (l *rpcLedger) GetTokenAccountBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	balance, _, err := l.client.GetTokenAccountBalance(address, l.commitment)
	if errors.Is(err, solana.ErrNoBalance) {
		return 0, errors.Wrap(ErrAccountNotFound, base58.Encode(address))
	} else if err != nil {
		return 0, err
	}
	return balance, nil
}
