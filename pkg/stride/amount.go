package stride

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/stride-labs/stride-emission/pkg/solana/token"
)

const (
	Decimals          = token.Decimals
	BaseUnitsPerToken = uint64(1_000_000)
)

var maxBaseUnits = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

type amountKind uint8

const (
	amountRaw amountKind = iota
	amountWhole
	amountAll
)

// Amount is a token quantity as requested by a caller: raw base units, whole
// tokens, or everything currently staked. It is resolved to base units when an
// instruction is built.
type Amount struct {
	kind  amountKind
	raw   uint64
	whole int64
}

func RawAmount(baseUnits uint64) Amount {
	return Amount{kind: amountRaw, raw: baseUnits}
}

func WholeTokens(tokens int64) Amount {
	return Amount{kind: amountWhole, whole: tokens}
}

// AllStaked resolves to the observed vault balance. Only unstaking accepts it.
func AllStaked() Amount {
	return Amount{kind: amountAll}
}

func (a Amount) IsAllStaked() bool {
	return a.kind == amountAll
}

// ParseAmount parses a whole token amount. "ALL" (any case) and the empty
// string mean AllStaked. Fractions are rejected with ErrInvalidAmount.
func ParseAmount(value string) (Amount, error) {
	value = strings.TrimSpace(value)
	if len(value) == 0 || strings.EqualFold(value, "all") {
		return AllStaked(), nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "%q is not a number", value)
	}
	if !d.IsInteger() {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "%q has a fractional part", value)
	}
	if !d.BigInt().IsInt64() {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "%q is out of range", value)
	}
	return WholeTokens(d.IntPart()), nil
}

// BaseUnits resolves a raw or whole amount. Zero, negative and overflowing
// amounts, as well as AllStaked, are ErrInvalidAmount.
func (a Amount) BaseUnits() (uint64, error) {
	switch a.kind {
	case amountRaw:
		if a.raw == 0 {
			return 0, errors.Wrap(ErrInvalidAmount, "amount must be positive")
		}
		return a.raw, nil
	case amountWhole:
		if a.whole <= 0 {
			return 0, errors.Wrapf(ErrInvalidAmount, "amount must be positive, got %d", a.whole)
		}
		base := decimal.NewFromInt(a.whole).Shift(Decimals)
		if base.GreaterThan(maxBaseUnits) {
			return 0, errors.Wrapf(ErrInvalidAmount, "%d tokens overflows base units", a.whole)
		}
		return base.BigInt().Uint64(), nil
	case amountAll:
		return 0, errors.Wrap(ErrInvalidAmount, "ALL requires an observed balance")
	}
	return 0, errors.Wrap(ErrInvalidAmount, "unknown amount kind")
}

// Resolve bounds the amount by an observed balance: AllStaked becomes the
// balance, anything larger than it is ErrInsufficientBalance.
func (a Amount) Resolve(balance uint64) (uint64, error) {
	var amount uint64
	if a.kind == amountAll {
		if balance == 0 {
			return 0, errors.Wrap(ErrInvalidAmount, "nothing is staked")
		}
		amount = balance
	} else {
		var err error
		if amount, err = a.BaseUnits(); err != nil {
			return 0, err
		}
	}

	if amount > balance {
		return 0, errors.Wrapf(ErrInsufficientBalance, "requested %s, staked %s", FormatAmount(amount), FormatAmount(balance))
	}
	return amount, nil
}

func (a Amount) String() string {
	switch a.kind {
	case amountRaw:
		return FormatAmount(a.raw)
	case amountWhole:
		return fmt.Sprintf("%d", a.whole)
	case amountAll:
		return "ALL"
	}
	return "unknown"
}

// FormatAmount renders base units as whole tokens with every decimal place,
// e.g. 1500000 is "1.500000".
func FormatAmount(baseUnits uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(baseUnits), -Decimals).StringFixed(Decimals)
}
