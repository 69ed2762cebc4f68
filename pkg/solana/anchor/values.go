package anchor

import (
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"
)

// Args are named instruction arguments. Integers may be any Go integer type
// that fits the declared field width; public keys are ed25519.PublicKey,
// []byte or [32]byte.
type Args map[string]interface{}

// Values are named fields decoded from an account or instruction. Each value
// has the exact Go type of its declared field: uint8, uint16, uint32, uint64,
// int64 or ed25519.PublicKey.
type Values map[string]interface{}

func (v Values) lookup(name string) (interface{}, error) {
	raw, ok := v[name]
	if !ok {
		return nil, errors.Errorf("field %s not present", name)
	}
	return raw, nil
}

// Uint64 returns an unsigned field widened to 64 bits.
func (v Values) Uint64(name string) (uint64, error) {
	raw, err := v.lookup(name)
	if err != nil {
		return 0, err
	}

	switch n := raw.(type) {
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgumentType, "field %s is %T, not an unsigned integer", name, raw)
}

// Uint32 returns an unsigned field of at most 32 bits.
func (v Values) Uint32(name string) (uint32, error) {
	n, err := v.narrow(name, math.MaxUint32)
	return uint32(n), err
}

// Uint16 returns an unsigned field of at most 16 bits.
func (v Values) Uint16(name string) (uint16, error) {
	n, err := v.narrow(name, math.MaxUint16)
	return uint16(n), err
}

func (v Values) Uint8(name string) (uint8, error) {
	n, err := v.narrow(name, math.MaxUint8)
	return uint8(n), err
}

// narrow only accepts fields whose declared width fits within max, regardless
// of the value they currently hold.
func (v Values) narrow(name string, max uint64) (uint64, error) {
	raw, err := v.lookup(name)
	if err != nil {
		return 0, err
	}

	var width uint64
	switch raw.(type) {
	case uint8:
		width = math.MaxUint8
	case uint16:
		width = math.MaxUint16
	case uint32:
		width = math.MaxUint32
	case uint64:
		width = math.MaxUint64
	default:
		return 0, errors.Wrapf(ErrInvalidArgumentType, "field %s is %T, not an unsigned integer", name, raw)
	}
	if width > max {
		return 0, errors.Wrapf(ErrInvalidArgumentType, "field %s is %T, too wide", name, raw)
	}
	return v.Uint64(name)
}

func (v Values) Int64(name string) (int64, error) {
	raw, err := v.lookup(name)
	if err != nil {
		return 0, err
	}

	switch n := raw.(type) {
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	}
	return 0, errors.Wrapf(ErrInvalidArgumentType, "field %s is %T, not a signed integer", name, raw)
}

func (v Values) PublicKey(name string) (ed25519.PublicKey, error) {
	raw, err := v.lookup(name)
	if err != nil {
		return nil, err
	}

	key, ok := raw.(ed25519.PublicKey)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgumentType, "field %s is %T, not a public key", name, raw)
	}
	return key, nil
}
