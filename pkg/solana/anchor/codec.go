package anchor

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// EncodeInstruction produces the instruction payload for the named operation:
// the discriminator followed by every argument in declaration order.
func (idl *IDL) EncodeInstruction(name string, args Args) ([]byte, error) {
	desc, err := idl.Instruction(name)
	if err != nil {
		return nil, err
	}

	if len(args) != len(desc.Args) {
		return nil, errors.Wrapf(ErrArgumentCountMismatch, "%s: expected %d args, got %d", desc.Name, len(desc.Args), len(args))
	}

	size := DiscriminatorSize
	for _, f := range desc.Args {
		size += f.Type.Size()
	}

	buf := make([]byte, 0, size)
	buf = append(buf, desc.Discriminator[:]...)
	for _, f := range desc.Args {
		v, ok := args[f.Name]
		if !ok {
			return nil, errors.Wrapf(ErrArgumentCountMismatch, "%s: missing arg %s", desc.Name, f.Name)
		}

		encoded, err := encodeField(f.Type, v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: arg %s", desc.Name, f.Name)
		}
		buf = append(buf, encoded...)
	}

	return buf, nil
}

// DecodeInstruction identifies the operation by its discriminator and decodes
// its arguments. The payload must be consumed exactly.
func (idl *IDL) DecodeInstruction(data []byte) (string, Values, error) {
	if len(data) < DiscriminatorSize {
		return "", nil, errors.Wrapf(ErrInvalidInstruction, "%d bytes is shorter than a discriminator", len(data))
	}

	for _, desc := range idl.instructions {
		if !bytes.Equal(desc.Discriminator[:], data[:DiscriminatorSize]) {
			continue
		}

		values, n, err := decodeFields(desc.Args, data[DiscriminatorSize:])
		if err != nil {
			return "", nil, errors.Wrapf(ErrInvalidInstruction, "%s: %v", desc.Name, err)
		}
		if n != len(data)-DiscriminatorSize {
			return "", nil, errors.Wrapf(ErrInvalidInstruction, "%s: %d trailing bytes", desc.Name, len(data)-DiscriminatorSize-n)
		}
		return desc.Name, values, nil
	}

	return "", nil, errors.Wrapf(ErrUnknownOperation, "discriminator %x", data[:DiscriminatorSize])
}

// DecodeAccount decodes raw account data using the named account layout.
// Trailing bytes are permitted, since accounts are usually allocated with more
// space than their fields need. Values are returned as decoded, without any
// validation of the program's own invariants.
func (idl *IDL) DecodeAccount(typeName string, data []byte) (Values, error) {
	desc, err := idl.Account(typeName)
	if err != nil {
		return nil, err
	}

	if len(data) < DiscriminatorSize {
		return nil, errors.Wrapf(ErrInvalidAccountData, "%s: %d bytes is shorter than a discriminator", typeName, len(data))
	}
	if !bytes.Equal(desc.Discriminator[:], data[:DiscriminatorSize]) {
		return nil, errors.Wrapf(ErrInvalidAccountData, "%s: discriminator mismatch", typeName)
	}

	values, _, err := decodeFields(desc.Fields, data[DiscriminatorSize:])
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAccountData, "%s: %v", typeName, err)
	}
	return values, nil
}

// EncodeAccount is the inverse of DecodeAccount. It's primarily useful for
// constructing fixtures.
func (idl *IDL) EncodeAccount(typeName string, values Values) ([]byte, error) {
	desc, err := idl.Account(typeName)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, DiscriminatorSize+desc.Size())
	buf = append(buf, desc.Discriminator[:]...)
	for _, f := range desc.Fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, errors.Wrapf(ErrArgumentCountMismatch, "%s: missing field %s", typeName, f.Name)
		}

		encoded, err := encodeField(f.Type, v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: field %s", typeName, f.Name)
		}
		buf = append(buf, encoded...)
	}
	return buf, nil
}

func decodeFields(fields []Field, data []byte) (Values, int, error) {
	values := make(Values, len(fields))

	var offset int
	for _, f := range fields {
		size := f.Type.Size()
		if offset+size > len(data) {
			return nil, 0, errors.Errorf("field %s: need %d bytes at offset %d, have %d", f.Name, size, offset, len(data))
		}

		v, err := decodeField(f.Type, data[offset:offset+size])
		if err != nil {
			return nil, 0, errors.Wrapf(err, "field %s", f.Name)
		}

		values[f.Name] = v
		offset += size
	}

	return values, offset, nil
}

func decodeField(t FieldType, b []byte) (interface{}, error) {
	switch t {
	case TypeU8:
		var v uint8
		err := borsh.Deserialize(&v, b)
		return v, err
	case TypeU16:
		var v uint16
		err := borsh.Deserialize(&v, b)
		return v, err
	case TypeU32:
		var v uint32
		err := borsh.Deserialize(&v, b)
		return v, err
	case TypeU64:
		var v uint64
		err := borsh.Deserialize(&v, b)
		return v, err
	case TypeI64:
		var v int64
		err := borsh.Deserialize(&v, b)
		return v, err
	case TypePubkey:
		var v [ed25519.PublicKeySize]byte
		if err := borsh.Deserialize(&v, b); err != nil {
			return nil, err
		}
		return ed25519.PublicKey(v[:]), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "%q", string(t))
}

func encodeField(t FieldType, v interface{}) ([]byte, error) {
	switch t {
	case TypeU8, TypeU16, TypeU32, TypeU64:
		n, err := toUint64(v)
		if err != nil {
			return nil, err
		}

		switch t {
		case TypeU8:
			if n > math.MaxUint8 {
				return nil, errors.Wrapf(ErrValueOutOfRange, "%d overflows u8", n)
			}
			return borsh.Serialize(uint8(n))
		case TypeU16:
			if n > math.MaxUint16 {
				return nil, errors.Wrapf(ErrValueOutOfRange, "%d overflows u16", n)
			}
			return borsh.Serialize(uint16(n))
		case TypeU32:
			if n > math.MaxUint32 {
				return nil, errors.Wrapf(ErrValueOutOfRange, "%d overflows u32", n)
			}
			return borsh.Serialize(uint32(n))
		default:
			return borsh.Serialize(n)
		}
	case TypeI64:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return borsh.Serialize(n)
	case TypePubkey:
		key, err := toPublicKey(v)
		if err != nil {
			return nil, err
		}
		var fixed [ed25519.PublicKeySize]byte
		copy(fixed[:], key)
		return borsh.Serialize(fixed)
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "%q", string(t))
}

func toUint64(v interface{}) (uint64, error) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case int8, int16, int32, int64, int:
		signed, _ := toInt64(n)
		if signed < 0 {
			return 0, errors.Wrapf(ErrValueOutOfRange, "negative value %d for unsigned field", signed)
		}
		return uint64(signed), nil
	}
	return 0, errors.Wrapf(ErrInvalidArgumentType, "%T is not an integer", v)
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, errors.Wrapf(ErrValueOutOfRange, "%d overflows i64", n)
		}
		return int64(n), nil
	}
	return 0, errors.Wrapf(ErrInvalidArgumentType, "%T is not an integer", v)
}

func toPublicKey(v interface{}) (ed25519.PublicKey, error) {
	var key []byte
	switch k := v.(type) {
	case ed25519.PublicKey:
		key = k
	case []byte:
		key = k
	case [ed25519.PublicKeySize]byte:
		key = k[:]
	default:
		return nil, errors.Wrapf(ErrInvalidArgumentType, "%T is not a public key", v)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrValueOutOfRange, "public key is %d bytes", len(key))
	}
	return key, nil
}
