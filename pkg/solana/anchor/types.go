package anchor

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DiscriminatorSize = 8

// InstructionDiscriminator is sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) [DiscriminatorSize]byte {
	return discriminator("global:" + name)
}

// AccountDiscriminator is sha256("account:<Name>")[:8].
func AccountDiscriminator(name string) [DiscriminatorSize]byte {
	return discriminator("account:" + name)
}

func discriminator(preimage string) [DiscriminatorSize]byte {
	var d [DiscriminatorSize]byte
	h := sha256.Sum256([]byte(preimage))
	copy(d[:], h[:DiscriminatorSize])
	return d
}

// Discriminator is a JSON/YAML list of byte values.
type Discriminator []byte

func (d *Discriminator) UnmarshalJSON(b []byte) error {
	var values []int
	if err := json.Unmarshal(b, &values); err != nil {
		return errors.Wrap(err, "discriminator must be a list of bytes")
	}
	return d.set(values)
}

func (d *Discriminator) UnmarshalYAML(node *yaml.Node) error {
	var values []int
	if err := node.Decode(&values); err != nil {
		return errors.Wrap(err, "discriminator must be a list of bytes")
	}
	return d.set(values)
}

func (d *Discriminator) set(values []int) error {
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return errors.Errorf("discriminator byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*d = out
	return nil
}

// FieldType is a primitive type name. Only fixed width primitives are
// supported; defined, optional and vector types are rejected on load.
type FieldType string

const (
	TypeU8     FieldType = "u8"
	TypeU16    FieldType = "u16"
	TypeU32    FieldType = "u32"
	TypeU64    FieldType = "u64"
	TypeI64    FieldType = "i64"
	TypePubkey FieldType = "pubkey"

	typeLegacyPublicKey FieldType = "publicKey"
)

func (t *FieldType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrapf(ErrUnsupportedType, "%s", b)
	}
	*t = FieldType(s)
	return nil
}

func (t *FieldType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Wrapf(ErrUnsupportedType, "line %d", node.Line)
	}
	*t = FieldType(node.Value)
	return nil
}

func (t FieldType) normalize() (FieldType, error) {
	switch t {
	case TypeU8, TypeU16, TypeU32, TypeU64, TypeI64, TypePubkey:
		return t, nil
	case typeLegacyPublicKey:
		return TypePubkey, nil
	}
	return "", errors.Wrapf(ErrUnsupportedType, "%q", string(t))
}

// Size is the encoded width of the type in bytes.
func (t FieldType) Size() int {
	switch t {
	case TypeU8:
		return 1
	case TypeU16:
		return 2
	case TypeU32:
		return 4
	case TypeU64, TypeI64:
		return 8
	case TypePubkey, typeLegacyPublicKey:
		return ed25519.PublicKeySize
	}
	return 0
}

// Size is the encoded width of the account's fields, excluding the discriminator.
func (d *AccountDescriptor) Size() int {
	var size int
	for _, f := range d.Fields {
		size += f.Type.Size()
	}
	return size
}
