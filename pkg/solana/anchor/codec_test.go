package anchor

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) ed25519.PublicKey {
	key := make([]byte, ed25519.PublicKeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestEncodeInstruction(t *testing.T) {
	idl := loadTestIDL(t)
	owner := testKey(7)

	data, err := idl.EncodeInstruction("initialize", Args{
		"start": uint64(121500000000000000),
		"step_size":  3,
		"owner": owner,
	})
	require.NoError(t, err)
	require.Len(t, data, 8+8+2+32)

	disc := InstructionDiscriminator("initialize")
	assert.Equal(t, disc[:], data[:8])
	assert.EqualValues(t, 121500000000000000, binary.LittleEndian.Uint64(data[8:]))
	assert.EqualValues(t, 3, binary.LittleEndian.Uint16(data[16:]))
	assert.Equal(t, []byte(owner), data[18:])

	data, err = idl.EncodeInstruction("increment", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{11, 18, 104, 9, 104, 174, 59, 33}, data)

	data, err = idl.EncodeInstruction("set_limits", Args{
		"lo":     uint8(1),
		"hi":     uint32(math.MaxUint32),
		"offset": int64(-2),
	})
	require.NoError(t, err)
	require.Len(t, data, 8+1+4+8)
	assert.EqualValues(t, 1, data[8])
	assert.EqualValues(t, uint32(math.MaxUint32), binary.LittleEndian.Uint32(data[9:]))
	assert.EqualValues(t, -2, int64(binary.LittleEndian.Uint64(data[13:])))
}

func TestEncodeInstruction_Errors(t *testing.T) {
	idl := loadTestIDL(t)

	for _, tc := range []struct {
		name string
		op   string
		args Args
		err  error
	}{
		{
			name: "unknown operation",
			op:   "decrement",
			err:  ErrUnknownOperation,
		},
		{
			name: "too few args",
			op:   "initialize",
			args: Args{"start": uint64(1)},
			err:  ErrArgumentCountMismatch,
		},
		{
			name: "too many args",
			op:   "increment",
			args: Args{"by": uint64(1)},
			err:  ErrArgumentCountMismatch,
		},
		{
			name: "misnamed arg",
			op:   "initialize",
			args: Args{"start": uint64(1), "stride": uint16(1), "owner": testKey(1)},
			err:  ErrArgumentCountMismatch,
		},
		{
			name: "u16 overflow",
			op:   "initialize",
			args: Args{"start": uint64(1), "step_size": 65536, "owner": testKey(1)},
			err:  ErrValueOutOfRange,
		},
		{
			name: "negative unsigned",
			op:   "initialize",
			args: Args{"start": -1, "step_size": 1, "owner": testKey(1)},
			err:  ErrValueOutOfRange,
		},
		{
			name: "i64 overflow",
			op:   "set_limits",
			args: Args{"lo": 1, "hi": 1, "offset": uint64(math.MaxUint64)},
			err:  ErrValueOutOfRange,
		},
		{
			name: "u8 overflow",
			op:   "set_limits",
			args: Args{"lo": 256, "hi": 1, "offset": 0},
			err:  ErrValueOutOfRange,
		},
		{
			name: "float",
			op:   "set_limits",
			args: Args{"lo": 1, "hi": 1.5, "offset": 0},
			err:  ErrInvalidArgumentType,
		},
		{
			name: "short key",
			op:   "initialize",
			args: Args{"start": uint64(1), "step_size": 1, "owner": []byte{1, 2, 3}},
			err:  ErrValueOutOfRange,
		},
		{
			name: "string key",
			op:   "initialize",
			args: Args{"start": uint64(1), "step_size": 1, "owner": "11111111111111111111111111111111"},
			err:  ErrInvalidArgumentType,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := idl.EncodeInstruction(tc.op, tc.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.err), err.Error())
		})
	}
}

func TestDecodeInstruction_RoundTrip(t *testing.T) {
	idl := loadTestIDL(t)
	owner := testKey(9)

	data, err := idl.EncodeInstruction("initialize", Args{
		"start": uint64(math.MaxUint64),
		"step_size":  uint16(10000),
		"owner": owner,
	})
	require.NoError(t, err)

	name, values, err := idl.DecodeInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, "initialize", name)
	assert.Equal(t, Values{
		"start": uint64(math.MaxUint64),
		"step_size":  uint16(10000),
		"owner": owner,
	}, values)

	_, _, err = idl.DecodeInstruction(append(data, 0))
	assert.True(t, errors.Is(err, ErrInvalidInstruction))

	_, _, err = idl.DecodeInstruction(data[:len(data)-1])
	assert.True(t, errors.Is(err, ErrInvalidInstruction))

	_, _, err = idl.DecodeInstruction(data[:4])
	assert.True(t, errors.Is(err, ErrInvalidInstruction))

	_, _, err = idl.DecodeInstruction(make([]byte, 8))
	assert.True(t, errors.Is(err, ErrUnknownOperation))
}

func TestDecodeAccount(t *testing.T) {
	idl := loadTestIDL(t)
	owner := testKey(3)

	data, err := idl.EncodeAccount("Counter", Values{
		"owner": owner,
		"count": uint64(1 << 60),
		"step_size":  uint16(2),
		"bump":  uint8(254),
	})
	require.NoError(t, err)
	require.Len(t, data, 8+32+8+2+1)

	// Allocated accounts usually carry slack after the declared fields
	data = append(data, make([]byte, 16)...)

	values, err := idl.DecodeAccount("Counter", data)
	require.NoError(t, err)

	actualOwner, err := values.PublicKey("owner")
	require.NoError(t, err)
	assert.EqualValues(t, owner, actualOwner)

	count, err := values.Uint64("count")
	require.NoError(t, err)
	assert.EqualValues(t, uint64(1<<60), count)

	step, err := values.Uint16("step_size")
	require.NoError(t, err)
	assert.EqualValues(t, 2, step)

	bump, err := values.Uint8("bump")
	require.NoError(t, err)
	assert.EqualValues(t, 254, bump)

	_, err = idl.DecodeAccount("Counter", data[:20])
	assert.True(t, errors.Is(err, ErrInvalidAccountData))

	_, err = idl.DecodeAccount("Counter", data[:4])
	assert.True(t, errors.Is(err, ErrInvalidAccountData))

	corrupted := append([]byte{}, data...)
	corrupted[0] ^= 0xff
	_, err = idl.DecodeAccount("Counter", corrupted)
	assert.True(t, errors.Is(err, ErrInvalidAccountData))

	_, err = idl.DecodeAccount("Missing", data)
	assert.True(t, errors.Is(err, ErrUnknownAccountType))
}

func TestValues_Accessors(t *testing.T) {
	values := Values{
		"u8":  uint8(1),
		"u16": uint16(2),
		"u32": uint32(3),
		"u64": uint64(4),
		"i64": int64(-5),
		"key": testKey(1),
	}

	// Widening
	for _, name := range []string{"u8", "u16", "u32", "u64"} {
		_, err := values.Uint64(name)
		assert.NoError(t, err)
	}
	v32, err := values.Uint32("u16")
	require.NoError(t, err)
	assert.EqualValues(t, 2, v32)
	i64, err := values.Int64("u32")
	require.NoError(t, err)
	assert.EqualValues(t, 3, i64)

	// Narrowing
	_, err = values.Uint32("u64")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))
	_, err = values.Uint16("u32")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))
	_, err = values.Uint8("u16")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))
	_, err = values.Int64("u64")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))

	// Mismatched kinds
	_, err = values.Uint64("i64")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))
	_, err = values.PublicKey("u64")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))
	_, err = values.Uint64("key")
	assert.True(t, errors.Is(err, ErrInvalidArgumentType))

	_, err = values.Uint64("missing")
	assert.Error(t, err)
}
