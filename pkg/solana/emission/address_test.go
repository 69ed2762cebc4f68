package emission

import (
	"crypto/ed25519"
	"testing"

	sdk "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/testutil"
)

func newTestAddresses(t *testing.T) *Addresses {
	addresses, err := NewAddresses(DefaultProgramID)
	require.NoError(t, err)
	return addresses
}

func TestAddresses_Deterministic(t *testing.T) {
	addresses := newTestAddresses(t)
	keys := testutil.GenerateSolanaKeys(t, 2)
	owner, mint := keys[0], keys[1]

	first, err := addresses.ForOwner(owner, mint)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := addresses.ForOwner(owner, mint)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	state, _, err := addresses.State()
	require.NoError(t, err)
	assert.EqualValues(t, state, first.State)

	user, _, err := addresses.User(owner)
	require.NoError(t, err)
	assert.EqualValues(t, user, first.User)

	vaultAuthority, _, err := addresses.VaultAuthority(user)
	require.NoError(t, err)
	assert.EqualValues(t, vaultAuthority, first.VaultAuthority)

	userATA, _, err := addresses.AssociatedTokenAccount(owner, mint)
	require.NoError(t, err)
	assert.EqualValues(t, userATA, first.UserATA)

	vaultATA, _, err := addresses.AssociatedTokenAccount(vaultAuthority, mint)
	require.NoError(t, err)
	assert.EqualValues(t, vaultATA, first.VaultATA)
}

func TestAddresses_UniquePerOwner(t *testing.T) {
	addresses := newTestAddresses(t)
	keys := testutil.GenerateSolanaKeys(t, 3)

	a, err := addresses.ForOwner(keys[0], keys[2])
	require.NoError(t, err)
	b, err := addresses.ForOwner(keys[1], keys[2])
	require.NoError(t, err)

	assert.Equal(t, a.State, b.State)
	assert.NotEqual(t, a.User, b.User)
	assert.NotEqual(t, a.VaultAuthority, b.VaultAuthority)
	assert.NotEqual(t, a.UserATA, b.UserATA)
	assert.NotEqual(t, a.VaultATA, b.VaultATA)
}

func TestAddresses_ProgramScoped(t *testing.T) {
	owner := testutil.GenerateSolanaKeys(t, 1)[0]
	other, err := NewAddresses(testutil.GenerateSolanaKeys(t, 1)[0])
	require.NoError(t, err)

	a, _, err := newTestAddresses(t).User(owner)
	require.NoError(t, err)
	b, _, err := other.User(owner)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAddresses_MatchesReferenceSDK(t *testing.T) {
	addresses := newTestAddresses(t)
	program := sdk.PublicKeyFromBytes(DefaultProgramID)

	keys := testutil.GenerateSolanaKeys(t, 2)
	owner, mint := keys[0], keys[1]

	actual, err := addresses.ForOwner(owner, mint)
	require.NoError(t, err)

	state, stateBump, err := sdk.FindProgramAddress([][]byte{[]byte("emission_state")}, program)
	require.NoError(t, err)
	assert.EqualValues(t, state[:], actual.State)
	_, bump, err := addresses.State()
	require.NoError(t, err)
	assert.Equal(t, stateBump, bump)

	user, _, err := sdk.FindProgramAddress([][]byte{[]byte("user"), owner}, program)
	require.NoError(t, err)
	assert.EqualValues(t, user[:], actual.User)

	vaultAuthority, _, err := sdk.FindProgramAddress([][]byte{[]byte("vault"), user[:]}, program)
	require.NoError(t, err)
	assert.EqualValues(t, vaultAuthority[:], actual.VaultAuthority)

	userATA, _, err := sdk.FindAssociatedTokenAddress(sdk.PublicKeyFromBytes(owner), sdk.PublicKeyFromBytes(mint))
	require.NoError(t, err)
	assert.EqualValues(t, userATA[:], actual.UserATA)

	vaultATA, _, err := sdk.FindAssociatedTokenAddress(vaultAuthority, sdk.PublicKeyFromBytes(mint))
	require.NoError(t, err)
	assert.EqualValues(t, vaultATA[:], actual.VaultATA)
}

func TestAddresses_InvalidInput(t *testing.T) {
	_, err := NewAddresses(make([]byte, 31))
	assert.True(t, errors.Is(err, solana.ErrInvalidPublicKeyLength))

	addresses := newTestAddresses(t)
	short := ed25519.PublicKey(make([]byte, 20))
	mint := testutil.GenerateSolanaKeys(t, 1)[0]

	_, _, err = addresses.User(short)
	assert.True(t, errors.Is(err, solana.ErrInvalidPublicKeyLength))

	_, _, err = addresses.VaultAuthority(short)
	assert.True(t, errors.Is(err, solana.ErrInvalidPublicKeyLength))

	_, _, err = addresses.AssociatedTokenAccount(short, mint)
	assert.True(t, errors.Is(err, solana.ErrInvalidPublicKeyLength))

	_, err = addresses.ForOwner(short, mint)
	assert.True(t, errors.Is(err, solana.ErrInvalidPublicKeyLength))

	_, err = addresses.ForOwner(mint, short)
	assert.True(t, errors.Is(err, solana.ErrInvalidPublicKeyLength))
}
