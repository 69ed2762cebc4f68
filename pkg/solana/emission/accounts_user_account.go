package emission

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
)

// UserView is the decoded per-owner staking record.
type UserView struct {
	Owner          ed25519.PublicKey
	DeviceCount    uint32
	CreatedAt      int64
	Bump           uint8
	LastClaimEpoch uint64
}

func DecodeUserAccount(idl *anchor.IDL, data []byte) (*UserView, error) {
	values, err := idl.DecodeAccount(AccountTypeUserAccount, data)
	if err != nil {
		return nil, err
	}

	var obj UserView
	if obj.Owner, err = values.PublicKey("owner"); err != nil {
		return nil, errors.Wrap(err, "invalid user account")
	}
	if obj.DeviceCount, err = values.Uint32("device_count"); err != nil {
		return nil, errors.Wrap(err, "invalid user account")
	}
	if obj.CreatedAt, err = values.Int64("created_at"); err != nil {
		return nil, errors.Wrap(err, "invalid user account")
	}
	if obj.Bump, err = values.Uint8("bump"); err != nil {
		return nil, errors.Wrap(err, "invalid user account")
	}
	if obj.LastClaimEpoch, err = values.Uint64("last_claim_epoch"); err != nil {
		return nil, errors.Wrap(err, "invalid user account")
	}

	return &obj, nil
}

// CreatedTime is CreatedAt as a UTC time.
func (obj *UserView) CreatedTime() time.Time {
	return time.Unix(obj.CreatedAt, 0).UTC()
}

func (obj *UserView) String() string {
	return fmt.Sprintf(
		"UserAccount{owner=%s,device_count=%d,created_at=%d,bump=%d,last_claim_epoch=%d}",
		base58.Encode(obj.Owner),
		obj.DeviceCount,
		obj.CreatedAt,
		obj.Bump,
		obj.LastClaimEpoch,
	)
}
