package emission

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
)

// StateView is the decoded EmissionState singleton. Fields are reported as
// stored; the program's own invariants (emitted <= cap, clamp ordering) are
// not checked.
type StateView struct {
	Cap                         uint64
	Emitted                     uint64
	BaseRatePerDay              uint64
	AnnualDecayBps              uint16
	ThrottleTargetPerUserMicros uint64
	ClampMinBps                 uint16
	ClampMaxBps                 uint16
	LastEpoch                   uint64
	Mint                        ed25519.PublicKey
	Bump                        uint8
}

func DecodeEmissionState(idl *anchor.IDL, data []byte) (*StateView, error) {
	values, err := idl.DecodeAccount(AccountTypeEmissionState, data)
	if err != nil {
		return nil, err
	}

	var obj StateView
	for _, f := range []struct {
		name string
		dst  *uint64
	}{
		{"cap", &obj.Cap},
		{"emitted", &obj.Emitted},
		{"base_rate_per_day", &obj.BaseRatePerDay},
		{"throttle_target_per_user_micros", &obj.ThrottleTargetPerUserMicros},
		{"last_epoch", &obj.LastEpoch},
	} {
		if *f.dst, err = values.Uint64(f.name); err != nil {
			return nil, errors.Wrap(err, "invalid emission state")
		}
	}
	for _, f := range []struct {
		name string
		dst  *uint16
	}{
		{"annual_decay_bps", &obj.AnnualDecayBps},
		{"clamp_min_bps", &obj.ClampMinBps},
		{"clamp_max_bps", &obj.ClampMaxBps},
	} {
		if *f.dst, err = values.Uint16(f.name); err != nil {
			return nil, errors.Wrap(err, "invalid emission state")
		}
	}
	if obj.Mint, err = values.PublicKey("mint"); err != nil {
		return nil, errors.Wrap(err, "invalid emission state")
	}
	if obj.Bump, err = values.Uint8("bump"); err != nil {
		return nil, errors.Wrap(err, "invalid emission state")
	}

	return &obj, nil
}

// Params returns the configurable subset of the state.
func (obj *StateView) Params() EmissionParams {
	return EmissionParams{
		Cap:                         obj.Cap,
		BaseRatePerDay:              obj.BaseRatePerDay,
		AnnualDecayBps:              obj.AnnualDecayBps,
		ThrottleTargetPerUserMicros: obj.ThrottleTargetPerUserMicros,
		ClampMinBps:                 obj.ClampMinBps,
		ClampMaxBps:                 obj.ClampMaxBps,
	}
}

func (obj *StateView) String() string {
	return fmt.Sprintf(
		"EmissionState{cap=%d,emitted=%d,base_rate_per_day=%d,annual_decay_bps=%d,throttle_target_per_user_micros=%d,clamp_min_bps=%d,clamp_max_bps=%d,last_epoch=%d,mint=%s,bump=%d}",
		obj.Cap,
		obj.Emitted,
		obj.BaseRatePerDay,
		obj.AnnualDecayBps,
		obj.ThrottleTargetPerUserMicros,
		obj.ClampMinBps,
		obj.ClampMaxBps,
		obj.LastEpoch,
		base58.Encode(obj.Mint),
		obj.Bump,
	)
}
