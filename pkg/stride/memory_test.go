package stride

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
	"github.com/stride-labs/stride-emission/pkg/solana/emission"
	"github.com/stride-labs/stride-emission/pkg/solana/token"
	"github.com/stride-labs/stride-emission/pkg/testutil"
)

type testLedger struct {
	mu       sync.Mutex
	accounts map[string][]byte
	owners   map[string]ed25519.PublicKey
	balances map[string]uint64
	reads    int
}

func newTestLedger() *testLedger {
	return &testLedger{
		accounts: make(map[string][]byte),
		owners:   make(map[string]ed25519.PublicKey),
		balances: make(map[string]uint64),
	}
}

func (l *testLedger) setAccount(address, owner ed25519.PublicKey, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := base58.Encode(address)
	l.accounts[key] = data
	l.owners[key] = owner
}

func (l *testLedger) setTokenAccount(address ed25519.PublicKey, balance uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := base58.Encode(address)
	if _, ok := l.accounts[key]; !ok {
		l.accounts[key] = make([]byte, token.AccountSize)
		l.owners[key] = token.ProgramKey
	}
	l.balances[key] = balance
}

func (l *testLedger) GetAccountData(_ context.Context, address ed25519.PublicKey) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reads++
	data, ok := l.accounts[base58.Encode(address)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return data, nil
}

func (l *testLedger) GetAccountOwner(_ context.Context, address ed25519.PublicKey) (ed25519.PublicKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reads++
	owner, ok := l.owners[base58.Encode(address)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return owner, nil
}

func (l *testLedger) GetTokenAccountBalance(_ context.Context, address ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reads++
	balance, ok := l.balances[base58.Encode(address)]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return balance, nil
}

func (l *testLedger) balance(address ed25519.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[base58.Encode(address)]
}

func (l *testLedger) exists(address ed25519.PublicKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.accounts[base58.Encode(address)]
	return ok
}

// testSubmitter applies the effect of each submitted instruction to a
// testLedger, all or nothing, the way the program would.
type testSubmitter struct {
	mu        sync.Mutex
	ledger    *testLedger
	program   *emission.Program
	reward    uint64
	err       error
	submitted [][]solana.Instruction
	claimed   map[string]bool
}

func newTestSubmitter(ledger *testLedger, program *emission.Program) *testSubmitter {
	return &testSubmitter{
		ledger:  ledger,
		program: program,
		reward:  5 * BaseUnitsPerToken,
		claimed: make(map[string]bool),
	}
}

func (s *testSubmitter) Submit(_ context.Context, instructions []solana.Instruction, signer ed25519.PrivateKey) (solana.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payer := signer.Public().(ed25519.PublicKey)
	txn := solana.NewTransaction(payer, instructions...)
	if err := txn.Sign(signer); err != nil {
		return solana.Signature{}, err
	}
	if s.err != nil {
		return txn.Signature(), s.err
	}

	s.submitted = append(s.submitted, instructions)

	snapshot := s.snapshot()
	for i, ix := range instructions {
		if err := s.apply(ix); err != nil {
			s.restore(snapshot)
			instructionErr := &solana.InstructionError{Index: i, Err: err}
			txErr, convErr := solana.TransactionErrorFromInstructionError(instructionErr)
			if convErr != nil {
				return txn.Signature(), convErr
			}
			return txn.Signature(), txErr.WithLogs([]string{"Program log: simulated failure"})
		}
	}

	return txn.Signature(), nil
}

type ledgerSnapshot struct {
	accounts map[string][]byte
	owners   map[string]ed25519.PublicKey
	balances map[string]uint64
}

func (s *testSubmitter) snapshot() ledgerSnapshot {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	snap := ledgerSnapshot{
		accounts: make(map[string][]byte),
		owners:   make(map[string]ed25519.PublicKey),
		balances: make(map[string]uint64),
	}
	for k, v := range s.ledger.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.ledger.owners {
		snap.owners[k] = v
	}
	for k, v := range s.ledger.balances {
		snap.balances[k] = v
	}
	return snap
}

func (s *testSubmitter) restore(snap ledgerSnapshot) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	s.ledger.accounts = snap.accounts
	s.ledger.owners = snap.owners
	s.ledger.balances = snap.balances
}

func (s *testSubmitter) apply(ix solana.Instruction) error {
	if token.IsCreateAssociatedAccount(ix) {
		address := ix.Accounts[1].PublicKey
		idempotent := len(ix.Data) == 1 && ix.Data[0] == 1
		if s.ledger.exists(address) {
			if idempotent {
				return nil
			}
			return errors.New(string(solana.InstructionErrorAccountAlreadyInitialized))
		}
		s.ledger.setTokenAccount(address, 0)
		return nil
	}

	decompiled, err := s.program.DecompileInstruction(ix)
	if err != nil {
		return err
	}

	switch decompiled.Name {
	case emission.InstructionStakeDeviceInit:
		data, err := s.program.IDL.EncodeAccount(emission.AccountTypeUserAccount, anchor.Values{
			"owner":            decompiled.Accounts[emission.RolePayer],
			"device_count":     uint16(0),
			"created_at":       time.Now().Unix(),
			"bump":             uint8(255),
			"last_claim_epoch": uint64(0),
		})
		if err != nil {
			return err
		}
		s.ledger.setAccount(decompiled.Accounts[emission.RoleUser], s.program.ID, data)
	case emission.InstructionStakeDevice, emission.InstructionUnstakeDevice:
		amount, err := decompiled.Amount()
		if err != nil {
			return err
		}

		from, to := decompiled.Accounts[emission.RoleUserATA], decompiled.Accounts[emission.RoleVaultATA]
		if decompiled.Name == emission.InstructionUnstakeDevice {
			from, to = to, from
		}
		if !s.ledger.exists(from) || !s.ledger.exists(to) {
			return errors.New(string(solana.InstructionErrorUninitializedAccount))
		}
		if s.ledger.balance(from) < amount {
			return solana.CustomError(1)
		}
		s.ledger.setTokenAccount(from, s.ledger.balance(from)-amount)
		s.ledger.setTokenAccount(to, s.ledger.balance(to)+amount)
	case emission.InstructionClaimRewards:
		user := base58.Encode(decompiled.Accounts[emission.RoleUser])
		if s.claimed[user] {
			return emission.ErrorAlreadyClaimedToday
		}
		userATA := decompiled.Accounts[emission.RoleUserATA]
		if !s.ledger.exists(userATA) {
			return errors.New(string(solana.InstructionErrorUninitializedAccount))
		}
		s.ledger.setTokenAccount(userATA, s.ledger.balance(userATA)+s.reward)
		s.claimed[user] = true
	case emission.InstructionUpdateEpoch:
		s.claimed = make(map[string]bool)
	}

	return nil
}

type testEnv struct {
	ledger    *testLedger
	submitter *testSubmitter
	client    *Client
	mint      ed25519.PublicKey
	admin     ed25519.PrivateKey
}

// setupTestEnv deploys an initialized emission state over a valid mint.
func setupTestEnv(t *testing.T) *testEnv {
	ledger := newTestLedger()

	mint := testutil.GenerateSolanaKeys(t, 1)[0]
	ledger.setAccount(mint, token.ProgramKey, (&token.Mint{
		Decimals:      Decimals,
		IsInitialized: true,
	}).Marshal())

	program, err := emission.NewProgram(emission.DefaultProgramID, nil)
	require.NoError(t, err)
	submitter := newTestSubmitter(ledger, program)

	client, err := NewClient(DefaultConfig(), WithLedger(ledger), WithSubmitter(submitter))
	require.NoError(t, err)

	env := &testEnv{
		ledger:    ledger,
		submitter: submitter,
		client:    client,
		mint:      mint,
		admin:     testutil.GenerateSolanaKeypair(t),
	}
	env.setState(t, mint)
	return env
}

func (e *testEnv) setState(t *testing.T, mint ed25519.PublicKey) {
	params := emission.DefaultEmissionParams()
	data, err := emission.DefaultIDL().EncodeAccount(emission.AccountTypeEmissionState, anchor.Values{
		"cap":                             params.Cap,
		"emitted":                         uint64(0),
		"base_rate_per_day":               params.BaseRatePerDay,
		"annual_decay_bps":                params.AnnualDecayBps,
		"throttle_target_per_user_micros": params.ThrottleTargetPerUserMicros,
		"clamp_min_bps":                   params.ClampMinBps,
		"clamp_max_bps":                   params.ClampMaxBps,
		"last_epoch":                      uint64(0),
		"mint":                            mint,
		"bump":                            uint8(254),
	})
	require.NoError(t, err)

	state, _, err := e.client.Addresses().State()
	require.NoError(t, err)
	e.ledger.setAccount(state, emission.DefaultProgramID, data)
}
