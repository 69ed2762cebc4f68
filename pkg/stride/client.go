// Package stride reads, builds and submits operations against a deployment of
// the stride emission program.
package stride

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stride-labs/stride-emission/pkg/metrics"
	"github.com/stride-labs/stride-emission/pkg/rate"
	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/emission"
)

const (
	metricsStructName = "stride.client"
)

type clientOptions struct {
	rpc             solana.Client
	ledger          Ledger
	submitter       Submitter
	submitterConfig ConfigProvider
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithRPCClient replaces the JSON-RPC client built from Config.RPC.
func WithRPCClient(rpc solana.Client) ClientOption {
	return func(o *clientOptions) {
		o.rpc = rpc
	}
}

// WithLedger replaces the RPC backed ledger.
func WithLedger(ledger Ledger) ClientOption {
	return func(o *clientOptions) {
		o.ledger = ledger
	}
}

// WithSubmitter replaces the RPC backed submitter.
func WithSubmitter(submitter Submitter) ClientOption {
	return func(o *clientOptions) {
		o.submitter = submitter
	}
}

// WithSubmitterConfig overrides how the RPC submitter's tunables are pulled.
func WithSubmitterConfig(provider ConfigProvider) ClientOption {
	return func(o *clientOptions) {
		o.submitterConfig = provider
	}
}

// Client is bound to one program deployment. Clients share no state, so
// several deployments can be used side by side.
type Client struct {
	log       *logrus.Entry
	program   *emission.Program
	addresses *emission.Addresses
	reader    *Reader
	submitter Submitter
	mint      ed25519.PublicKey
}

func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	programID, _ := cfg.programID()
	mint, _ := cfg.mint()
	commitment, _ := cfg.commitment()

	idl, err := emission.LoadIDL(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	program, err := emission.NewProgram(programID, idl)
	if err != nil {
		return nil, err
	}
	addresses, err := emission.NewAddresses(programID)
	if err != nil {
		return nil, err
	}

	o := &clientOptions{
		submitterConfig: WithEnvConfigs(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rpc == nil && (o.ledger == nil || o.submitter == nil) {
		var rpcOpts []solana.ClientOption
		if cfg.RPCRateLimit > 0 {
			rpcOpts = append(rpcOpts, solana.WithRateLimiter(rate.NewLocalRateLimiter(cfg.RPCRateLimit)))
		}
		o.rpc = solana.New(cfg.RPC, rpcOpts...)
	}
	if o.ledger == nil {
		o.ledger = NewRPCLedger(o.rpc, commitment)
	}
	if o.submitter == nil {
		o.submitter = NewRPCSubmitter(o.rpc, commitment, o.submitterConfig)
	}

	reader, err := NewReader(o.ledger, program, mint)
	if err != nil {
		return nil, err
	}

	return &Client{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type":    "stride/client",
			"program": base58.Encode(programID),
		}),
		program:   program,
		addresses: addresses,
		reader:    reader,
		submitter: o.submitter,
		mint:      mint,
	}, nil
}

func (c *Client) Program() *emission.Program {
	return c.program
}

func (c *Client) Addresses() *emission.Addresses {
	return c.addresses
}

func (c *Client) Reader() *Reader {
	return c.reader
}

// Send submits the batch as one transaction signed and paid for by signer.
// Failures are returned as *ProgramError.
func (c *Client) Send(ctx context.Context, batch *Batch, signer ed25519.PrivateKey) (solana.Signature, error) {
	sig, err := c.submitter.Submit(ctx, batch.Instructions(), signer)
	if err != nil {
		normalized := newProgramError(err, c.program.IDL)
		c.log.WithError(err).WithFields(logrus.Fields{
			"signature": sig.String(),
			"logs":      len(normalized.Logs),
		}).Warn("submission failed")
		return sig, normalized
	}
	return sig, nil
}

func (c *Client) Initialize(ctx context.Context, signer ed25519.PrivateKey, mint ed25519.PublicKey, params *emission.EmissionParams) (solana.Signature, error) {
	return c.buildAndSend(ctx, "Initialize", signer, func(payer ed25519.PublicKey) (*Batch, error) {
		return c.BuildInitialize(ctx, payer, mint, params)
	})
}

func (c *Client) Configure(ctx context.Context, signer ed25519.PrivateKey, params *emission.EmissionParams) (solana.Signature, error) {
	return c.buildAndSend(ctx, "Configure", signer, func(payer ed25519.PublicKey) (*Batch, error) {
		return c.BuildConfigure(ctx, payer, params)
	})
}

func (c *Client) StakeInit(ctx context.Context, signer ed25519.PrivateKey) (solana.Signature, error) {
	return c.buildAndSend(ctx, "StakeInit", signer, func(owner ed25519.PublicKey) (*Batch, error) {
		return c.BuildStakeInit(ctx, owner)
	})
}

func (c *Client) Stake(ctx context.Context, signer ed25519.PrivateKey, amount Amount) (solana.Signature, error) {
	return c.buildAndSend(ctx, "Stake", signer, func(owner ed25519.PublicKey) (*Batch, error) {
		return c.BuildStake(ctx, owner, amount)
	})
}

func (c *Client) Unstake(ctx context.Context, signer ed25519.PrivateKey, amount Amount) (solana.Signature, error) {
	return c.buildAndSend(ctx, "Unstake", signer, func(owner ed25519.PublicKey) (*Batch, error) {
		return c.BuildUnstake(ctx, owner, amount)
	})
}

func (c *Client) Claim(ctx context.Context, signer ed25519.PrivateKey) (solana.Signature, error) {
	return c.buildAndSend(ctx, "Claim", signer, func(owner ed25519.PublicKey) (*Batch, error) {
		return c.BuildClaim(ctx, owner)
	})
}

// Tick advances the epoch. Anyone may pay for it.
func (c *Client) Tick(ctx context.Context, signer ed25519.PrivateKey) (solana.Signature, error) {
	return c.buildAndSend(ctx, "Tick", signer, func(ed25519.PublicKey) (*Batch, error) {
		return c.BuildTick(ctx)
	})
}

func (c *Client) buildAndSend(
	ctx context.Context,
	method string,
	signer ed25519.PrivateKey,
	build func(ed25519.PublicKey) (*Batch, error),
) (sig solana.Signature, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()
	defer func() {
		tracer.OnError(err)
	}()

	if len(signer) != ed25519.PrivateKeySize {
		return sig, errors.New("invalid signer")
	}
	signerPub := signer.Public().(ed25519.PublicKey)
	tracer.AddAttribute("signer", base58.Encode(signerPub))

	batch, err := build(signerPub)
	if err != nil {
		return sig, err
	}
	return c.Send(ctx, batch, signer)
}

// Summary is everything known about one owner's position.
type Summary struct {
	State *emission.StateView
	// User is nil when the owner has not initialized staking.
	User     *emission.UserView
	Balances *Balances
}

// Summary reads the emission state, owner's user account and both balances.
func (c *Client) Summary(ctx context.Context, owner ed25519.PublicKey) (summary *Summary, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Summary")
	defer tracer.End()
	defer func() {
		tracer.OnError(err)
	}()

	state, err := c.reader.GetEmissionState(ctx)
	if err != nil {
		return nil, err
	}

	mint := c.mint
	if mint == nil {
		mint = state.Mint
	}

	user, err := c.reader.GetUserAccount(ctx, owner)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	balances, err := c.reader.GetBalances(ctx, owner, mint)
	if err != nil {
		return nil, err
	}

	return &Summary{
		State:    state,
		User:     user,
		Balances: balances,
	}, nil
}
