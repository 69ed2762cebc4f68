package stride

import (
	"crypto/ed25519"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/emission"
)

const (
	ProgramIDEnvName  = "PROGRAM_ID"
	RPCEnvName        = "RPC"
	MintEnvName       = "MINT"
	CommitmentEnvName = "COMMITMENT"
	SchemaPathEnvName = "SCHEMA_PATH"
	RPCRateEnvName    = "RPC_RATE_LIMIT"

	defaultRPC        = string(solana.EnvironmentLocal)
	defaultCommitment = "confirmed"
)

// Config identifies the deployment a Client talks to. Mint and SchemaPath are
// optional; without a mint the emission state's mint is used, and without a
// schema path the embedded IDL is used.
type Config struct {
	ProgramID  string `mapstructure:"program_id"`
	RPC        string `mapstructure:"rpc"`
	Mint       string `mapstructure:"mint"`
	Commitment string `mapstructure:"commitment"`
	SchemaPath string `mapstructure:"schema_path"`

	// RPCRateLimit caps calls per second for each RPC method. Zero disables
	// the client side limit.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		ProgramID:  emission.DefaultProgramAddress,
		RPC:        defaultRPC,
		Commitment: defaultCommitment,
	}
}

// LoadConfig reads path (YAML, JSON or TOML) when it exists, then applies
// environment overrides. An empty path reads the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("program_id", defaults.ProgramID)
	v.SetDefault("rpc", defaults.RPC)
	v.SetDefault("mint", "")
	v.SetDefault("commitment", defaults.Commitment)
	v.SetDefault("schema_path", "")
	v.SetDefault("rpc_rate_limit", 0)

	for key, env := range map[string]string{
		"program_id":     ProgramIDEnvName,
		"rpc":            RPCEnvName,
		"mint":           MintEnvName,
		"commitment":     CommitmentEnvName,
		"schema_path":    SchemaPathEnvName,
		"rpc_rate_limit": RPCRateEnvName,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	if len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !os.IsNotExist(err) && !errors.As(err, &notFound) {
				return nil, errors.Wrapf(err, "failed to read config file %s", path)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	cfg.ProgramID = strings.TrimSpace(cfg.ProgramID)
	cfg.Mint = strings.TrimSpace(cfg.Mint)
	cfg.Commitment = strings.ToLower(strings.TrimSpace(cfg.Commitment))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every address and the commitment level parse.
func (c *Config) Validate() error {
	if _, err := c.programID(); err != nil {
		return err
	}
	if _, err := c.mint(); err != nil {
		return err
	}
	if _, err := c.commitment(); err != nil {
		return err
	}
	if len(c.RPC) == 0 {
		return errors.New("rpc endpoint is required")
	}
	if c.RPCRateLimit < 0 {
		return errors.New("rpc rate limit must not be negative")
	}
	return nil
}

func (c *Config) programID() (ed25519.PublicKey, error) {
	id, err := solana.PublicKeyFromString(c.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid program id")
	}
	return id, nil
}

// mint returns nil when no mint is configured.
func (c *Config) mint() (ed25519.PublicKey, error) {
	if len(c.Mint) == 0 {
		return nil, nil
	}
	mint, err := solana.PublicKeyFromString(c.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mint")
	}
	return mint, nil
}

func (c *Config) commitment() (solana.Commitment, error) {
	if len(c.Commitment) == 0 {
		return solana.CommitmentConfirmed, nil
	}
	return solana.CommitmentFromString(c.Commitment)
}
