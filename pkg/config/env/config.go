// Package env sources config overrides from the process environment.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/stride-labs/stride-emission/pkg/config"
	"github.com/stride-labs/stride-emission/pkg/config/wrapper"
)

type snapshot struct {
	raw []byte
}

// NewConfig captures the upper cased variable key once. Empty variables are
// treated as unset.
func NewConfig(key string) config.Config {
	s := &snapshot{}
	if val := strings.TrimSpace(os.Getenv(strings.ToUpper(key))); len(val) > 0 {
		s.raw = []byte(val)
	}
	return s
}

func (s *snapshot) Get(context.Context) (interface{}, error) {
	if s.raw == nil {
		return nil, config.ErrNoValue
	}
	return s.raw, nil
}

func (s *snapshot) Shutdown() {}

// NewBoolConfig creates an env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

// NewDurationConfig creates an env-based duration config, such as "30s"
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}

// NewUint64Config creates an env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}
