// Package memory holds config values in process, for tests and manual
// overrides.
package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/stride-labs/stride-emission/pkg/config"
)

// Config is a mutable in memory config.Config.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a config holding value. A nil value behaves as unset.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = true
}

// Set replaces the held value. Passing nil unsets it.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// Fail makes every Get return err until Fail(nil) is called.
func (c *Config) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// ErrUnavailable is a convenience error for Fail.
var ErrUnavailable = errors.New("memory config: unavailable")
