package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-labs/stride-emission/pkg/config"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.Set(30 * time.Second)
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, val)

	c.Fail(ErrUnavailable)
	_, err = c.Get(ctx)
	assert.Equal(t, ErrUnavailable, err)

	c.Fail(nil)
	c.Set(nil)
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}
