package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stride-labs/stride-emission/pkg/config"
)

func TestNewConfig(t *testing.T) {
	ctx := context.Background()

	t.Setenv("STRIDE_ENV_TEST", " value ")
	v, err := NewConfig("stride_env_test").Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	t.Setenv("STRIDE_ENV_TEST", "")
	v, err = NewConfig("STRIDE_ENV_TEST").Get(ctx)
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	t.Setenv("STRIDE_ENV_TEST_DURATION", "45s")
	t.Setenv("STRIDE_ENV_TEST_BOOL", "true")
	t.Setenv("STRIDE_ENV_TEST_UINT", "12")

	assert.Equal(t, 45*time.Second, NewDurationConfig("stride_env_test_duration", time.Second).Get(ctx))
	assert.True(t, NewBoolConfig("STRIDE_ENV_TEST_BOOL", false).Get(ctx))
	assert.EqualValues(t, 12, NewUint64Config("STRIDE_ENV_TEST_UINT", 1).Get(ctx))
	assert.Equal(t, time.Minute, NewDurationConfig("STRIDE_ENV_TEST_UNSET", time.Minute).Get(ctx))
}
