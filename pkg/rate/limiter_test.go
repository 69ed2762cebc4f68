package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoLimiter(t *testing.T) {
	var l Limiter = NoLimiter{}
	for i := 0; i < 1000; i++ {
		allowed, err := l.Allow("getAccountInfo")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestLocalRateLimiter_PerKey(t *testing.T) {
	l := NewLocalRateLimiter(2)

	for _, method := range []string{"getAccountInfo", "sendTransaction"} {
		for i := 0; i < 2; i++ {
			allowed, err := l.Allow(method)
			require.NoError(t, err)
			assert.True(t, allowed, method)
		}

		allowed, err := l.Allow(method)
		require.NoError(t, err)
		assert.False(t, allowed, method)
	}
}

func TestLocalRateLimiter_FractionalRate(t *testing.T) {
	l := NewLocalRateLimiter(0.5)

	allowed, err := l.Allow("getSignatureStatuses")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow("getSignatureStatuses")
	require.NoError(t, err)
	assert.False(t, allowed)
}
