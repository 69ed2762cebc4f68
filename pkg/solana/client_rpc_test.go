package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-labs/stride-emission/pkg/rate"
	"github.com/stride-labs/stride-emission/pkg/retry"
)

type rpcServer struct {
	mu sync.Mutex

	// failures are returned, in order, before any result
	failures []int
	calls    int
	owner    ed25519.PublicKey
}

func (s *rpcServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	var body map[string]interface{}
	if s.calls <= len(s.failures) {
		body = map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      0,
			"error":   map[string]interface{}{"code": s.failures[s.calls-1], "message": "failure"},
		}
	} else {
		body = map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      0,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value": map[string]interface{}{
					"lamports":   10,
					"owner":      base58.Encode(s.owner),
					"data":       []string{base64.StdEncoding.EncodeToString([]byte{7, 8}), "base64"},
					"executable": false,
				},
			},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func newTestKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func noSleepPolicy(attempts uint) retry.Policy {
	return retry.NewPolicy(retry.RetriableErrors(errRateLimited, errServiceError), retry.Limit(attempts))
}

func TestClient_RetriesServiceErrors(t *testing.T) {
	server := &rpcServer{failures: []int{429, rpcNodeUnhealthyCode}, owner: newTestKey(t)}
	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	c := New(httpServer.URL, WithRetryPolicy(noSleepPolicy(3)))

	info, err := c.GetAccountInfo(newTestKey(t), CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8}, info.Data)
	assert.EqualValues(t, server.owner, info.Owner)
	assert.EqualValues(t, 10, info.Lamports)
	assert.Equal(t, 3, server.calls)
}

func TestClient_NonRetriableError(t *testing.T) {
	server := &rpcServer{failures: []int{invalidParamCode}, owner: newTestKey(t)}
	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	c := New(httpServer.URL, WithRetryPolicy(noSleepPolicy(3)))

	_, err := c.GetAccountInfo(newTestKey(t), CommitmentConfirmed)
	assert.Error(t, err)
	assert.Equal(t, 1, server.calls)
}

func TestClient_ClientSideRateLimit(t *testing.T) {
	server := &rpcServer{owner: newTestKey(t)}
	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	c := New(
		httpServer.URL,
		WithRateLimiter(rate.NewLocalRateLimiter(0.001)),
		WithRetryPolicy(noSleepPolicy(2)),
	)

	_, err := c.GetAccountInfo(newTestKey(t), CommitmentConfirmed)
	require.NoError(t, err)

	_, err = c.GetAccountInfo(newTestKey(t), CommitmentConfirmed)
	assert.True(t, errors.Is(err, errRateLimited))
	assert.Equal(t, 1, server.calls)
}
