package stride

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/emission"
)

func TestNewProgramError_Logs(t *testing.T) {
	txErr, err := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: 1,
		Err:   emission.ErrorEmissionExhausted,
	})
	require.NoError(t, err)
	txErr.WithLogs([]string{"Program log: exhausted"})

	for _, tc := range []struct {
		name     string
		err      error
		expected []string
	}{
		{
			name:     "transaction error",
			err:      txErr,
			expected: []string{"Program log: exhausted"},
		},
		{
			name:     "wrapped transaction error",
			err:      errors.Wrap(txErr, "send"),
			expected: []string{"Program log: exhausted"},
		},
		{
			name: "rpc error",
			err: &jsonrpc.RPCError{
				Code:    -32002,
				Message: "Transaction simulation failed",
				Data: map[string]interface{}{
					"logs": []interface{}{"a", "b"},
				},
			},
			expected: []string{"a", "b"},
		},
		{
			name: "nested rpc error data",
			err: &jsonrpc.RPCError{
				Code: -32002,
				Data: map[string]interface{}{
					"data": map[string]interface{}{
						"logs": []interface{}{"nested"},
					},
				},
			},
			expected: []string{"nested"},
		},
		{
			name:     "log lines",
			err:      LogLines(errors.New("failed"), []string{"x"}),
			expected: []string{"x"},
		},
		{
			name:     "empty carrier around inner logs",
			err:      LogLines(errors.Wrap(LogLines(errors.New("failed"), []string{"Program log: x"}), "send"), nil),
			expected: []string{"Program log: x"},
		},
		{
			name: "empty carrier around rpc error",
			err: LogLines(&jsonrpc.RPCError{
				Code: -32002,
				Data: map[string]interface{}{"logs": []interface{}{"inner"}},
			}, []string{}),
			expected: []string{"inner"},
		},
		{
			name: "no logs",
			err:  errors.New("connection refused"),
		},
		{
			name: "empty logs",
			err:  LogLines(errors.New("failed"), []string{}),
		},
		{
			name: "rpc error without data",
			err:  &jsonrpc.RPCError{Code: -32000, Message: "boom"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			programErr := NewProgramError(tc.err)
			require.NotNil(t, programErr)

			assert.Equal(t, tc.expected, programErr.Logs)
			assert.Equal(t, tc.expected != nil, programErr.HasLogs())
			assert.True(t, errors.Is(programErr, ErrSubmissionFailure))
			assert.Equal(t, tc.err, errors.Unwrap(programErr))
		})
	}
}

func TestNewProgramError_CustomError(t *testing.T) {
	txErr, err := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: 0,
		Err:   emission.ErrorEmissionExhausted,
	})
	require.NoError(t, err)

	programErr := NewProgramError(txErr)
	assert.Contains(t, programErr.Message, "custom program error: 0x1774")
	assert.Contains(t, programErr.Message, "EmissionExhausted: Emission exhausted")
	assert.Contains(t, programErr.Error(), "submission failure")
	require.NotNil(t, programErr.CustomError())
	assert.Equal(t, emission.ErrorEmissionExhausted, *programErr.CustomError())

	var unwrapped *solana.TransactionError
	assert.True(t, errors.As(programErr, &unwrapped))

	// Codes outside the program's table are left undescribed
	unknown, err := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: 0,
		Err:   solana.CustomError(1),
	})
	require.NoError(t, err)
	programErr = NewProgramError(unknown)
	assert.Equal(t, unknown.Error(), programErr.Message)
}

func TestNewProgramError_Idempotent(t *testing.T) {
	assert.Nil(t, NewProgramError(nil))

	first := NewProgramError(LogLines(errors.New("failed"), []string{"x"}))
	second := NewProgramError(errors.Wrap(first, "again"))
	assert.Same(t, first, second)
}
