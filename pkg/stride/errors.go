package stride

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"

	"github.com/stride-labs/stride-emission/pkg/solana"
	"github.com/stride-labs/stride-emission/pkg/solana/anchor"
	"github.com/stride-labs/stride-emission/pkg/solana/emission"
)

var (
	// ErrNotFound is returned when an account an operation depends on does
	// not exist.
	ErrNotFound      = errors.New("not found")
	ErrStateNotFound = errors.Wrap(ErrNotFound, "emission state")
	ErrUserNotFound  = errors.Wrap(ErrNotFound, "user account")

	// ErrAccountNotFound is returned by a Ledger for an absent address.
	ErrAccountNotFound = errors.New("account not found")

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidMint         = errors.New("invalid mint")

	ErrSubmissionFailure   = errors.New("submission failure")
	ErrConfirmationTimeout = errors.New("transaction not confirmed before timeout")
)

// LogCarrier is implemented by errors that carry program log lines, such as
// *solana.TransactionError.
type LogCarrier interface {
	Logs() []string
}

type logLines struct {
	err  error
	logs []string
}

// LogLines attaches log lines to err so they surface on the resulting
// ProgramError.
func LogLines(err error, logs []string) error {
	return &logLines{err: err, logs: logs}
}

func (e *logLines) Error() string {
	if e.err == nil {
		return "program failure"
	}
	return e.err.Error()
}

func (e *logLines) Unwrap() error  { return e.err }
func (e *logLines) Logs() []string { return e.logs }

// ProgramError is a failed submission, normalized. Logs is nil when the
// failure carried none.
type ProgramError struct {
	Message string
	Logs    []string
	Err     error
}

// NewProgramError normalizes a submission failure using the built in error
// table of the emission program.
func NewProgramError(err error) *ProgramError {
	return newProgramError(err, nil)
}

func newProgramError(err error, idl *anchor.IDL) *ProgramError {
	if err == nil {
		return nil
	}

	var existing *ProgramError
	if errors.As(err, &existing) {
		return existing
	}

	message := err.Error()
	if desc, ok := describeCustomError(err, idl); ok {
		message = fmt.Sprintf("%s (%s)", message, desc)
	}

	return &ProgramError{
		Message: message,
		Logs:    extractLogs(err),
		Err:     err,
	}
}

func (e *ProgramError) Error() string {
	return "submission failure: " + e.Message
}

func (e *ProgramError) Unwrap() error {
	return e.Err
}

func (e *ProgramError) Is(target error) bool {
	return target == ErrSubmissionFailure
}

func (e *ProgramError) HasLogs() bool {
	return len(e.Logs) > 0
}

// CustomError returns the program's error code, if the failure was raised by
// a program.
func (e *ProgramError) CustomError() *solana.CustomError {
	return customError(e.Err)
}

func customError(err error) *solana.CustomError {
	var txErr *solana.TransactionError
	if errors.As(err, &txErr) {
		return txErr.CustomError()
	}
	var code solana.CustomError
	if errors.As(err, &code) {
		return &code
	}
	return nil
}

func describeCustomError(err error, idl *anchor.IDL) (string, bool) {
	code := customError(err)
	if code == nil {
		return "", false
	}
	if idl != nil {
		if def, ok := idl.ErrorByCode(int(*code)); ok {
			return fmt.Sprintf("%s: %s", def.Name, def.Msg), true
		}
	}
	return emission.DescribeCustomError(*code)
}

// extractLogs returns the first non-empty set of log lines found walking the
// error chain from the outside in.
func extractLogs(err error) []string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if carrier, ok := e.(LogCarrier); ok {
			if logs := carrier.Logs(); len(logs) > 0 {
				return append([]string(nil), logs...)
			}
		}

		if rpcErr, ok := e.(*jsonrpc.RPCError); ok {
			if logs := rpcErrorLogs(rpcErr); len(logs) > 0 {
				return logs
			}
		}
	}
	return nil
}

func rpcErrorLogs(rpcErr *jsonrpc.RPCError) []string {
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return nil
	}
	if logs := solana.ParseLogMessages(data["logs"]); len(logs) > 0 {
		return logs
	}
	if nested, ok := data["data"].(map[string]interface{}); ok {
		return solana.ParseLogMessages(nested["logs"])
	}
	return nil
}
