package stride

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stride-labs/stride-emission/pkg/metrics"
	"github.com/stride-labs/stride-emission/pkg/retry"
	"github.com/stride-labs/stride-emission/pkg/retry/backoff"
	"github.com/stride-labs/stride-emission/pkg/solana"
)

const (
	submitterMetricsStructName = "stride.submitter"

	confirmationDurationMetricName = "Stride/Submitter/ConfirmationDuration"
	submissionFailureMetricName    = "Stride/Submitter/Failures"
	submissionFailureEventName     = "StrideSubmissionFailure"
)

var errNotConfirmed = errors.New("transaction not yet confirmed")

// Submitter sends a set of instructions as one atomic transaction, signed and
// paid for by signer, and waits until the ledger reports a terminal status.
type Submitter interface {
	Submit(ctx context.Context, instructions []solana.Instruction, signer ed25519.PrivateKey) (solana.Signature, error)
}

type rpcSubmitter struct {
	log          *logrus.Entry
	conf         *submitterConf
	client       solana.Client
	commitment   solana.Commitment
	pollInterval time.Duration
}

// NewRPCSubmitter submits through a Solana JSON-RPC client and polls the
// signature until it reaches commitment.
func NewRPCSubmitter(client solana.Client, commitment solana.Commitment, configProvider ConfigProvider) Submitter {
	return &rpcSubmitter{
		log:          logrus.StandardLogger().WithField("type", "stride/submitter"),
		conf:         configProvider(),
		client:       client,
		commitment:   commitment,
		pollInterval: solana.PollRate,
	}
}

func (s *rpcSubmitter) Submit(ctx context.Context, instructions []solana.Instruction, signer ed25519.PrivateKey) (sig solana.Signature, err error) {
	tracer := metrics.TraceMethodCall(ctx, submitterMetricsStructName, "Submit")
	defer tracer.End()
	defer func() {
		tracer.OnError(err)
	}()

	if len(instructions) == 0 {
		return sig, errors.New("no instructions provided")
	}
	if len(signer) != ed25519.PrivateKeySize {
		return sig, errors.New("invalid signer")
	}
	payer := signer.Public().(ed25519.PublicKey)

	log := s.log.WithFields(logrus.Fields{
		"method":       "Submit",
		"payer":        base58.Encode(payer),
		"instructions": len(instructions),
	})

	bh, err := s.client.GetLatestBlockhash()
	if err != nil {
		return sig, errors.Wrap(err, "failed to get latest blockhash")
	}

	txn := solana.NewTransaction(payer, instructions...)
	txn.SetBlockhash(bh)
	if err := txn.Sign(signer); err != nil {
		return sig, errors.Wrap(err, "failed to sign transaction")
	}
	sig = txn.Signature()
	log = log.WithField("signature", sig.String())

	start := time.Now()
	if _, err := s.client.SubmitTransaction(txn, s.commitment, s.conf.skipPreflight.Get(ctx)); err != nil {
		s.onFailure(ctx, log, err)
		return sig, err
	}

	txErr, err := s.awaitConfirmation(ctx, sig)
	if err != nil {
		s.onFailure(ctx, log, err)
		return sig, err
	}
	if txErr != nil {
		if len(txErr.Logs()) == 0 && s.conf.fetchLogsOnFailure.Get(ctx) {
			s.fetchLogs(log, sig, txErr)
		}
		s.onFailure(ctx, log, txErr)
		return sig, txErr
	}

	metrics.RecordDuration(ctx, confirmationDurationMetricName, time.Since(start))
	log.Debug("transaction confirmed")

	return sig, nil
}

// awaitConfirmation returns the transaction's error, if it failed, once the
// signature reaches the submitter's commitment.
func (s *rpcSubmitter) awaitConfirmation(ctx context.Context, sig solana.Signature) (*solana.TransactionError, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.confirmationTimeout.Get(ctx))
	defer cancel()

	var txErr *solana.TransactionError
	_, err := retry.Retry(
		func() error {
			statuses, err := s.client.GetSignatureStatuses([]solana.Signature{sig})
			if err != nil {
				return errors.Wrap(err, "failed to get signature status")
			}
			if len(statuses) == 0 || statuses[0] == nil {
				return errNotConfirmed
			}

			status := statuses[0]
			if status.ErrorResult != nil {
				txErr = status.ErrorResult
				return nil
			}
			if !status.Reached(s.commitment) {
				return errNotConfirmed
			}
			return nil
		},
		retry.RetriableErrors(errNotConfirmed),
		retry.WithContext(ctx),
		retry.Backoff(backoff.Constant(s.pollInterval), s.pollInterval),
	)
	if errors.Is(err, errNotConfirmed) {
		return nil, errors.Wrapf(ErrConfirmationTimeout, "signature %s", sig)
	} else if err != nil {
		return nil, err
	}
	return txErr, nil
}

func (s *rpcSubmitter) fetchLogs(log *logrus.Entry, sig solana.Signature, txErr *solana.TransactionError) {
	commitment := s.commitment
	if commitment == solana.CommitmentProcessed {
		commitment = solana.CommitmentConfirmed
	}

	confirmed, err := s.client.GetTransaction(sig, commitment)
	if err != nil {
		log.WithError(err).Debug("failed to fetch logs of failed transaction")
		return
	}
	if confirmed.Meta != nil {
		txErr.WithLogs(confirmed.Meta.LogMessages)
	}
}

func (s *rpcSubmitter) onFailure(ctx context.Context, log *logrus.Entry, err error) {
	log.WithError(err).Warn("transaction failed")

	metrics.RecordCount(ctx, submissionFailureMetricName, 1)

	event := map[string]interface{}{
		"error": err.Error(),
	}
	if code := customError(err); code != nil {
		event["custom_error"] = int(*code)
	}
	metrics.RecordEvent(ctx, submissionFailureEventName, event)
}
