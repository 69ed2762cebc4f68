package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/stride-labs/stride-emission/pkg/retry/backoff"
)

// Strategy decides whether another attempt should be made after err. A
// strategy may sleep before answering.
type Strategy func(attempts uint, err error) bool

// Limit allows at most maxAttempts attempts in total, including the first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of retriable.
func RetriableErrors(retriable ...error) Strategy {
	return func(_ uint, err error) bool {
		for _, target := range retriable {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// WithContext stops retrying once ctx is done. Place it before any backoff so
// a cancelled caller is never put to sleep.
func WithContext(ctx context.Context) Strategy {
	return func(uint, error) bool {
		return ctx.Err() == nil
	}
}

// Backoff sleeps for the schedule's delay, capped at maxBackoff, then allows
// the retry.
func Backoff(schedule backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(schedule, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay moved by up to
// +/- jitter of itself. A jitter of 0.1 on 100ms sleeps between 90ms and
// 110ms.
func BackoffWithJitter(schedule backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := schedule(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}
		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}
		sleeperImpl.Sleep(delay)
		return true
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = realSleeper{}
