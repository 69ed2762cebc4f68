// Package retry runs actions until they succeed or a strategy gives up.
package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Policy is an ordered set of strategies that can be reused across actions.
type Policy []Strategy

// NewPolicy groups strategies. Without any, actions retry until they succeed.
func NewPolicy(strategies ...Strategy) Policy {
	return Policy(strategies)
}

// Retry runs action under the policy.
func (p Policy) Retry(action Action) (uint, error) {
	return Retry(action, p...)
}

// Retry runs action until it returns nil or a strategy declines another
// attempt, returning the number of attempts made. Strategies run in order, so
// those that sleep should come last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	attempts := uint(0)
	for {
		attempts++

		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, strategy := range strategies {
			if !strategy(attempts, err) {
				return attempts, err
			}
		}
	}
}
