package organizing

import (
	"context"

	"cratekeeper/src/features/session"
)

// Decision is an operator's answer at a breaker pause.
type Decision int

const (
	// DecisionResume clears the failure counter and continues the run.
	DecisionResume Decision = iota
	// DecisionAbort stops the run.
	DecisionAbort
	// DecisionShowErrors requests the accumulated error records and
	// another round of questioning.
	DecisionShowErrors
)

// Decider answers for the operator when a run pauses on too many
// failures. Implementations may block; the error records accumulated so
// far are passed for display.
type Decider interface {
	Decide(ctx context.Context, failures int, errs []session.ErrorRecord) (Decision, error)
}
