package intent

import (
	"fmt"
	"time"

	"github.com/circleworks/beacon/internal/types"
)

// transition applies the lifecycle state machine to an intent:
//
//	active → completed
//	active → archived
//
// Both targets are terminal; a second transition on the same intent fails
// with ErrInvalidTransition rather than being silently ignored. The outcome
// is attached atomically with the status change, keeping the invariant that
// an outcome exists exactly when the status is terminal.
//
// Rating is stored as given. The expected range is [1,5] but enforcing it
// is the caller's responsibility, not the state machine's.
func transition(in *types.Intent, target types.Status, outcome types.Outcome) error {
	switch target {
	case types.StatusCompleted, types.StatusArchived:
	case types.StatusActive:
		return fmt.Errorf("%w: cannot transition to %s", ErrInvalidTransition, target)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}

	switch in.Status {
	case types.StatusActive:
		// The only state transitions leave from.
	case types.StatusCompleted, types.StatusArchived:
		return fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, in.ID, in.Status)
	default:
		return fmt.Errorf("%w: intent %s in unknown status %q", ErrInvalidTransition, in.ID, in.Status)
	}

	o := outcome
	in.Status = target
	in.Outcome = &o
	in.UpdatedAt = time.Now().UTC()
	return nil
}
