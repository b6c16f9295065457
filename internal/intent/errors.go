package intent

import "errors"

var (
	// ErrNotFound means no intent exists with the given id.
	ErrNotFound = errors.New("intent not found")
	// ErrContributionNotFound means no contribution exists with the given id
	// on the addressed intent.
	ErrContributionNotFound = errors.New("contribution not found")
	// ErrInvalidTransition means a lifecycle rule was violated: transitioning
	// an already-terminal intent, targeting a non-terminal status, or moving
	// a contribution backwards.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	// ErrIntentClosed means a field mutation was attempted on a completed or
	// archived intent.
	ErrIntentClosed = errors.New("intent is closed")
)
