package game

import "errors"

// Expected gameplay failures. These are normal outcomes reported to the
// submitting player only, never broadcast and never fatal.
var (
	ErrUnknownPlayer   = errors.New("not-in-lobby")
	ErrNoActiveRound   = errors.New("no-active-round")
	ErrIneligible      = errors.New("joined-mid-round")
	ErrAlreadyAnswered = errors.New("already-answered")
	ErrRoundInProgress = errors.New("round-already-active")
)
