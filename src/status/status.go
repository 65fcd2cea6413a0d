package status

import (
	"errors"

	"github.com/rawthoughts/modfeed/src/types"
)

var (
	// ErrAlreadyDecided is returned when a transition is requested on a
	// record that already left the pending state.
	ErrAlreadyDecided = errors.New("submission already decided")
	// ErrBadStatus is returned for a transition target outside the lifecycle.
	ErrBadStatus = errors.New("unknown status")
)

// Valid reports whether s is one of the lifecycle states.
func Valid(s string) bool {
	switch s {
	case types.StatusPending, types.StatusApproved, types.StatusRejected:
		return true
	}
	return false
}

// Transition validates a requested lifecycle move. The only legal moves are
// pending to approved and pending to rejected; approved and rejected are
// terminal, so any transition from them fails without mutating anything.
func Transition(current, target string) error {
	if target != types.StatusApproved && target != types.StatusRejected {
		return ErrBadStatus
	}
	if current != types.StatusPending {
		return ErrAlreadyDecided
	}
	return nil
}
