package booking

import "chatbook/models"

// State is where a customer's conversation stands. It is derived from the pending
// store on every message and never persisted on its own.
type State int

const (
	StateIdle State = iota
	StateAwaitingApproval
)

func (s State) String() string {
	if s == StateAwaitingApproval {
		return "awaiting_approval"
	}
	return "idle"
}

// Conversation pairs the state with the booking that holds it.
type Conversation struct {
	State   State
	Pending *models.PendingBooking
}

func conversationOf(pending *models.PendingBooking) Conversation {
	if pending == nil {
		return Conversation{State: StateIdle}
	}
	return Conversation{State: StateAwaitingApproval, Pending: pending}
}
