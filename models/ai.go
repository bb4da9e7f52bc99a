package models

// Action is the closed set of intents the resolver may return.
type Action string

const (
	ActionShowAvailability Action = "SHOW_AVAILABILITY"
	ActionPendingStatus    Action = "PENDING_STATUS"
	ActionCancelBooking    Action = "CANCEL_BOOKING"
	ActionAnswer           Action = "ANSWER"
	ActionEscalate         Action = "ESCALATE"
	ActionUnknown          Action = "UNKNOWN"
)

// Actions lists every valid action, in schema order.
var Actions = []Action{
	ActionShowAvailability,
	ActionPendingStatus,
	ActionCancelBooking,
	ActionAnswer,
	ActionEscalate,
	ActionUnknown,
}

// Valid reports whether a is one of Actions.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// ClassifierResult is the structured output contract of the external classifier.
type ClassifierResult struct {
	Action        Action `json:"action"`
	Response      string `json:"response"`
	Service       string `json:"service,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
}

// ResolutionSource records which tier produced a Resolution.
type ResolutionSource string

const (
	SourceClassifier ResolutionSource = "classifier"
	SourceFallback   ResolutionSource = "fallback"
)

// Resolution is what the intent resolver hands to the orchestrator.
type Resolution struct {
	Action            Action           `json:"action"`
	ResponseText      string           `json:"response"`
	ServiceHint       string           `json:"serviceHint,omitempty"`
	PreferredTimeHint string           `json:"preferredTimeHint,omitempty"`
	Language          string           `json:"language"`
	Source            ResolutionSource `json:"source"`
}
