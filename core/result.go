package core

// NextAction describes what the engine believes should happen after a turn.
type NextAction string

const (
	// NextActionNone means the turn is complete with nothing queued.
	NextActionNone NextAction = "none"
	// NextActionFollowUp means a follow-up was scheduled or suggested.
	NextActionFollowUp NextAction = "follow_up"
	// NextActionHandoff means a human must take over the conversation.
	NextActionHandoff NextAction = "human_handoff"
)

// TurnResult is the well-formed outcome of one conversational turn. Nothing
// above the engine boundary ever receives a raw error; every failure mode
// resolves to a TurnResult.
type TurnResult struct {
	TurnID         string     `json:"turn_id"`
	ConversationID string     `json:"conversation_id"`
	Response       string     `json:"response"`
	Stage          Stage      `json:"stage"`
	Confidence     float64    `json:"confidence"`
	NextAction     NextAction `json:"next_action"`
	Success        bool       `json:"success"`
	// Retryable marks degraded turns caused by capability timeouts: the
	// caller received a fallback answer and may resubmit later.
	Retryable bool `json:"retryable,omitempty"`
	// Err carries the failure message when Success is false.
	Err string `json:"error,omitempty"`
}
