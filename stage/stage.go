package stage

import (
	"time"

	"github.com/thependalorian/salesflow/core"
)

// DefaultCallTimeout bounds each model call made by a handler.
const DefaultCallTimeout = 30 * time.Second

// Fallback sentences returned by the model-backed handlers when the model is
// absent or times out. These literals are contract, not placeholders.
const (
	FallbackQualify   = "Thanks for reaching out! I'd love to learn more about what you're looking for. What's prompting you to explore a solution right now?"
	FallbackObjection = "That's a completely fair concern. Let's see if we can find an option that works for you."
	FallbackNurture   = "Thanks for your message! I'm here whenever you have questions, and I'll share anything that might be helpful along the way."
	FallbackClose     = "It sounds like we're getting close. Would you like me to put together the next steps so we can get you started?"
	FallbackFollowUp  = "I'll follow up with you shortly to keep things moving. Does that work for you?"

	// HandoffSentence is the escalation handler's only output.
	HandoffSentence = "I'm connecting you with one of our specialists who can help you directly. They'll be with you shortly."
)

// Result is the outcome of one handler invocation. An empty Text means the
// stage produced no chat message (authorization, tools).
type Result struct {
	Text string

	// Degraded marks a fallback answer produced without the model.
	Degraded bool

	// Retryable marks a degradation caused by a per-call timeout; the
	// customer got the fallback and may resubmit.
	Retryable bool
}

// Handler executes one stage of a turn. Handlers mutate the conversation
// (append messages, update context) and report their outcome; only genuine
// capability failures are returned as errors, which the engine boundary
// converts to an apologetic turn result.
type Handler interface {
	Stage() core.Stage
	Handle(tc *core.TurnContext) (Result, error)
}
