package core

import (
	"context"

	"github.com/thependalorian/salesflow/logging"
)

// TurnContext carries execution state for one conversational turn. It
// aggregates the ambient cancellation context, the conversation being
// mutated, a turn identifier for correlation, and an optional emit hook for
// streaming intermediate output. A TurnContext is owned by exactly one
// goroutine for the duration of a turn.
type TurnContext struct {
	Context      context.Context
	TurnID       string
	Conversation *Conversation

	// Emit receives stream events during the turn. Nil when the caller did
	// not request streaming; use EmitPartial for nil-safe delivery.
	Emit func(StreamEvent)

	*loggerAdapter
}

// NewTurnContext constructs a TurnContext. A nil logger is substituted with
// a NoOpLogger.
func NewTurnContext(
	ctx context.Context,
	turnID string,
	conv *Conversation,
	emit func(StreamEvent),
	logger logging.Logger,
) *TurnContext {
	return &TurnContext{
		Context:       ctx,
		TurnID:        turnID,
		Conversation:  conv,
		Emit:          emit,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (tc *TurnContext) Done() <-chan struct{} { return tc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (tc *TurnContext) Err() error { return tc.Context.Err() }

// EmitPartial delivers one intermediate assistant message to the stream
// consumer. It is a no-op when no emit hook is installed.
func (tc *TurnContext) EmitPartial(text string) {
	if tc.Emit == nil {
		return
	}
	tc.Emit(PartialEvent{Text: text})
}
