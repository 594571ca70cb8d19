package stage

import "github.com/thependalorian/salesflow/core"

// EscalateHandler hands the conversation to a human. It never calls the
// model.
type EscalateHandler struct{}

// NewEscalateHandler builds the escalation stage.
func NewEscalateHandler() *EscalateHandler { return &EscalateHandler{} }

// Stage implements Handler.
func (h *EscalateHandler) Stage() core.Stage { return core.StageEscalate }

// Handle implements Handler. The response is always HandoffSentence.
func (h *EscalateHandler) Handle(tc *core.TurnContext) (Result, error) {
	tc.Conversation.AppendMessage(core.NewAssistantMessage(HandoffSentence))
	tc.LogInfo("conversation escalated to human",
		"conversationID", tc.Conversation.ID,
		"turnID", tc.TurnID,
	)
	return Result{Text: HandoffSentence}, nil
}

var _ Handler = (*EscalateHandler)(nil)
