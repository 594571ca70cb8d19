package stage

import (
	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/tool"
)

// AuthorizeHandler gates pending tool requests before the tools stage runs.
// Denied requests are removed from the pending set and their denial recorded
// under the tool results context key, so the tools stage only ever sees
// authorized work. The handler produces no chat message.
//
// With no Authorizer configured the handler is a pass-through.
type AuthorizeHandler struct {
	authorizer tool.Authorizer
}

// NewAuthorizeHandler builds the authorization stage. A nil authorizer allows
// everything.
func NewAuthorizeHandler(authorizer tool.Authorizer) *AuthorizeHandler {
	return &AuthorizeHandler{authorizer: authorizer}
}

// Stage implements Handler.
func (h *AuthorizeHandler) Stage() core.Stage { return core.StageAuthorize }

// Handle implements Handler.
func (h *AuthorizeHandler) Handle(tc *core.TurnContext) (Result, error) {
	if h.authorizer == nil {
		return Result{}, nil
	}

	conv := tc.Conversation
	pending := pendingTools(conv)
	if len(pending) == 0 {
		return Result{}, nil
	}

	allowed := pending[:0]
	for _, req := range pending {
		if err := h.authorizer.Authorize(tc, req); err != nil {
			tc.LogWarn("tool request denied",
				"tool", req.Name,
				"turnID", tc.TurnID,
				"error", err,
			)
			appendToolResult(conv, map[string]any{
				"tool":  req.Name,
				"error": tool.NewToolError(req.Name, err.Error(), tool.CodeUnauthorized).Error(),
			})
			continue
		}
		allowed = append(allowed, req)
	}
	conv.SetContext(core.ContextPendingTools, allowed)
	return Result{}, nil
}

var _ Handler = (*AuthorizeHandler)(nil)
