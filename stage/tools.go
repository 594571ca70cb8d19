package stage

import (
	"errors"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/tool"
)

// ToolsHandler drains the pending tool requests staged in conversation
// context and records each outcome under the tool results key. Tool failures
// are captured per request rather than aborting the turn; the stage produces
// no chat message of its own.
type ToolsHandler struct {
	registry *tool.Registry
}

// NewToolsHandler builds the tool invocation stage. A nil registry treats
// every request as unknown.
func NewToolsHandler(registry *tool.Registry) *ToolsHandler {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	return &ToolsHandler{registry: registry}
}

// Stage implements Handler.
func (h *ToolsHandler) Stage() core.Stage { return core.StageTools }

// Handle implements Handler.
func (h *ToolsHandler) Handle(tc *core.TurnContext) (Result, error) {
	conv := tc.Conversation
	pending := pendingTools(conv)
	conv.DeleteContext(core.ContextPendingTools)
	if len(pending) == 0 {
		return Result{}, nil
	}

	for _, req := range pending {
		result, err := h.registry.Invoke(tc, req)
		if err != nil {
			var toolErr *tool.ToolError
			msg := err.Error()
			if errors.As(err, &toolErr) {
				msg = toolErr.Error()
			}
			appendToolResult(conv, map[string]any{
				"tool":  req.Name,
				"error": msg,
			})
			continue
		}
		conv.RecordToolInvoked(req.Name)
		appendToolResult(conv, map[string]any{
			"tool":   req.Name,
			"result": result,
		})
	}
	return Result{}, nil
}

// pendingTools reads the staged requests, tolerating both the typed slice and
// the loosely-typed form produced by JSON round-trips.
func pendingTools(conv *core.Conversation) []core.ToolRequest {
	v, ok := conv.GetContext(core.ContextPendingTools)
	if !ok {
		return nil
	}
	switch reqs := v.(type) {
	case []core.ToolRequest:
		return reqs
	case []any:
		out := make([]core.ToolRequest, 0, len(reqs))
		for _, item := range reqs {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			req := core.ToolRequest{}
			if name, ok := m["name"].(string); ok {
				req.Name = name
			}
			if args, ok := m["args"].(map[string]any); ok {
				req.Args = args
			}
			if req.Name != "" {
				out = append(out, req)
			}
		}
		return out
	default:
		return nil
	}
}

func appendToolResult(conv *core.Conversation, entry map[string]any) {
	var results []map[string]any
	if v, ok := conv.GetContext(core.ContextToolResults); ok {
		results, _ = v.([]map[string]any)
	}
	conv.SetContext(core.ContextToolResults, append(results, entry))
}

var _ Handler = (*ToolsHandler)(nil)
