package tool

import (
	"fmt"
	"time"

	"github.com/thependalorian/salesflow/core"
)

// FunctionTool adapts a plain Go function into a Tool. It holds a lightweight
// JSON-Schema-like parameter map, checks required keys before execution, and
// normalizes failures to *ToolError:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	missing required argument       -> *ToolError{Code: CodeValidationError}
//	other error                     -> *ToolError{Code: CodeExecutionError}
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(tc *core.TurnContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	pricing := NewFunctionTool(
//	  "pricing_lookup",
//	  "Look up the current price of a product",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "sku": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"sku"},
//	  },
//	  func(tc *core.TurnContext, args map[string]any) (any, error) {
//	    return catalog.Price(args["sku"].(string))
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(tc *core.TurnContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the unique tool name used in pending tool requests.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON-Schema-like map describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call checks required arguments then invokes the underlying function.
func (t *FunctionTool) Call(tc *core.TurnContext, args map[string]any) (any, error) {
	start := time.Now()
	tc.LogDebug("tool.call.start", "tool", t.name, "turnID", tc.TurnID)

	if err := checkRequired(args, t.parameters); err != nil {
		tc.LogWarn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidationError,
		}
	}

	result, err := t.fn(tc, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			tc.LogError("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return nil, toolErr
		}
		tc.LogError("tool.call.error", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecutionError,
		}
	}

	tc.LogInfo("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// checkRequired enforces presence of the schema's required keys. Type checks
// stay with the individual tool; presence is the shared contract.
func checkRequired(args, schema map[string]any) error {
	required, ok := schema["required"]
	if !ok {
		return nil
	}
	var keys []string
	switch v := required.(type) {
	case []string:
		keys = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				keys = append(keys, s)
			}
		}
	}
	for _, key := range keys {
		if _, ok := args[key]; !ok {
			return fmt.Errorf("missing required argument %q", key)
		}
	}
	return nil
}
