// Package tool implements the capability subsystem of the engine: named,
// schema-described operations (CRM lookups, calculations, side effects) that
// the tools stage invokes against a registry, gated by an Authorizer and
// normalized to *ToolError on failure.
package tool

import (
	"fmt"

	"github.com/thependalorian/salesflow/core"
)

// Tool is a named capability invokable during the tools stage.
//
// Implementations should be safe for concurrent use; the registry may serve
// multiple conversations at once.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description of what the tool does,
	// suitable for model guidance.
	Description() string

	// Parameters returns a minimal JSON-Schema-like map describing the
	// accepted arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments have already passed the registry's
	// validation; results must be JSON-serializable.
	Call(tc *core.TurnContext, args map[string]any) (any, error)
}

// ToolError is the normalized failure shape for tool invocation.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes produced by the registry and FunctionTool.
const (
	CodeUnknownTool     = "UNKNOWN_TOOL"
	CodeValidationError = "VALIDATION_ERROR"
	CodeExecutionError  = "EXECUTION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
