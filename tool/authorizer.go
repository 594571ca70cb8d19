package tool

import "github.com/thependalorian/salesflow/core"

// Authorizer decides whether a pending tool request may execute for the
// current conversation. A non-nil error denies the request; the tools stage
// records the denial as the request's result instead of invoking the tool.
type Authorizer interface {
	Authorize(tc *core.TurnContext, req core.ToolRequest) error
}

// AllowAll authorizes every request. It is the default when no Authorizer is
// configured.
type AllowAll struct{}

// Authorize implements Authorizer.
func (AllowAll) Authorize(tc *core.TurnContext, req core.ToolRequest) error { return nil }

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(tc *core.TurnContext, req core.ToolRequest) error

// Authorize implements Authorizer.
func (fn AuthorizerFunc) Authorize(tc *core.TurnContext, req core.ToolRequest) error {
	return fn(tc, req)
}

var (
	_ Authorizer = AllowAll{}
	_ Authorizer = AuthorizerFunc(nil)
)
