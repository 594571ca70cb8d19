package tool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/thependalorian/salesflow/core"
)

// Registry holds the tools available to the engine, keyed by name. It is safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering a duplicate name is an error so a later
// tool cannot silently shadow an earlier one.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get returns the tool with the given name, if registered.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Invoke resolves and calls the tool named in the request. Unknown names
// produce a *ToolError with CodeUnknownTool rather than a panic or a silent
// skip so the tools stage can report per-request outcomes.
func (r *Registry) Invoke(tc *core.TurnContext, req core.ToolRequest) (any, error) {
	t, ok := r.Get(req.Name)
	if !ok {
		return nil, NewToolError(req.Name, "tool not registered", CodeUnknownTool)
	}
	args := req.Args
	if args == nil {
		args = map[string]any{}
	}
	return t.Call(tc, args)
}
