package core

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Well-known conversation context keys.
const (
	// ContextClassification holds the category the classifier assigned.
	ContextClassification = "classification"
	// ContextConfidence holds the classifier's confidence score.
	ContextConfidence = "confidence"
	// ContextLead holds the lead metadata a conversation was seeded with.
	ContextLead = "lead"
	// ContextPendingTools holds []ToolRequest values the tools stage drains.
	ContextPendingTools = "pending_tools"
	// ContextToolResults holds the structured results of invoked tools.
	ContextToolResults = "tool_results"
	// ContextMemory holds the hydrated interaction record, if any.
	ContextMemory = "memory"
)

// ToolRequest names an external tool capability plus its arguments. Requests
// are staged in conversation context under ContextPendingTools and consumed
// by the tools stage.
type ToolRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ConversationID derives the stable conversation key for a
// (customer, channel, day) triple.
func ConversationID(customerID, channel string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", customerID, channel, day.UTC().Format("2006-01-02"))
}

// Conversation is one customer's ongoing dialogue. The message history is
// append-only and ordered by submission; working context is a string-keyed
// map mutated by the router and stage handlers. All exported methods are safe
// for concurrent use, though the engine additionally serializes whole turns
// per conversation.
type Conversation struct {
	ID         string
	CustomerID string
	Channel    string

	mu            sync.RWMutex
	stage         Stage
	messages      []Message
	context       map[string]any
	confidence    float64
	requiresHuman bool
	toolsInvoked  map[string]struct{}
	created       time.Time
	updated       time.Time
}

// NewConversation creates an empty conversation in the classify stage.
func NewConversation(id, customerID, channel string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:           id,
		CustomerID:   customerID,
		Channel:      channel,
		stage:        StageClassify,
		context:      map[string]any{},
		toolsInvoked: map[string]struct{}{},
		created:      now,
		updated:      now,
	}
}

// AppendMessage adds a message to the history. Messages are never removed or
// reordered.
func (c *Conversation) AppendMessage(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
	c.updated = time.Now().UTC()
}

// Messages returns a defensive copy of the full transcript.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// HasLeadingSystem reports whether the transcript already starts with a
// system instruction. Stage handlers prepend their preamble only when it
// does not.
func (c *Conversation) HasLeadingSystem() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages) > 0 && c.messages[0].Role == RoleSystem
}

// PrependSystem inserts a system instruction at the head of the transcript.
// It is the one exception to append-only ordering and only valid while no
// leading system message exists.
func (c *Conversation) PrependSystem(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) > 0 && c.messages[0].Role == RoleSystem {
		return
	}
	m := NewMessage(RoleSystem, text)
	c.messages = append([]Message{m}, c.messages...)
	c.updated = time.Now().UTC()
}

// LastAssistantText returns the text of the most recent assistant message.
func (c *Conversation) LastAssistantText() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i].Text, true
		}
	}
	return "", false
}

// GetContext returns the value and existence flag for a context key.
func (c *Conversation) GetContext(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.context[key]
	return v, ok
}

// SetContext sets a key/value pair in the working context.
func (c *Conversation) SetContext(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context[key] = value
	c.updated = time.Now().UTC()
}

// DeleteContext removes a context key.
func (c *Conversation) DeleteContext(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.context, key)
}

// ContextSnapshot returns a shallow copy of the working context.
func (c *Conversation) ContextSnapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.context))
	for k, v := range c.context {
		out[k] = v
	}
	return out
}

// Stage returns the current router stage.
func (c *Conversation) Stage() Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

// SetStage records the current router stage.
func (c *Conversation) SetStage(s Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stage = s
	c.updated = time.Now().UTC()
}

// Confidence returns the recorded classification confidence in [0, 1].
func (c *Conversation) Confidence() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.confidence
}

// SetConfidence records the classification confidence.
func (c *Conversation) SetConfidence(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confidence = v
}

// RequiresHuman reports whether the conversation has been flagged for
// human hand-off.
func (c *Conversation) RequiresHuman() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requiresHuman
}

// MarkRequiresHuman flags the conversation for human hand-off. The flag is
// never cleared by the engine.
func (c *Conversation) MarkRequiresHuman() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requiresHuman = true
	c.updated = time.Now().UTC()
}

// RecordToolInvoked adds a tool name to the invoked set.
func (c *Conversation) RecordToolInvoked(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolsInvoked[name] = struct{}{}
}

// ToolsInvoked returns the sorted set of tool names invoked so far.
func (c *Conversation) ToolsInvoked() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.toolsInvoked))
	for n := range c.toolsInvoked {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Created returns the conversation creation time.
func (c *Conversation) Created() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.created
}

// Updated returns the time of the last mutation.
func (c *Conversation) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}
